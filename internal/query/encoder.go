package query

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"photogrid/internal/domain"
)

// MaxQueryRunes is the longest query the image API accepts
const MaxQueryRunes = 100

// Encoder turns free text into SearchRequests. It holds configuration only.
type Encoder struct {
	pageSize   int
	safeSearch bool
	fallback   string
}

// NewEncoder creates an encoder. fallback is substituted for text that cannot be
// encoded; when empty, undecodable bytes are dropped instead.
func NewEncoder(pageSize int, safeSearch bool, fallback string) *Encoder {
	return &Encoder{
		pageSize:   pageSize,
		safeSearch: safeSearch,
		fallback:   strings.TrimSpace(fallback),
	}
}

// Encode builds the request for raw. It fails with domain.ErrEncode only when no
// usable query remains after trimming and repair.
func (e *Encoder) Encode(raw string) (domain.SearchRequest, error) {
	text := strings.TrimSpace(raw)
	usedFallback := false

	if !utf8.ValidString(text) {
		if e.fallback != "" {
			text = e.fallback
			usedFallback = true
		} else {
			text = strings.TrimSpace(strings.ToValidUTF8(text, ""))
		}
	}

	if text == "" {
		return domain.SearchRequest{}, fmt.Errorf("empty query: %w", domain.ErrEncode)
	}

	text = truncate(text, MaxQueryRunes)

	return domain.SearchRequest{
		Query:        text,
		EncodedQuery: url.QueryEscape(text),
		PerPage:      e.pageSize,
		SafeSearch:   e.safeSearch,
		Fallback:     usedFallback,
	}, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}
