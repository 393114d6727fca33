package domain

import (
	"net/url"
	"strconv"
)

// RequestID identifies one dispatched search. Ids are strictly increasing per pipeline.
type RequestID uint64

// Photo represents a single search hit
type Photo struct {
	ID         int
	ImageURL   string // webformatURL
	PreviewURL string
	PageURL    string
	Tags       string
	User       string
	Likes      int
}

// Same reports whether two photos are the same item. Photos are compared by id only.
func (p Photo) Same(other Photo) bool {
	return p.ID == other.ID
}

// SearchRequest is an encoded, validated query ready for the gateway
type SearchRequest struct {
	Query        string // trimmed user text (or the fallback term)
	EncodedQuery string // percent-encoded Query
	PerPage      int
	SafeSearch   bool
	Fallback     bool // true when the encoder substituted the fallback term
}

// Params returns the search parameters without the credential, for logging and display
func (r SearchRequest) Params() url.Values {
	v := url.Values{}
	v.Set("q", r.Query)
	v.Set("per_page", strconv.Itoa(r.PerPage))
	v.Set("safesearch", strconv.FormatBool(r.SafeSearch))
	return v
}

// RawQuery builds the URL query string for the request with the given credential.
// The already-encoded query is appended as is.
func (r SearchRequest) RawQuery(key string) string {
	v := url.Values{}
	v.Set("key", key)
	v.Set("per_page", strconv.Itoa(r.PerPage))
	v.Set("safesearch", strconv.FormatBool(r.SafeSearch))
	return v.Encode() + "&q=" + r.EncodedQuery
}

// Snapshot is an immutable copy of the pipeline state handed to consumers
type Snapshot struct {
	LatestDispatchedID RequestID
	LatestCompletedID  RequestID
	Query              string // query of the request that produced Results
	Results            []Photo
	LastError          ErrorKind
	Err                string // detail for LastError, empty when LastError is None
	Searching          bool   // a request is outstanding
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	c := s
	if s.Results != nil {
		c.Results = make([]Photo, len(s.Results))
		copy(c.Results, s.Results)
	}
	return c
}
