package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"photogrid/internal/domain"
	"photogrid/internal/logger"
	"photogrid/internal/output"
)

// photoJSON is the --json shape of a search hit
type photoJSON struct {
	ID         int    `json:"id"`
	ImageURL   string `json:"webformatURL"`
	PreviewURL string `json:"previewURL,omitempty"`
	PageURL    string `json:"pageURL,omitempty"`
	Tags       string `json:"tags,omitempty"`
	User       string `json:"user,omitempty"`
	Likes      int    `json:"likes"`
}

func (a *app) newSearchCommand() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print one page of results and exit",
		Long: `Search once without the interactive screen.

Examples:
  photogrid search paris               # Table of results
  photogrid search red car --limit 5   # First five hits
  photogrid search ocean --json        # Output as JSON`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, strings.Join(args, " "), limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results to print, 0 for all")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, text string, limit int, jsonOutput bool) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("invalid --limit %d", limit)
	}

	log, err := logger.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	req, err := newEncoder(cfg).Encode(text)
	if err != nil {
		return fmt.Errorf("nothing to search for: %w", err)
	}

	photos, err := newGateway(cfg, log).Search(cmd.Context(), req)
	if err != nil {
		return describeSearchError(err)
	}
	if limit > 0 && len(photos) > limit {
		photos = photos[:limit]
	}

	if jsonOutput {
		return writeJSON(cmd, photos)
	}
	return a.writeTable(cmd, req.Query, photos)
}

func writeJSON(cmd *cobra.Command, photos []domain.Photo) error {
	out := make([]photoJSON, 0, len(photos))
	for _, p := range photos {
		out = append(out, photoJSON{
			ID:         p.ID,
			ImageURL:   p.ImageURL,
			PreviewURL: p.PreviewURL,
			PageURL:    p.PageURL,
			Tags:       p.Tags,
			User:       p.User,
			Likes:      p.Likes,
		})
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (a *app) writeTable(cmd *cobra.Command, q string, photos []domain.Photo) error {
	if len(photos) == 0 {
		a.printer.Warning("No photos found for %q", q)
		return nil
	}

	table := output.NewTable(cmd.OutOrStdout(), []string{"id", "likes", "user", "tags", "image"})
	for _, p := range photos {
		table.AddRow(
			a.printer.Bold(strconv.Itoa(p.ID)),
			strconv.Itoa(p.Likes),
			p.User,
			p.Tags,
			a.printer.Dim(p.ImageURL),
		)
	}
	if err := table.Render(); err != nil {
		return err
	}
	a.printer.Info("%d photos for %q", table.Len(), q)
	return nil
}

func describeSearchError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNetwork):
		return fmt.Errorf("search failed, check your connection: %w", err)
	case errors.Is(err, domain.ErrDecode):
		return fmt.Errorf("unexpected response from the image service: %w", err)
	default:
		return err
	}
}
