// Package clean ties extraction, line splitting and signature detection
// together into the operations the CLI and MCP server expose.
package clean

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inboxtools/sigscrub/internal/detect"
	"github.com/inboxtools/sigscrub/internal/extract"
	"github.com/inboxtools/sigscrub/internal/lines"
)

// Cleaner runs the signature removal pipeline with a fixed configuration.
type Cleaner struct {
	opts detect.Options
	log  *slog.Logger
}

// New creates a Cleaner. A nil logger disables logging.
func New(opts detect.Options, log *slog.Logger) *Cleaner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Cleaner{opts: opts, log: log}
}

// Result holds the outcome of cleaning one body.
type Result struct {
	// Cleaned is the filtered body. Its lines are a subsequence of the
	// input's lines, with terminators untouched.
	Cleaned string
	// Decisions is the per-line classification, index-aligned with the
	// input lines.
	Decisions []detect.Result
	// Dropped counts the removed lines.
	Dropped int
}

// Text classifies body and returns the cleaned text plus the per-line
// decisions. body is expected to be normalized (Unix line endings); use
// extract.Normalize or extract.Body for raw input.
func (c *Cleaner) Text(ctx context.Context, body string) (*Result, error) {
	ls := lines.Split(body)

	decisions, err := detect.Classify(ctx, ls, c.opts)
	if err != nil {
		return nil, err
	}

	kept := detect.Filter(ls, decisions)

	res := &Result{
		Cleaned:   lines.Join(kept),
		Decisions: decisions,
		Dropped:   len(ls) - len(kept),
	}

	c.log.Debug("cleaned body",
		"lines", len(ls),
		"dropped", res.Dropped,
		"threshold", c.opts.Threshold,
	)

	return res, nil
}

// ConvertFile cleans the email at path and writes the result next to it
// as "<stem>_clean<ext>". It returns the output path.
func (c *Cleaner) ConvertFile(ctx context.Context, path string) (string, error) {
	body, err := extract.File(path)
	if err != nil {
		return "", err
	}

	res, err := c.Text(ctx, body)
	if err != nil {
		return "", err
	}

	outPath := DeriveOutputPath(path)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(res.Cleaned), 0o644); err != nil {
		return "", fmt.Errorf("writing cleaned email: %w", err)
	}

	c.log.Info("converted email",
		"input", path,
		"output", outPath,
		"dropped_lines", res.Dropped,
	)

	return outPath, nil
}

// DeriveOutputPath returns the sibling path for a cleaned copy:
// "mail.eml" -> "mail_clean.eml".
func DeriveOutputPath(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), stem+"_clean"+ext)
}
