// Package tagger provides the part-of-speech signal used by the signature
// detector to judge ambiguous short lines.
//
// The detector only ever sees the small Tagger interface, so the backing
// implementation is swappable: a deterministic lexical scorer (default, no
// network), an HTTP client for a remote tagging service, or either of those
// wrapped in a persistent cache.
package tagger

import (
	"context"
	"errors"
)

// Label is the coarse grammatical role assigned to a short line.
type Label string

const (
	// SalutationLike marks greeting/closing phrases ("Best regards,").
	SalutationLike Label = "salutation"
	// ContactLike marks proper-noun dominant contact lines ("Jane Doe").
	ContactLike Label = "contact"
	// Ordinary marks everything that reads like normal prose.
	Ordinary Label = "ordinary"
)

// Tag is the result of tagging one line. Confidence is in [0, 1] and
// expresses how strongly the line resembles signature content.
type Tag struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ErrUnavailable signals that no POS signal could be obtained for a line.
// The detector treats it as a recoverable condition and keeps the line.
var ErrUnavailable = errors.New("tagger unavailable")

// Tagger produces a POS-derived signal for a short line of text.
type Tagger interface {
	// Tag classifies text and scores the classification. Implementations
	// return ErrUnavailable (possibly wrapped) when the signal cannot be
	// computed; they never guess with fabricated confidence.
	Tag(ctx context.Context, text string) (Tag, error)

	// Name identifies the backing model for diagnostics and cache keys.
	Name() string
}
