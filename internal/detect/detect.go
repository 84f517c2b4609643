// Package detect implements the signature line classifier.
//
// The classifier is a single forward pass over the lines of a message
// body. It tracks one piece of state — whether the scan is currently
// inside a trailing signature block — and emits a keep/drop decision with
// a diagnostic reason for every line. No decision ever depends on lines
// that come later; output order matches input order.
package detect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inboxtools/sigscrub/internal/lines"
	"github.com/inboxtools/sigscrub/internal/tagger"
)

// Mode is the scanner state.
type Mode int

const (
	// ModeConversation is the initial state: lines are kept by default.
	ModeConversation Mode = iota
	// ModeSignature presumes lines belong to a signature block and drops
	// them by default.
	ModeSignature
)

func (m Mode) String() string {
	if m == ModeSignature {
		return "signature"
	}
	return "conversation"
}

// Reason explains a single classification. Diagnostic only: downstream
// behavior depends solely on Keep.
type Reason string

const (
	// ReasonQuoteDelimiter marks quoted-reply and forwarded-message
	// delimiters, which always reset the scan to conversation.
	ReasonQuoteDelimiter Reason = "QUOTE_DELIMITER"
	// ReasonSignatureOpening marks the cue that started signature mode.
	ReasonSignatureOpening Reason = "SIGNATURE_OPENING"
	// ReasonContactPattern marks a dropped business-card line.
	ReasonContactPattern Reason = "CONTACT_PATTERN"
	// ReasonSignatureContinuation marks lines dropped inside a block.
	ReasonSignatureContinuation Reason = "SIGNATURE_CONTINUATION"
	// ReasonEmailHeader marks embedded message headers, which end
	// signature mode and are preserved.
	ReasonEmailHeader Reason = "EMAIL_HEADER"
	// ReasonOrdinary marks everything else.
	ReasonOrdinary Reason = "ORDINARY"
)

// Result is the per-line output of the classifier.
type Result struct {
	Index  int    `json:"index"`
	Keep   bool   `json:"keep"`
	Reason Reason `json:"reason"`
}

// Word-count bounds for the heuristic cues. A "short" line is terse enough
// to be a salutation or contact fragment; a "long" line inside a signature
// block reads as a real sentence and requalifies as conversation.
const (
	// ShortLineMaxWords is the upper bound for rules that only apply to
	// terse lines.
	ShortLineMaxWords = 4
	// ShortLineMaxChars guards against a few very long words slipping
	// under the word bound.
	ShortLineMaxChars = 60
	// ConversationMinWords is the lower bound for a line inside a
	// signature block to requalify as conversational prose.
	ConversationMinWords = 5
	// ContactMaxWords is the upper bound for the structural contact cue.
	// Looser than ShortLineMaxWords because "Name | Title | Company"
	// layouts run a few tokens longer than a salutation.
	ContactMaxWords = 6
)

// DefaultThreshold is the confidence the POS signal must reach before an
// ambiguous short line is treated as signature content.
const DefaultThreshold = 0.9

// ErrInvalidThreshold is returned when the threshold is outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be in [0, 1]")

// Options configures a scan. Note that a zero Threshold is a valid,
// maximally aggressive setting; use DefaultOptions for the defaults.
type Options struct {
	// Threshold is the minimum POS confidence for the probabilistic cue.
	Threshold float64

	// Tagger supplies the POS signal for ambiguous short lines. Nil
	// disables the probabilistic cue entirely (every ambiguous line is
	// kept), which is also the degradation path when a tagger errors.
	Tagger tagger.Tagger
}

// DefaultOptions returns the standard configuration: threshold 0.9 and no
// tagger. Callers wire in a tagger explicitly.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}

// scanState is the per-invocation mutable state. It is created inside
// Classify and never shared or reused across documents.
type scanState struct {
	mode Mode

	// sinceSignatureStart counts lines consumed since the scan last
	// entered signature mode. Diagnostic: no rule caps signature length,
	// a block only ends at a delimiter, header, or conversational line.
	sinceSignatureStart int
}

// Classify runs the detector over ls and returns one Result per line, in
// order. It validates opts.Threshold before touching any line and is
// otherwise total: every line gets a classification, and a failing tagger
// degrades to keeping the line rather than aborting the scan.
func Classify(ctx context.Context, ls []lines.Line, opts Options) ([]Result, error) {
	threshold := opts.Threshold
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, opts.Threshold)
	}

	state := &scanState{mode: ModeConversation}
	results := make([]Result, 0, len(ls))

	for _, line := range ls {
		results = append(results, classifyLine(ctx, line, state, threshold, opts.Tagger))
	}

	return results, nil
}

// classifyLine applies the transition rules to one line, in priority
// order, and mutates state accordingly. First matching rule wins.
func classifyLine(ctx context.Context, line lines.Line, state *scanState, threshold float64, tg tagger.Tagger) Result {
	text := line.Text()

	if state.mode == ModeSignature {
		state.sinceSignatureStart++
	}

	// Rule 1: quote/forward delimiters override everything. Once a quoted
	// thread starts, the quoted content is preserved verbatim and the
	// scan restarts in conversation mode.
	if !line.Blank && isQuoteDelimiter(text) {
		state.mode = ModeConversation
		return Result{Index: line.Index, Keep: true, Reason: ReasonQuoteDelimiter}
	}

	if state.mode == ModeSignature {
		return classifyInSignature(line, text, state)
	}

	return classifyInConversation(ctx, line, text, state, threshold, tg)
}

// classifyInSignature drops lines by default; only an embedded message
// header or a line that independently reads as prose ends the block.
func classifyInSignature(line lines.Line, text string, state *scanState) Result {
	if !line.Blank && isEmailHeader(text) {
		state.mode = ModeConversation
		return Result{Index: line.Index, Keep: true, Reason: ReasonEmailHeader}
	}

	// Requalification: a long line that does not look like contact info
	// is a new conversational fragment.
	if wordCount(text) >= ConversationMinWords && !looksLikeContact(text) {
		state.mode = ModeConversation
		return Result{Index: line.Index, Keep: true, Reason: ReasonOrdinary}
	}

	return Result{Index: line.Index, Keep: false, Reason: ReasonSignatureContinuation}
}

// classifyInConversation evaluates a line as a candidate signature opening.
func classifyInConversation(ctx context.Context, line lines.Line, text string, state *scanState, threshold float64, tg tagger.Tagger) Result {
	// Rule 3a: blank lines never start or end a signature block.
	if line.Blank {
		return Result{Index: line.Index, Keep: true, Reason: ReasonOrdinary}
	}

	// Rule 3b: closing salutation or auto-signature marker. The cue line
	// itself is something the sender wrote, so it stays.
	if isSignatureOpening(text) {
		state.mode = ModeSignature
		state.sinceSignatureStart = 0
		return Result{Index: line.Index, Keep: true, Reason: ReasonSignatureOpening}
	}

	// Rule 3c: a terse contact-card line. Unlike the salutation, this is
	// pure noise and is dropped along with the block it opens.
	if wordCount(text) <= ContactMaxWords && isContactShape(text) {
		state.mode = ModeSignature
		state.sinceSignatureStart = 0
		return Result{Index: line.Index, Keep: false, Reason: ReasonContactPattern}
	}

	// Rule 3d: ambiguous short line, decided by the POS signal. A missing
	// or failing tagger fails open: the line is kept.
	if isShort(text) && tg != nil {
		tag, err := tg.Tag(ctx, text)
		if err == nil && signatureLabeled(tag, threshold) {
			state.mode = ModeSignature
			state.sinceSignatureStart = 0
			return Result{Index: line.Index, Keep: false, Reason: ReasonSignatureOpening}
		}
	}

	// Rule 3e: ordinary prose.
	return Result{Index: line.Index, Keep: true, Reason: ReasonOrdinary}
}

// signatureLabeled reports whether the POS signal clears the threshold. A
// threshold of exactly 1.0 disables the probabilistic cue: it demands more
// certainty than any signal expresses.
func signatureLabeled(tag tagger.Tag, threshold float64) bool {
	if tag.Label != tagger.SalutationLike && tag.Label != tagger.ContactLike {
		return false
	}
	return threshold < 1 && tag.Confidence >= threshold
}

func isShort(text string) bool {
	return len(text) <= ShortLineMaxChars && wordCount(text) <= ShortLineMaxWords
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// Filter applies results to ls and returns only the kept lines, in order.
func Filter(ls []lines.Line, results []Result) []lines.Line {
	kept := make([]lines.Line, 0, len(ls))
	for i, line := range ls {
		if i < len(results) && results[i].Keep {
			kept = append(kept, line)
		}
	}
	return kept
}
