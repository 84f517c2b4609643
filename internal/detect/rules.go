package detect

import (
	"regexp"
	"strings"
)

// Pattern tables for the heuristic cues. Kept as data so new signature or
// delimiter shapes can be added without touching the state machine.

// closingSalutations match a whole line once punctuation and case are
// normalized away ("Best regards," -> "best regards").
var closingSalutations = map[string]struct{}{
	"best":            {},
	"best regards":    {},
	"best wishes":     {},
	"thanks":          {},
	"thank you":       {},
	"thanks a lot":    {},
	"regards":         {},
	"kind regards":    {},
	"warm regards":    {},
	"cheers":          {},
	"sincerely":       {},
	"yours truly":     {},
	"yours sincerely": {},
	"many thanks":     {},
}

// autoSignaturePrefixes open the boilerplate blocks mail clients append.
var autoSignaturePrefixes = []string{
	"sent from my",
	"sent from mail for",
	"sent from outlook for",
	"sent from windows",
	"get outlook for",
	"sent with my",
}

// contactKeywords flag business-card vocabulary.
var contactKeywords = []string{
	"tel",
	"phone",
	"mobile",
	"cell",
	"fax",
	"email",
	"www",
	"http",
	"linkedin",
}

var (
	emailRE = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phoneRE = regexp.MustCompile(`(?:\+?\d[\d\s().-]{6,}\d)`)
)

// quoteDelimiterKeywords appear in reply/forward separators inserted by
// mail clients ("-----Original Message-----", "Begin forwarded message:").
var quoteDelimiterKeywords = []string{
	"original message",
	"forwarded message",
	"forwarded by",
}

// emailHeaderPrefixes identify header lines of an embedded message.
var emailHeaderPrefixes = []string{
	"from:",
	"to:",
	"subject:",
	"date:",
	"message-id",
	"in-reply-to",
	"references:",
	"mime-version",
	"content-type",
}

// ruleChars are the characters whose repetition forms a horizontal rule.
const ruleChars = "-_·=*#"

// normalize strips surrounding punctuation and lowercases, so "Best," and
// "best" compare equal.
func normalize(text string) string {
	const punct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ "
	return strings.ToLower(strings.Trim(text, punct))
}

// isSignatureOpening reports whether text is a closing salutation or a
// mail-client auto-signature marker.
func isSignatureOpening(text string) bool {
	normalized := normalize(text)
	if _, ok := closingSalutations[normalized]; ok {
		return true
	}
	for _, prefix := range autoSignaturePrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}

// isContactShape reports the structural contact-card shapes: a phone
// number, an email address, or a pipe-delimited "Name | Title" layout.
// This is the narrow test that may open signature mode on its own.
func isContactShape(text string) bool {
	if emailRE.MatchString(text) {
		return true
	}
	if phoneRE.MatchString(text) {
		return true
	}
	return strings.Contains(text, "|") && len(text) <= 120
}

// looksLikeContact is the broad test used inside a signature block: the
// structural shapes plus contact vocabulary and terse runs of capitalized
// words. A line matching it cannot requalify as conversation.
func looksLikeContact(text string) bool {
	if isContactShape(text) {
		return true
	}

	lower := strings.ToLower(text)
	for _, kw := range contactKeywords {
		if strings.Contains(lower, kw) && len(text) <= 80 {
			return true
		}
	}

	words := strings.Fields(text)
	if len(words) <= 4 {
		capitalized := 0
		for _, w := range words {
			if w[0] >= 'A' && w[0] <= 'Z' {
				capitalized++
			}
		}
		if capitalized >= 2 {
			return true
		}
	}

	return false
}

// isQuoteDelimiter reports whether text marks the start of a quoted reply
// or forwarded message: a quote prefix, a canonical separator, an
// attribution line, or a horizontal rule.
func isQuoteDelimiter(text string) bool {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return false
	}

	if stripped == "--" || stripped == "---" {
		return true
	}
	if strings.HasPrefix(stripped, ">") {
		return true
	}

	lower := strings.ToLower(stripped)
	for _, kw := range quoteDelimiterKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	// "On Mon, Jan 1, 2024, Jane Doe wrote:"
	if strings.HasPrefix(lower, "on ") && strings.Contains(lower, " wrote:") {
		return true
	}

	return isHorizontalRule(stripped)
}

// isHorizontalRule matches runs of a single separator character, e.g.
// "------" or "======".
func isHorizontalRule(stripped string) bool {
	runes := []rune(stripped)
	if len(runes) < 3 {
		return false
	}
	if !strings.ContainsRune(ruleChars, runes[0]) {
		return false
	}
	for _, r := range runes {
		if r != runes[0] {
			return false
		}
	}
	return true
}

// isEmailHeader reports whether text looks like a header line of an
// embedded or bounced message (From:, Subject:, ...). The colon forms
// match case-insensitively; the separator-less mbox form ("From jane@...")
// is case-sensitive so that prose starting with "from" stays ordinary.
func isEmailHeader(text string) bool {
	if strings.HasPrefix(text, "From ") && emailRE.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	for _, prefix := range emailHeaderPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
