// Package lines splits a normalized email body into its physical lines.
//
// Terminators stay attached to the line they end, so joining the sequence
// back together reproduces the input byte for byte. The signature detector
// depends on that: kept lines are written out verbatim, never re-wrapped.
package lines

import "strings"

// Line is one physical line of a message body. Content includes the
// trailing terminator when the source had one. Index is the position in
// the original sequence and is what identifies the line downstream.
type Line struct {
	Index   int
	Content string
	Blank   bool
}

// Text returns the line content without its terminator or surrounding
// whitespace. This is the form the classifier rules match against.
func (l Line) Text() string {
	return strings.TrimSpace(l.Content)
}

// Split breaks body into lines, keeping terminators. A trailing newline
// ends the last line rather than producing a phantom empty one.
func Split(body string) []Line {
	if body == "" {
		return nil
	}

	raw := strings.SplitAfter(body, "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}

	out := make([]Line, len(raw))
	for i, content := range raw {
		out[i] = Line{
			Index:   i,
			Content: content,
			Blank:   strings.TrimSpace(content) == "",
		}
	}
	return out
}

// Join concatenates line contents in order. Join(Split(body)) == body.
func Join(ls []Line) string {
	var b strings.Builder
	for _, l := range ls {
		b.WriteString(l.Content)
	}
	return b.String()
}
