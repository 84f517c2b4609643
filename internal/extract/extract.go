// Package extract pulls a normalized plaintext body out of an email file.
//
// Preference order mirrors what mail clients actually send: text/plain
// parts first, then text/html flattened to text, then the raw file when
// the input is not a parseable RFC 822 message at all. The output uses
// Unix line endings and has HTML entities unescaped, which is the form
// the line classifier expects.
package extract

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/k3a/html2text"
)

var (
	htmlTagRE     = regexp.MustCompile(`<[^>]+>`)
	excessBlankRE = regexp.MustCompile(`\n{3,}`)
)

// File reads an email file and returns its normalized plaintext body.
// Only I/O errors are reported; unparseable content falls back to the raw
// file text rather than failing.
func File(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading email file: %w", err)
	}
	return Body(raw), nil
}

// Body extracts the plaintext body from a raw message. It never fails:
// anything that does not parse as a message is treated as already being
// body text.
func Body(raw []byte) string {
	body, err := messageBody(raw)
	if err != nil || strings.TrimSpace(body) == "" {
		body = string(raw)
	}

	// Whatever path produced the body, flatten any HTML that survived.
	if htmlTagRE.MatchString(body) {
		body = htmlToText(body)
	}

	return Normalize(body)
}

// messageBody parses raw as an RFC 822 message and extracts the preferred
// body part.
func messageBody(raw []byte) (string, error) {
	entity, err := message.Read(strings.NewReader(string(raw)))
	if err != nil && !message.IsUnknownCharset(err) {
		return "", fmt.Errorf("parsing message: %w", err)
	}

	var plainParts []string
	var htmlBody string

	var walk func(e *message.Entity) error
	walk = func(e *message.Entity) error {
		mediaType, _, _ := e.Header.ContentType()

		if strings.HasPrefix(mediaType, "multipart/") {
			mr := e.MultipartReader()
			if mr == nil {
				return nil
			}
			for {
				part, err := mr.NextPart()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return fmt.Errorf("reading multipart: %w", err)
				}
				if err := walk(part); err != nil {
					return err
				}
			}
		}

		content, err := io.ReadAll(e.Body)
		if err != nil {
			return fmt.Errorf("reading part body: %w", err)
		}

		switch mediaType {
		case "text/plain", "":
			if strings.TrimSpace(string(content)) != "" {
				plainParts = append(plainParts, string(content))
			}
		case "text/html":
			if htmlBody == "" {
				htmlBody = string(content)
			}
		}
		return nil
	}

	if err := walk(entity); err != nil {
		return "", err
	}

	if len(plainParts) > 0 {
		return strings.Join(plainParts, "\n\n"), nil
	}
	if htmlBody != "" {
		return htmlToText(htmlBody), nil
	}
	return "", nil
}

// htmlToText flattens HTML to plain text and tidies the result.
func htmlToText(html string) string {
	text := html2text.HTML2Text(html)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return excessBlankRE.ReplaceAllString(text, "\n\n")
}

// Normalize converts a body to the canonical form the classifier consumes:
// Unix line endings, no surrounding whitespace, and no wrapping quotes
// (some export pipelines wrap whole bodies in double quotes).
func Normalize(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.TrimSpace(body)

	if strings.HasPrefix(body, `"`) && strings.HasSuffix(body, `"`) && len(body) >= 2 {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}

	return body
}
