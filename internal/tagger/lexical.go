package tagger

import (
	"context"
	"strings"
	"unicode"
)

// Lexical is the default in-process tagger. It scores a line by verb
// absence: the fewer tokens that look like verbs, the more the line
// resembles a salutation or contact fragment rather than a sentence.
// Confidence is the share of non-verb tokens among all tokens.
type Lexical struct{}

// NewLexical returns the built-in lexical tagger.
func NewLexical() *Lexical {
	return &Lexical{}
}

// Name implements Tagger.
func (l *Lexical) Name() string { return "lexical" }

// verbLexicon covers auxiliaries, modals and the high-frequency verbs that
// show up in short conversational fragments. Lowercase, base and inflected
// forms listed explicitly since there is no stemmer here.
var verbLexicon = map[string]struct{}{
	"am": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "done": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "shall": {}, "should": {},
	"may": {}, "might": {}, "must": {},
	"get": {}, "got": {}, "gets": {}, "go": {}, "goes": {}, "went": {}, "gone": {},
	"see": {}, "saw": {}, "seen": {}, "know": {}, "knows": {}, "knew": {},
	"think": {}, "thinks": {}, "thought": {}, "want": {}, "wants": {}, "wanted": {},
	"need": {}, "needs": {}, "needed": {}, "make": {}, "makes": {}, "made": {},
	"let": {}, "lets": {}, "take": {}, "takes": {}, "took": {}, "taken": {},
	"send": {}, "sends": {}, "sent": {}, "call": {}, "calls": {}, "called": {},
	"work": {}, "works": {}, "worked": {}, "look": {}, "looks": {}, "looked": {},
	"come": {}, "comes": {}, "came": {}, "say": {}, "says": {}, "said": {},
	"tell": {}, "tells": {}, "told": {}, "ask": {}, "asks": {}, "asked": {},
	"find": {}, "finds": {}, "found": {}, "give": {}, "gives": {}, "gave": {},
	"use": {}, "uses": {}, "used": {}, "try": {}, "tries": {}, "tried": {},
	"meet": {}, "meets": {}, "met": {}, "talk": {}, "talks": {}, "talked": {},
	"write": {}, "writes": {}, "wrote": {}, "written": {},
	"check": {}, "checks": {}, "checked": {}, "update": {}, "updates": {}, "updated": {},
	"confirm": {}, "confirms": {}, "confirmed": {}, "attach": {}, "attached": {},
	"review": {}, "reviewed": {}, "schedule": {}, "scheduled": {},
}

// closingWords are the leading words of closing salutations. Greeting
// openers (hi, hello, dear) are deliberately absent: a greeting starts a
// conversation and must read as ordinary content, not as a signature cue.
var closingWords = map[string]struct{}{
	"best": {}, "regards": {}, "thanks": {}, "thank": {}, "cheers": {},
	"sincerely": {}, "warmly": {}, "yours": {}, "kindly": {}, "kind": {},
	"warm": {}, "respectfully": {}, "cordially": {},
}

// Tag implements Tagger. It never returns ErrUnavailable: the lexical
// signal is always computable.
func (l *Lexical) Tag(_ context.Context, text string) (Tag, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Tag{Label: Ordinary, Confidence: 0}, nil
	}

	verbs := 0
	capitalized := 0
	contactToken := false
	for _, tok := range tokens {
		if looksLikeVerb(tok) {
			verbs++
		}
		if r := []rune(tok); len(r) > 0 && unicode.IsUpper(r[0]) {
			capitalized++
		}
		if strings.ContainsFunc(tok, unicode.IsDigit) || strings.Contains(tok, "@") {
			contactToken = true
		}
	}

	// Verb-absence ratio: 1.0 means no token reads as a verb.
	score := float64(len(tokens)-verbs) / float64(len(tokens))

	switch {
	case contactToken || (capitalized >= 2 && capitalized*2 >= len(tokens)):
		return Tag{Label: ContactLike, Confidence: score}, nil
	case isClosingShaped(tokens):
		return Tag{Label: SalutationLike, Confidence: score}, nil
	default:
		return Tag{Label: Ordinary, Confidence: 1 - score}, nil
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-' && r != '@' && r != '.'
	})
}

func looksLikeVerb(tok string) bool {
	w := strings.ToLower(strings.Trim(tok, "'-."))
	if _, ok := verbLexicon[w]; ok {
		return true
	}
	// Morphological fallback for regular inflections. Short words are
	// excluded to keep nouns like "ring" or "bed" out.
	if len(w) >= 6 && strings.HasSuffix(w, "ing") {
		return true
	}
	if len(w) >= 6 && strings.HasSuffix(w, "ed") {
		return true
	}
	return false
}

func isClosingShaped(tokens []string) bool {
	first := strings.ToLower(strings.Trim(tokens[0], "'-."))
	_, ok := closingWords[first]
	return ok
}
