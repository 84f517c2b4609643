package tagger

import (
	"context"
	"testing"
)

func TestLexicalContactLines(t *testing.T) {
	lex := NewLexical()
	ctx := context.Background()

	for _, text := range []string{
		"Jane Doe",
		"Jane Doe Smith",
		"555-0100",
		"jane@example.org",
		"Acme Widgets Ltd",
	} {
		tag, err := lex.Tag(ctx, text)
		if err != nil {
			t.Fatalf("Tag(%q): %v", text, err)
		}
		if tag.Label != ContactLike {
			t.Errorf("Tag(%q).Label = %s, want %s", text, tag.Label, ContactLike)
		}
		if tag.Confidence < 0.9 {
			t.Errorf("Tag(%q).Confidence = %v, want >= 0.9", text, tag.Confidence)
		}
	}
}

func TestLexicalClosings(t *testing.T) {
	lex := NewLexical()
	ctx := context.Background()

	for _, text := range []string{
		"warm regards",
		"yours truly",
		"kind regards",
	} {
		tag, err := lex.Tag(ctx, text)
		if err != nil {
			t.Fatalf("Tag(%q): %v", text, err)
		}
		if tag.Label != SalutationLike {
			t.Errorf("Tag(%q).Label = %s, want %s", text, tag.Label, SalutationLike)
		}
	}
}

func TestLexicalGreetingIsOrdinary(t *testing.T) {
	lex := NewLexical()

	tag, err := lex.Tag(context.Background(), "Hi there,")
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if tag.Label != Ordinary {
		t.Errorf("greeting labeled %s, want %s", tag.Label, Ordinary)
	}
}

func TestLexicalProseWithVerbs(t *testing.T) {
	lex := NewLexical()
	ctx := context.Background()

	for _, text := range []string{
		"call me later",
		"let me know",
		"will do",
		"sounds good, will send it",
	} {
		tag, err := lex.Tag(ctx, text)
		if err != nil {
			t.Fatalf("Tag(%q): %v", text, err)
		}
		if tag.Label != Ordinary {
			t.Errorf("Tag(%q).Label = %s, want %s", text, tag.Label, Ordinary)
		}
	}
}

func TestLexicalEmptyLine(t *testing.T) {
	lex := NewLexical()

	tag, err := lex.Tag(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if tag.Label != Ordinary || tag.Confidence != 0 {
		t.Errorf("blank line tagged %+v, want ordinary with zero confidence", tag)
	}
}

func TestLexicalConfidenceRange(t *testing.T) {
	lex := NewLexical()
	ctx := context.Background()

	for _, text := range []string{
		"Jane Doe", "best wishes", "call me", "x", "a b c d e",
	} {
		tag, err := lex.Tag(ctx, text)
		if err != nil {
			t.Fatalf("Tag(%q): %v", text, err)
		}
		if tag.Confidence < 0 || tag.Confidence > 1 {
			t.Errorf("Tag(%q).Confidence = %v out of [0,1]", text, tag.Confidence)
		}
	}
}
