package detect

import "testing"

func TestIsSignatureOpening(t *testing.T) {
	yes := []string{
		"Best,",
		"best",
		"Kind Regards,",
		"Thanks!",
		"Yours sincerely,",
		"Sent from my iPhone",
		"Sent from Outlook for Android",
		"Get Outlook for iOS",
	}
	for _, s := range yes {
		if !isSignatureOpening(s) {
			t.Errorf("isSignatureOpening(%q) = false", s)
		}
	}

	no := []string{
		"Hi there,",
		"Thanks for sending the file over.",
		"The best option is the second one.",
		"",
	}
	for _, s := range no {
		if isSignatureOpening(s) {
			t.Errorf("isSignatureOpening(%q) = true", s)
		}
	}
}

func TestIsContactShape(t *testing.T) {
	yes := []string{
		"jane@example.org",
		"Reach me at jane.doe+work@sub.example.co.uk",
		"555-0100 1234",
		"+44 20 7946 0958",
		"Jane Doe | Example Org",
		"VP Engineering | Acme",
	}
	for _, s := range yes {
		if !isContactShape(s) {
			t.Errorf("isContactShape(%q) = false", s)
		}
	}

	no := []string{
		"Jane Doe",
		"See you at 9.",
		"The meeting moved to room four.",
	}
	for _, s := range no {
		if isContactShape(s) {
			t.Errorf("isContactShape(%q) = true", s)
		}
	}
}

func TestLooksLikeContact(t *testing.T) {
	yes := []string{
		"Jane Doe",
		"Tel: 555-0100",
		"www.example.org",
		"Follow us on LinkedIn",
		"Acme Widgets Ltd",
	}
	for _, s := range yes {
		if !looksLikeContact(s) {
			t.Errorf("looksLikeContact(%q) = false", s)
		}
	}

	no := []string{
		"thanks again for all the help with this",
		"see you next week",
	}
	for _, s := range no {
		if looksLikeContact(s) {
			t.Errorf("looksLikeContact(%q) = true", s)
		}
	}
}

func TestIsQuoteDelimiter(t *testing.T) {
	yes := []string{
		"> quoted text",
		">quoted",
		"--",
		"---",
		"------------",
		"============",
		"____________",
		"-----Original Message-----",
		"Begin forwarded message:",
		"---------- Forwarded by Jane Doe ----------",
		"On Mon, Jan 1, 2024, Jane Doe wrote:",
		"on 2 feb 2021, bob wrote:",
	}
	for _, s := range yes {
		if !isQuoteDelimiter(s) {
			t.Errorf("isQuoteDelimiter(%q) = false", s)
		}
	}

	no := []string{
		"",
		"-",
		"a normal sentence.",
		"On time delivery matters.",
		"One more thing I wrote down earlier.",
	}
	for _, s := range no {
		if isQuoteDelimiter(s) {
			t.Errorf("isQuoteDelimiter(%q) = true", s)
		}
	}
}

func TestIsEmailHeader(t *testing.T) {
	yes := []string{
		"From: jane@example.org",
		"From jane@example.org  Mon Jan  1 00:00:00 2024",
		"To: bob@example.org",
		"Subject: re: numbers",
		"Date: Mon, 1 Jan 2024",
		"Message-ID: <abc@example.org>",
		"Content-Type: text/plain",
	}
	for _, s := range yes {
		if !isEmailHeader(s) {
			t.Errorf("isEmailHeader(%q) = false", s)
		}
	}

	no := []string{
		"Frosty morning today.",
		"Dates are flexible.",
		"Subjective opinion, of course.",
		"from my side everything is ready",
	}
	for _, s := range no {
		if isEmailHeader(s) {
			t.Errorf("isEmailHeader(%q) = true", s)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Best,":         "best",
		"  Regards.  ":  "regards",
		"THANKS!!!":     "thanks",
		"warm regards,": "warm regards",
		"(Cheers)":      "cheers",
	}
	for in, want := range cases {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
