package tagger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseTaggerFlag(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		want    *ClientConfig
		wantErr bool
	}{
		{
			name: "spacy simple",
			flag: "spacy/en_core_web_sm",
			want: &ClientConfig{
				Provider:    "spacy",
				Model:       "en_core_web_sm",
				Endpoint:    "http://localhost:8080/v1/tags",
				MaxRetries:  3,
				TimeoutSecs: 30,
			},
		},
		{
			name: "model with slash",
			flag: "spacy/community/en_core_web_trf",
			want: &ClientConfig{
				Provider:    "spacy",
				Model:       "community/en_core_web_trf",
				Endpoint:    "http://localhost:8080/v1/tags",
				MaxRetries:  3,
				TimeoutSecs: 30,
			},
		},
		{name: "empty flag", flag: "", wantErr: true},
		{name: "no slash", flag: "spacy", wantErr: true},
		{name: "empty provider", flag: "/model", wantErr: true},
		{name: "empty model", flag: "spacy/", wantErr: true},
		{name: "unknown provider", flag: "nope/model", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTaggerFlag(tt.flag)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTaggerFlag: %v", err)
			}
			if *got != *tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTaggerFlagEnvOverride(t *testing.T) {
	t.Setenv("SIGSCRUB_TAGGER_ENDPOINT", "http://tagger.internal:9000/v1/tags")
	t.Setenv("SIGSCRUB_TAGGER_API_KEY", "secret")

	got, err := ParseTaggerFlag("spacy/en_core_web_sm")
	if err != nil {
		t.Fatalf("ParseTaggerFlag: %v", err)
	}
	if got.Endpoint != "http://tagger.internal:9000/v1/tags" {
		t.Errorf("endpoint = %q", got.Endpoint)
	}
	if got.APIKey != "secret" {
		t.Errorf("api key = %q", got.APIKey)
	}
}

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	c, err := NewClient(&ClientConfig{
		Provider:    "spacy",
		Model:       "en_core_web_sm",
		Endpoint:    endpoint,
		MaxRetries:  0,
		TimeoutSecs: 5,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClientTagBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Model != "en_core_web_sm" {
			t.Errorf("model = %q", req.Model)
		}

		resp := tagResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, struct {
				Index      int     `json:"index"`
				Label      Label   `json:"label"`
				Confidence float64 `json:"confidence"`
			}{Index: i, Label: ContactLike, Confidence: 0.95})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	tags, err := c.TagBatch(context.Background(), []string{"Jane Doe", "555-0100"})
	if err != nil {
		t.Fatalf("TagBatch: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tags", len(tags))
	}
	for i, tag := range tags {
		if tag.Label != ContactLike || tag.Confidence != 0.95 {
			t.Errorf("tag %d = %+v", i, tag)
		}
	}
}

func TestClientFailureWrapsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	_, err := c.Tag(context.Background(), "Jane Doe")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error %v does not wrap ErrUnavailable", err)
	}
}

func TestClientRejectsBadConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "label": "contact", "confidence": 1.7},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	if _, err := c.Tag(context.Background(), "Jane Doe"); err == nil {
		t.Fatal("expected error for out-of-range confidence")
	}
}

func TestClientName(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")
	if got := c.Name(); got != "spacy/en_core_web_sm" {
		t.Errorf("Name() = %q", got)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Error("nil config should fail")
	}
	if _, err := NewClient(&ClientConfig{Provider: "spacy"}); err == nil {
		t.Error("missing model/endpoint should fail")
	}
}
