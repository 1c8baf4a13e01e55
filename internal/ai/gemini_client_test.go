package ai

import (
	"errors"
	"testing"

	genai "github.com/google/generative-ai-go/genai"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"one two three four", 5},
		{"  spaced   out   words  ", 3},
	}
	for _, tc := range cases {
		if got := estimateTokens(tc.text); got != tc.want {
			t.Errorf("estimateTokens(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestGetRateLimits(t *testing.T) {
	if got := getRateLimits("free"); got.RPM != 10 {
		t.Errorf("free RPM = %d, want 10", got.RPM)
	}
	if got := getRateLimits("tier1"); got.RPM != 1000 {
		t.Errorf("tier1 RPM = %d, want 1000", got.RPM)
	}
	// Unknown tiers fall back to the free limits.
	if got := getRateLimits("nonsense"); got.RPM != 10 {
		t.Errorf("unknown tier RPM = %d, want 10", got.RPM)
	}
}

func TestResponseTextConcatenatesParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world")}}},
			{Content: nil},
		},
	}
	if got := responseText(resp); got != "Hello, world" {
		t.Fatalf("responseText = %q", got)
	}

	if got := responseText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("empty response text = %q, want empty", got)
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("quota exceeded")
	err := &ProviderError{Op: "gemini.generate", Err: inner}

	if !errors.Is(err, inner) {
		t.Fatal("ProviderError should unwrap to its cause")
	}
	if msg := err.Error(); msg == "" || msg == inner.Error() {
		t.Fatalf("error message should include the operation: %q", msg)
	}
}
