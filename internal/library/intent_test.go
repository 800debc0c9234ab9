package library

import "testing"

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    ParsedIntent
	}{
		{
			name:    "specific title lookup",
			message: "Do I have Inception?",
			want:    ParsedIntent{Query: "inception", FormatHint: "", Kind: IntentSpecificSearch},
		},
		{
			name:    "explicit format filter",
			message: "Show me mkv files only",
			want:    ParsedIntent{Query: "", FormatHint: "mkv", Kind: IntentFormatFilter},
		},
		{
			name:    "stop words only",
			message: "What movies do I have in my library?",
			want:    ParsedIntent{Query: "", FormatHint: "", Kind: IntentGeneralScan},
		},
		{
			name:    "show me phrasing",
			message: "show me avi files",
			want:    ParsedIntent{Query: "", FormatHint: "avi", Kind: IntentFormatFilter},
		},
		{
			name:    "just files phrasing",
			message: "just wmv files",
			want:    ParsedIntent{Query: "", FormatHint: "wmv", Kind: IntentFormatFilter},
		},
		{
			name:    "only with format",
			message: "only mp4",
			want:    ParsedIntent{Query: "", FormatHint: "mp4", Kind: IntentFormatFilter},
		},
		{
			name:    "format as hint not filter",
			message: "Do I have the matrix in mp4?",
			want:    ParsedIntent{Query: "matrix", FormatHint: "mp4", Kind: IntentSpecificSearch},
		},
		{
			name:    "hint without keywords stays general",
			message: "what mkv movies do i have",
			want:    ParsedIntent{Query: "", FormatHint: "mkv", Kind: IntentGeneralScan},
		},
		{
			name:    "multi keyword query",
			message: "show me the Lord of the Rings",
			want:    ParsedIntent{Query: "lord of rings", FormatHint: "", Kind: IntentSpecificSearch},
		},
		{
			name:    "mov boundary does not fire on movies",
			message: "movies please",
			want:    ParsedIntent{Query: "please", FormatHint: "", Kind: IntentSpecificSearch},
		},
		{
			name:    "empty message",
			message: "",
			want:    ParsedIntent{Query: "", FormatHint: "", Kind: IntentGeneralScan},
		},
		{
			name:    "uppercase format still detected",
			message: "Show me MKV files only",
			want:    ParsedIntent{Query: "", FormatHint: "mkv", Kind: IntentFormatFilter},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIntent(tt.message)
			if got != tt.want {
				t.Errorf("ParseIntent(%q) = %+v, want %+v", tt.message, got, tt.want)
			}
		})
	}
}

func TestParseIntentFirstFormatWins(t *testing.T) {
	got := ParseIntent("should I pick mkv or mp4 for speed")
	if got.FormatHint != "mkv" {
		t.Fatalf("expected first format in probe order to win, got %q", got.FormatHint)
	}
}

func TestParseIntentFilterPhrasingWithoutFormatIsNotAFilter(t *testing.T) {
	got := ParseIntent("only inception")
	if got.Kind != IntentSpecificSearch {
		t.Fatalf("expected specific search, got %v", got.Kind)
	}
	if got.Query != "inception" {
		t.Fatalf("expected query to keep the title, got %q", got.Query)
	}
	if got.FormatHint != "" {
		t.Fatalf("expected no format hint, got %q", got.FormatHint)
	}
}
