package summaries

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"usher/internal/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := openPath(filepath.Join(t.TempDir(), "summaries.db"))
	if err != nil {
		t.Fatalf("openPath() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

// stubEmbedder maps keyword hits onto fixed axes so similarity outcomes are
// deterministic without a real provider.
type stubEmbedder struct {
	axes    map[string]int
	dim     int
	batches [][]string
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	batch := make([]string, len(texts))
	copy(batch, texts)
	e.batches = append(e.batches, batch)

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dim)
		lower := strings.ToLower(text)
		for word, axis := range e.axes {
			if strings.Contains(lower, word) {
				vec[axis] = 1
			}
		}
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedder) ModelID() string { return "test-embedding" }

func (e *stubEmbedder) Dim() int { return e.dim }

func TestVectorCodecRoundTrip(t *testing.T) {
	original := []float32{0.5, -1.25, 3}
	decoded, err := decodeVector(encodeVector(original))
	if err != nil {
		t.Fatalf("decodeVector() error = %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("decoded[%d] = %v, want %v", i, decoded[i], original[i])
		}
	}
}

func TestDecodeVectorRejectsBadLength(t *testing.T) {
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("decodeVector() error = nil, want error for truncated blob")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1, 0}, b: []float32{1, 0, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummaryDocument(t *testing.T) {
	full := Summary{
		Title:    "The Matrix",
		Year:     "1999",
		Director: "The Wachowskis",
		Cast:     "Keanu Reeves, Carrie-Anne Moss",
		Genre:    "Science Fiction",
		Plot:     "A hacker learns his world is a simulation.",
	}
	want := "Title: The Matrix | Year: 1999 | Director: The Wachowskis | Cast: Keanu Reeves, Carrie-Anne Moss | Genre: Science Fiction | Plot: A hacker learns his world is a simulation."
	if got := full.Document(); got != want {
		t.Errorf("Document() = %q, want %q", got, want)
	}

	sparse := Summary{Title: "Heat"}
	if got := sparse.Document(); got != "Title: Heat" {
		t.Errorf("Document() = %q, want %q", got, "Title: Heat")
	}
}

func TestStoreUpsertReplacesSameTitleAndYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := Summary{Title: "Blade Runner", Year: "1982", Plot: "first pass"}
	if err := store.Upsert(ctx, first, []float32{1, 0}, "model-a"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	second := Summary{Title: "Blade Runner", Year: "1982", Plot: "second pass"}
	if err := store.Upsert(ctx, second, []float32{0, 1}, "model-b"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("Count() = %d, want 1", count)
	}

	stored, err := store.vectors(ctx)
	if err != nil {
		t.Fatalf("vectors() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("vectors() returned %d entries, want 1", len(stored))
	}
	if stored[0].vector[0] != 0 || stored[0].vector[1] != 1 {
		t.Errorf("stored vector = %v, want [0 1]", stored[0].vector)
	}

	summary, err := store.getByID(ctx, stored[0].id)
	if err != nil {
		t.Fatalf("getByID() error = %v", err)
	}
	if summary.Plot != "second pass" {
		t.Errorf("Plot = %q, want %q", summary.Plot, "second pass")
	}
}

func TestStoreUpsertRequiresTitleAndVector(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, Summary{Title: "  "}, []float32{1}, "m"); err == nil {
		t.Error("Upsert() error = nil, want error for blank title")
	}
	if err := store.Upsert(ctx, Summary{Title: "Heat"}, nil, "m"); err == nil {
		t.Error("Upsert() error = nil, want error for empty vector")
	}
}

func TestImportReadsMixedJSONL(t *testing.T) {
	store := newTestStore(t)
	embedder := &stubEmbedder{dim: 3}
	input := strings.Join([]string{
		`{"title": "The Matrix", "year": 1999, "director": "The Wachowskis", "cast": ["Keanu Reeves", "Carrie-Anne Moss"], "genre": "Science Fiction", "plot": "A hacker learns his world is a simulation."}`,
		`{"title": "Finding Nemo", "year": "2003", "genre": ["Animation", "Family"], "plot": "A clownfish crosses the ocean to find his son."}`,
		`not json`,
		`{"year": 1984, "plot": "No title here."}`,
		``,
		`{"title": "Heat", "year": 1995, "plot": "A crew plans one last bank heist."}`,
	}, "\n")

	result, err := Import(context.Background(), store, embedder, strings.NewReader(input), logging.NewNop())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Imported != 3 {
		t.Errorf("Imported = %d, want 3", result.Imported)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	if len(embedder.batches) != 1 {
		t.Fatalf("embedder saw %d batches, want 1", len(embedder.batches))
	}
	wantDoc := "Title: The Matrix | Year: 1999 | Director: The Wachowskis | Cast: Keanu Reeves, Carrie-Anne Moss | Genre: Science Fiction | Plot: A hacker learns his world is a simulation."
	if got := embedder.batches[0][0]; got != wantDoc {
		t.Errorf("embedded document = %q, want %q", got, wantDoc)
	}
}

func TestImportBatchesLargeFiles(t *testing.T) {
	store := newTestStore(t)
	embedder := &stubEmbedder{dim: 2}

	var b strings.Builder
	for i := 0; i < 70; i++ {
		fmt.Fprintf(&b, "{\"title\": \"Movie %03d\", \"year\": 2000, \"plot\": \"plot\"}\n", i)
	}

	result, err := Import(context.Background(), store, embedder, strings.NewReader(b.String()), logging.NewNop())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Imported != 70 {
		t.Errorf("Imported = %d, want 70", result.Imported)
	}

	var sizes []int
	for _, batch := range embedder.batches {
		sizes = append(sizes, len(batch))
	}
	want := []int{32, 32, 6}
	if len(sizes) != len(want) {
		t.Fatalf("batch sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("batch %d size = %d, want %d", i, sizes[i], want[i])
		}
	}
}

func TestRetrieverRanksBySimilarity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seeds := []struct {
		summary Summary
		vector  []float32
	}{
		{Summary{Title: "The Matrix", Year: "1999"}, []float32{1, 0, 0}},
		{Summary{Title: "Finding Nemo", Year: "2003"}, []float32{0, 1, 0}},
		{Summary{Title: "Heat", Year: "1995"}, []float32{0, 0, 1}},
	}
	for _, seed := range seeds {
		if err := store.Upsert(ctx, seed.summary, seed.vector, "test-embedding"); err != nil {
			t.Fatalf("Upsert(%q) error = %v", seed.summary.Title, err)
		}
	}

	embedder := &stubEmbedder{dim: 3, axes: map[string]int{"heist": 2}}
	retriever := NewRetriever(store, embedder, 2, logging.NewNop())

	results, err := retriever.Search(ctx, "a crew pulls one last heist")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Summary.Title != "Heat" {
		t.Errorf("top result = %q, want %q", results[0].Summary.Title, "Heat")
	}
	if math.Abs(results[0].Score-1) > 1e-6 {
		t.Errorf("top score = %v, want 1", results[0].Score)
	}
	if results[1].Summary.Title != "The Matrix" {
		t.Errorf("second result = %q, want %q", results[1].Summary.Title, "The Matrix")
	}
}

func TestRetrieverEmptyStore(t *testing.T) {
	store := newTestStore(t)
	embedder := &stubEmbedder{dim: 2}
	retriever := NewRetriever(store, embedder, 5, logging.NewNop())

	results, err := retriever.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results != nil {
		t.Errorf("Search() = %v, want nil for empty store", results)
	}
}

func TestFormatScored(t *testing.T) {
	results := []Scored{
		{
			Summary: Summary{
				Title:    "The Matrix",
				Year:     "1999",
				Director: "The Wachowskis",
				Cast:     "Keanu Reeves",
				Genre:    "Science Fiction",
				Plot:     "A hacker wakes up.",
			},
			Score: 0.92,
		},
		{Summary: Summary{Title: "Heat", Year: "1995"}, Score: 0.5},
	}
	want := "1. The Matrix (1999)\n" +
		"   Director: The Wachowskis\n" +
		"   Cast: Keanu Reeves\n" +
		"   Genre: Science Fiction\n" +
		"   Plot: A hacker wakes up.\n" +
		"\n" +
		"2. Heat (1995)"
	if got := FormatScored(results); got != want {
		t.Errorf("FormatScored() = %q, want %q", got, want)
	}
}

func TestFormatScoredNoResults(t *testing.T) {
	if got := FormatScored(nil); got != "No matching summaries found." {
		t.Errorf("FormatScored(nil) = %q", got)
	}
}

func TestFormatScoredTruncatesPlot(t *testing.T) {
	long := strings.Repeat("x", 900)
	got := FormatScored([]Scored{{Summary: Summary{Title: "Epic", Plot: long}}})
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("formatted plot not truncated: %q", got[len(got)-20:])
	}
	if strings.Contains(got, strings.Repeat("x", 801)) {
		t.Error("formatted plot longer than limit")
	}
	if !strings.Contains(got, strings.Repeat("x", 800)) {
		t.Error("formatted plot shorter than limit")
	}
}

func TestFormatScoredTitleCasesShoutingTitles(t *testing.T) {
	got := FormatScored([]Scored{{Summary: Summary{Title: "THE DARK KNIGHT", Year: "2008"}}})
	want := "1. The Dark Knight (2008)"
	if got != want {
		t.Errorf("FormatScored() = %q, want %q", got, want)
	}

	mixed := FormatScored([]Scored{{Summary: Summary{Title: "Se7en", Year: "1995"}}})
	if mixed != "1. Se7en (1995)" {
		t.Errorf("FormatScored() = %q, want mixed-case title untouched", mixed)
	}
}

func TestStoreCheckHealth(t *testing.T) {
	store := newTestStore(t)
	if err := store.CheckHealth(context.Background()); err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
}
