package summaries

import "time"

// Summary is one movie record in the summaries store.
type Summary struct {
	ID        int64
	Title     string
	Year      string
	Director  string
	Cast      string
	Genre     string
	Plot      string
	CreatedAt time.Time
}

// Scored pairs a summary with its similarity to a query.
type Scored struct {
	Summary Summary
	Score   float64
}

// Document renders the text that gets embedded for a summary. Keeping the
// shape stable matters: stored vectors were produced from exactly this
// rendering, and a different one would skew every comparison.
func (s Summary) Document() string {
	doc := "Title: " + s.Title
	if s.Year != "" {
		doc += " | Year: " + s.Year
	}
	if s.Director != "" {
		doc += " | Director: " + s.Director
	}
	if s.Cast != "" {
		doc += " | Cast: " + s.Cast
	}
	if s.Genre != "" {
		doc += " | Genre: " + s.Genre
	}
	if s.Plot != "" {
		doc += " | Plot: " + s.Plot
	}
	return doc
}
