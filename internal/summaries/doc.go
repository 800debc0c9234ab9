// Package summaries stores movie plot summaries alongside embedding vectors
// and answers natural language questions about the collection.
//
// Records arrive as JSONL exports and are embedded through a configurable
// provider before landing in sqlite. A search embeds the question with the
// same provider and ranks every stored vector by cosine similarity, so the
// store answers "that movie about dreams within dreams" even when the title
// never appears in the question.
package summaries
