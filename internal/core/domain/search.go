package domain

// ChunkRelevanceFloor is the minimum cosine similarity for a chunk to be
// surfaced by retrieval. Chunks at or below the floor are noise and are
// never returned, even when fewer than the requested number qualify.
const ChunkRelevanceFloor = 0.3

// RankedDocument is a document with its similarity to the query.
type RankedDocument struct {
	Document Document

	// Score is the cosine similarity of the query embedding against the
	// document-level embedding.
	Score float64
}

// RankedChunk is a chunk with its similarity to the query, carrying the
// parent document's title for citation.
type RankedChunk struct {
	Chunk Chunk

	// DocumentTitle is the parent document's title.
	DocumentTitle string

	// Score is the cosine similarity of the query embedding against the
	// chunk embedding. Always strictly above ChunkRelevanceFloor.
	Score float64
}

// SearchResults is the two-stage retrieval output: the closest documents
// (no floor applied) and the relevant chunks drawn from them.
type SearchResults struct {
	Documents []RankedDocument
	Chunks    []RankedChunk
}
