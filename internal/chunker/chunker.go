// Package chunker splits extracted document text into overlapping,
// roughly sentence-aligned windows for embedding and retrieval.
package chunker

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Span is one chunk of text with its offsets into the source string.
// Spans are deterministic: chunking the same text with the same settings
// always yields the same spans.
type Span struct {
	// Text is the covered substring.
	Text string

	// StartIndex and EndIndex are character offsets into the source,
	// covering [StartIndex, EndIndex).
	StartIndex int
	EndIndex   int
}

// Chunker produces overlapping spans from raw text.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// An overlap at or above the chunk size cannot make forward progress
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// Chunk splits text into overlapping spans.
//
// Each proposed boundary at start+chunkSize is snapped back to the nearest
// sentence terminator or newline, provided the break point lies past the
// chunk's midpoint. This keeps chunks roughly sentence-aligned without a
// full sentence tokenizer. Empty or very short text yields exactly one
// span covering the whole string.
func (c *Chunker) Chunk(text string) []Span {
	textLen := len(text)
	if textLen <= c.chunkSize {
		return []Span{{Text: text, StartIndex: 0, EndIndex: textLen}}
	}

	estimated := textLen/(c.chunkSize-c.overlap) + 1
	spans := make([]Span, 0, estimated)

	start := 0
	for {
		end := start + c.chunkSize
		if end >= textLen {
			spans = append(spans, Span{
				Text:       text[start:textLen],
				StartIndex: start,
				EndIndex:   textLen,
			})
			break
		}

		// Snap back to a sentence break if one exists past the midpoint
		mid := start + c.chunkSize/2
		for i := end - 1; i > mid; i-- {
			if isBreak(text[i]) {
				end = i + 1
				break
			}
		}

		spans = append(spans, Span{
			Text:       text[start:end],
			StartIndex: start,
			EndIndex:   end,
		})

		next := end - c.overlap
		if next <= start {
			// Forward-progress guard: the next start must strictly
			// advance or chunking would never terminate
			next = start + 1
		}
		start = next
	}

	return spans
}

// isBreak reports whether b terminates a sentence or line.
func isBreak(b byte) bool {
	return b == '.' || b == '!' || b == '?' || b == '\n'
}
