package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown source or extractor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtraction indicates the source material could not be read or
	// yielded insufficient text to be worth indexing.
	ErrExtraction = errors.New("text extraction failed")

	// ErrAnalysis indicates the model's structured analysis output
	// violated its contract (required fields absent or unparsable).
	ErrAnalysis = errors.New("analysis output invalid")

	// ErrEmbedding indicates an embedding call failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrRetrieval indicates the underlying store failed during search.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrToolExecution indicates one tool call failed. Non-fatal to the
	// orchestration loop; the failure is serialised back to the model.
	ErrToolExecution = errors.New("tool execution failed")

	// ErrQuotaExceeded indicates an external write was rate limited.
	// Retried internally with backoff before being surfaced.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrVerifierUnavailable indicates the external verification backend
	// is unreachable or not running.
	ErrVerifierUnavailable = errors.New("verification backend unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
