package llm

// Client abstracts an LLM provider used by the analysis services.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// GenerateJSON sends a system instruction plus user content and returns a
	// single JSON string conforming to the given response schema
	// (a JSON-schema-shaped map, provider-dependent how strictly it is enforced).
	GenerateJSON(system, user string, schema map[string]any) (string, error)
	// GenerateText returns free-form text for a prompt.
	GenerateText(prompt string) (string, error)
	// DescribeImage takes raw image bytes and the report description as
	// context and returns a free-text description of the pictured emergency.
	// The provider owns the instruction prompt wrapped around the context.
	DescribeImage(imageData []byte, context string) (string, error)
	// SourceName returns a short provider label (e.g., "Gemini", "ChatGPT").
	SourceName() string
}
