package enrich

// Config holds enrichment generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for enrichment.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   384,
		Temperature: 0.4,
	}
}
