package coach

// Config holds coaching note generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MaxItems caps observations and suggestions kept from a response.
	MaxItems int
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   600,
		Temperature: 0.4,
		MaxItems:    4,
	}
}
