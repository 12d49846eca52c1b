package driven

// ConfigStore provides access to application configuration stored under
// flattened dot keys such as "source.url".
type ConfigStore interface {
	// Get retrieves a raw value. The boolean reports whether the key exists.
	Get(key string) (any, bool)

	// GetString returns "" if the key is missing or not a string.
	GetString(key string) string

	// GetInt returns the number truncated to an int, 0 if missing or not numeric.
	GetInt(key string) int

	// GetFloat returns 0 if the key is missing or not numeric.
	GetFloat(key string) float64

	// GetBool returns false if the key is missing or not a boolean.
	GetBool(key string) bool

	// Keys returns the sorted keys equal to prefix or nested under it.
	// "scoring.weights" matches "scoring.weights.chatgpt" only.
	Keys(prefix string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
