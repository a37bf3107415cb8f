package config

import "os"

// GetEnv reads an environment variable, returning "" when unset. Defaults
// are the caller's concern.
func GetEnv(key string) string {
	return os.Getenv(key)
}
