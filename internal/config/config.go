package config

import "os"

// Getenv returns the value of the environment variable or the fallback when
// unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
