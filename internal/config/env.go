package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; variables already set in the process
// environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads the first readable env file.
func loadEnvFiles() {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			slog.Debug("Loaded environment variables", slog.String("file", f))
			return
		}
	}
}
