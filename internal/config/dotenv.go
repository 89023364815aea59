package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files from the working directory.
// Priority: OS env > .env.local > .env.{APP_ENV} > .env
// Returns the files actually loaded.
func LoadDotEnv() []string {
	return loadDotEnvFrom(".")
}

func loadDotEnvFrom(dir string) []string {
	candidates := []string{".env.local"}
	if env := os.Getenv("APP_ENV"); env != "" && env != "local" {
		candidates = append(candidates, ".env."+env)
	}
	candidates = append(candidates, ".env")

	var loaded []string
	for _, f := range candidates {
		path := filepath.Join(dir, f)
		if _, err := os.Stat(path); err == nil {
			loaded = append(loaded, path)
		}
	}
	// godotenv.Load never overwrites a variable that is already set, so earlier files win
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
