package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotEnvCandidates lists the .env locations tried, in order. The first one
// that exists wins.
func DotEnvCandidates() []string {
	files := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		files = append(files,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}
	return files
}

// LoadDotEnv loads environment variables from the first .env file found.
// Variables already set in the process environment are never overridden.
// It returns the path that was loaded, or "" when no file exists.
func LoadDotEnv() (string, error) {
	return LoadDotEnvFrom(DotEnvCandidates()...)
}

// LoadDotEnvFrom is LoadDotEnv over an explicit candidate list.
func LoadDotEnvFrom(candidates ...string) (string, error) {
	for _, file := range candidates {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return "", fmt.Errorf("failed to load %s: %w", file, err)
		}
		return file, nil
	}
	// No .env is fine: the process environment is used as is.
	return "", nil
}
