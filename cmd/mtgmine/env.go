package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// loadEnvFile loads path into the environment without overriding variables
// that are already set. With no path, .env is loaded if it exists. It
// returns the file actually loaded, if any.
func loadEnvFile(path string) (string, error) {
	if path == "" {
		if err := godotenv.Load(defaultEnvFile); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", nil
			}
			return "", fmt.Errorf("failed to load %s: %w", defaultEnvFile, err)
		}
		return defaultEnvFile, nil
	}

	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return path, nil
}
