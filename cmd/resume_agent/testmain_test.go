package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads the repository .env if present; tests run from cmd/resume_agent
func TestMain(m *testing.M) {
	_ = godotenv.Load(filepath.Join("..", "..", ".env"))

	os.Exit(m.Run())
}
