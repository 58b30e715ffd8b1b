package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/studyloop/studyloop/cmd"
)

func main() {
	// Load .env if present. Variables already set in the environment
	// win over the file.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
