package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
