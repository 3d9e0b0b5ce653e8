package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := NewCLI(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
