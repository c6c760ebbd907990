package main

import (
	"github.com/joho/godotenv"

	"github.com/nexuslab/tdma/cmd/tdma/cmd"
)

func main() {
	// A .env file can carry TDMA_* overrides; absence is fine.
	_ = godotenv.Load()

	cmd.Execute()
}
