package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/Joseda-hg/taskdesk/internal/cli"
)

var version = "dev"

func main() {
	// A missing .env is fine; TASKDESK_* variables may come from the shell.
	_ = godotenv.Load()

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
