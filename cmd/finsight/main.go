package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	app := &cli.Command{
		Name:  "finsight",
		Usage: "validated financial research from a natural-language question",
		Commands: []*cli.Command{
			askCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
