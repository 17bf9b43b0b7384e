package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/unera/backend/internal/app"
)

func main() {
	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		slog.Error("unera backend exited", "error", err)
		os.Exit(1)
	}
}
