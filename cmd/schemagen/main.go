package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/goliatone/go-schemagen/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env := commands.Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
	}
	if err := commands.Run(ctx, os.Args[1:], env); err != nil {
		fmt.Fprintf(os.Stderr, "schemagen: %v\n", err)
		stop()
		os.Exit(1)
	}
}
