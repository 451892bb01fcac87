package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cliadapter "github.com/kirillkom/resume-screener/internal/adapters/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliadapter.NewApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "screener:", err)
		stop()
		os.Exit(1)
	}
}
