package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seomate/seomate/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/seomate/config.toml)")
	refreshSeconds := flag.Int("refresh", 0, "background refresh interval in seconds (optional, -1 disables)")
	token := flag.String("token", "", "bearer token to use instead of the configured one (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, Token: *token}
	switch refresh := *refreshSeconds; {
	case refresh > 0:
		opts.RefreshEvery = time.Duration(refresh) * time.Second
	case refresh < 0:
		opts.RefreshEvery = -1
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "seomate: %v\n", err)
		return 1
	}
	return 0
}
