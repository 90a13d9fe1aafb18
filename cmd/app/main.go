package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"pos-terminal/internal/adapters/cli"
	"pos-terminal/internal/adapters/repl"
	"pos-terminal/internal/adapters/web"
	"pos-terminal/internal/app"
	"pos-terminal/internal/config"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// token <cashier> <terminal-id> [ttl] mints a bearer token for the HTTP
	// bridge and needs nothing but JWT_SECRET.
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(cfg, os.Args[2:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	svc, cleanup, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start terminal: %v", err)
	}
	defer cleanup()

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, svc, os.Args[1:], os.Stdin, os.Stdout); err != nil {
			if errors.Is(err, cli.ErrUsage) {
				fmt.Fprintln(os.Stderr, err)
				cleanup()
				os.Exit(2)
			}
			cleanup()
			log.Fatalf("Error: %v", err)
		}
		return
	}

	repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout)
}

func issueToken(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: app token <cashier> <terminal-id> [ttl]")
	}
	ttl := 12 * time.Hour
	if len(args) >= 3 {
		d, err := time.ParseDuration(args[2])
		if err != nil {
			return fmt.Errorf("invalid ttl %q: %w", args[2], err)
		}
		ttl = d
	}
	token, err := web.IssueToken(cfg.JWTSecret, web.Operator{Cashier: args[0], TerminalID: args[1]}, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
