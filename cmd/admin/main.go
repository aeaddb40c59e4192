package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cardcms/internal/client"
	"cardcms/internal/client/cli"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "base URL of the card API server")
	tokenPath := flag.String("token-file", defaultTokenPath(), "file used to persist the session token")
	flag.Parse()

	api := client.New(*serverURL)
	tokens := client.NewTokenStore(*tokenPath)

	app := cli.NewApp(api, tokens, os.Stdin, os.Stdout)
	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cardcms-token"
	}
	return filepath.Join(home, ".cardcms", "token")
}
