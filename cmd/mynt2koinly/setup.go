package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ArionMiles/mynt2koinly/internal/plugins"
	"github.com/ArionMiles/mynt2koinly/pkg/client"
)

// runSetup handles the OAuth setup flow for writers that need Google access.
func runSetup(ctx context.Context, logger *slog.Logger, args []string) error {
	var opts options
	var force bool
	fs := newFlagSet("setup", &opts)
	fs.BoolVar(&force, "force", false, "re-authenticate even if a token exists")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger = configureLogging(cfg)

	fmt.Println("=== mynt2koinly Setup ===")
	fmt.Println()

	if _, err := os.Stat(cfg.ClientSecretFile); os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found: %s\n\nTo get your credentials:\n"+
			"1. Go to https://console.cloud.google.com/apis/credentials\n"+
			"2. Create an OAuth 2.0 Client ID (Desktop application)\n"+
			"3. Download the JSON file and save it as '%s'", cfg.ClientSecretFile, cfg.ClientSecretFile)
	}

	if !force {
		if _, err := os.Stat(cfg.TokenFile); err == nil {
			fmt.Printf("Already authenticated! Token file exists: %s\n", cfg.TokenFile)
			fmt.Println()
			fmt.Println("To re-authenticate, run: mynt2koinly setup -force")
			return nil
		}
	}

	if force {
		if err := os.Remove(cfg.TokenFile); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove existing token", "error", err)
		}
		fmt.Println("Forcing re-authentication...")
		fmt.Println()
	}

	registry := plugins.Default()
	var names []string
	for _, p := range registry.ListWriters() {
		names = append(names, p.Name())
	}
	scopes, err := registry.Scopes(names...)
	if err != nil {
		return err
	}

	fmt.Println("This will set up OAuth authentication with Google.")
	fmt.Println()
	fmt.Println("Required permissions:")
	for _, scope := range scopes {
		fmt.Printf("  - %s\n", scope)
	}
	fmt.Println()
	fmt.Println("Starting authentication...")
	fmt.Println()

	if _, err := client.Authorize(ctx, client.Config{
		SecretFile: cfg.ClientSecretFile,
		TokenFile:  cfg.TokenFile,
		Scopes:     scopes,
	}); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Setup Complete ===")
	fmt.Println()
	fmt.Printf("Token saved to: %s\n", cfg.TokenFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set GSHEETS_ID or GSHEETS_TITLE")
	fmt.Println("  2. Run 'mynt2koinly convert -writers sheets <statement>'")
	fmt.Println()

	return nil
}
