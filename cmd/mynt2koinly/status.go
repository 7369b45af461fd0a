package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/ArionMiles/mynt2koinly/internal/plugins"
	"github.com/ArionMiles/mynt2koinly/pkg/client"
	"github.com/ArionMiles/mynt2koinly/pkg/config"
	"github.com/ArionMiles/mynt2koinly/pkg/storage"
)

// runStatus checks the configuration and authentication status.
func runStatus(ctx context.Context, logger *slog.Logger, args []string) error {
	var opts options
	fs := newFlagSet("status", &opts)
	fs.StringVar(&opts.writers, "writers", "", "comma-separated writers to check (KOINLY_WRITERS)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("=== mynt2koinly Status ===")
	fmt.Println()

	allGood := true

	cfg := checkConfig(opts, &allGood)
	if cfg != nil {
		logger = configureLogging(cfg)
		logger.Debug("checking configuration", "writers", cfg.WriterNames())
		registry := plugins.Default()
		needsGoogle := checkWriters(registry, cfg, &allGood)
		checkInput(cfg, &allGood)
		if needsGoogle {
			checkCredentials(cfg, &allGood)
			if token := checkTokenStatus(cfg.TokenFile, &allGood); token != nil {
				checkGoogleClient(ctx, registry, cfg, &allGood)
			}
		}
	}

	printFinalStatus(allGood)
	return nil
}

func checkConfig(opts options, allGood *bool) *config.Config {
	label := "environment"
	if opts.configPath != "" {
		label = opts.configPath
	}
	fmt.Printf("Config (%s): ", label)

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return nil
	}
	fmt.Println("✓ Loaded")
	return cfg
}

func checkWriters(registry *plugins.Registry, cfg *config.Config, allGood *bool) bool {
	needsGoogle := false
	fmt.Println("Writers:")
	for _, name := range cfg.WriterNames() {
		plugin, err := registry.GetWriter(name)
		if err != nil {
			fmt.Printf("  %s: ✗ %v\n", name, err)
			*allGood = false
			continue
		}
		if len(plugin.RequiredScopes()) > 0 {
			needsGoogle = true
		}
		fmt.Printf("  %s: ✓ %s\n", name, plugin.Description())
	}
	return needsGoogle
}

func checkInput(cfg *config.Config, allGood *bool) {
	if cfg.Input == "" {
		return
	}
	fmt.Printf("Statement (%s): ", cfg.Input)
	loc, err := storage.ParseLocation(cfg.Input)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}
	if loc.Scheme != storage.SchemeFile {
		fmt.Println("✓ Remote (checked on convert)")
		return
	}
	if _, err := os.Stat(loc.Key); err != nil {
		fmt.Println("✗ Not found")
		*allGood = false
		return
	}
	fmt.Println("✓ Found")
}

func checkCredentials(cfg *config.Config, allGood *bool) {
	fmt.Printf("Credentials file (%s): ", cfg.ClientSecretFile)
	if _, err := os.Stat(cfg.ClientSecretFile); os.IsNotExist(err) {
		fmt.Println("✗ Not found")
		*allGood = false
		return
	}
	fmt.Println("✓ Found")
}

func checkTokenStatus(tokenFile string, allGood *bool) *oauth2.Token {
	fmt.Printf("OAuth token (%s): ", tokenFile)
	token, err := client.TokenFromFile(tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("✗ Not found (run 'mynt2koinly setup')")
		} else {
			fmt.Println("✗ Invalid format")
		}
		*allGood = false
		return nil
	}

	if token.Expiry.Before(time.Now()) {
		fmt.Println("⚠ Expired (will refresh on next run)")
	} else {
		fmt.Printf("✓ Valid (expires: %s)\n", token.Expiry.Format(time.RFC3339))
	}
	return token
}

func checkGoogleClient(ctx context.Context, registry *plugins.Registry, cfg *config.Config, allGood *bool) {
	fmt.Print("Google OAuth client: ")
	if _, err := googleClient(ctx, registry, cfg, cfg.WriterNames()); err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}
	fmt.Println("✓ Ready")
}

func printFinalStatus(allGood bool) {
	fmt.Println()
	if allGood {
		fmt.Println("Status: ✓ Ready to run")
		fmt.Println()
		fmt.Println("Run 'mynt2koinly convert <statement>' to build the ledger.")
	} else {
		fmt.Println("Status: ✗ Configuration issues detected")
		fmt.Println()
		fmt.Println("Fix the issues above, then run 'mynt2koinly status' again.")
	}
}
