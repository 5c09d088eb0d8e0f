package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zzucch/itmo-is-ml-parsing-2024-5-sem/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without running anything.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Prints the configuration after discovery, defaults and environment substitution, as TOML. The file is not validated.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Long:  "Writes a commented default config.toml to path, or to the XDG config location when no path is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
}

func runConfigTest(_ *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		discovered, err := config.Discover()
		if err != nil {
			return err
		}
		path = discovered
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.Error
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

// runConfigShow skips validation so an invalid file can still be inspected.
func runConfigShow(_ *cobra.Command, _ []string) error {
	path, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadWithoutValidation(path)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if jsonOutput {
		printJSON(cfg)
		return nil
	}
	return cfg.Encode(os.Stdout)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func printConfigErrors(e *config.Error) {
	if len(e.Missing) > 0 {
		fmt.Println("Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println()
	}

	if len(e.Errors) > 0 {
		fmt.Println("Validation errors:")
		for _, err := range e.Errors {
			fmt.Printf("  - %s\n", err)
		}
		fmt.Println()
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Log:       %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
	fmt.Printf("  Listings:  %s\n", strings.Join(cfg.Listing.URLs, ", "))
	fmt.Printf("  Files:     %s (spacing %s)\n", cfg.Listing.FileListBase, cfg.Listing.RequestSpacing)
	fmt.Printf("  Metadata:  %s\n", cfg.Metadata.BaseURL)

	browser := "headless"
	if !cfg.Browser.Headless {
		browser = "headful"
	}
	if cfg.Browser.ExecPath != "" {
		browser += ", " + cfg.Browser.ExecPath
	}
	fmt.Printf("  Browser:   %s (timeout %s)\n", browser, cfg.Browser.RenderTimeout)
	fmt.Printf("  Enrich:    %d attempts, abort after %d failures\n", cfg.Enrich.MaxAttempts, cfg.Enrich.FailureThreshold)
	if cfg.Enrich.Limit > 0 {
		fmt.Printf("  Limit:     %d entries\n", cfg.Enrich.Limit)
	}
	fmt.Printf("  Output:    %s\n", cfg.Output.Path)
	if cfg.Cache.Enabled {
		fmt.Printf("  Cache:     %s (ttl %s)\n", cfg.Cache.Path, cfg.Cache.TTL)
	}
}
