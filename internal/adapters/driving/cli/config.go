package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ssp-cli/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change the remote store connection, the data directory and
the narrative drafting service.

Settings are stored in ~/.ssp/config.toml. SSP_REMOTE_URL and
SSP_REMOTE_TOKEN override the stored values.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. Available keys:
  ` + strings.Join(services.SettingKeys, "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Store the remote store token",
	Long:  `Prompt for the bearer token presented to the remote store. Input is not echoed.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigToken,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configTokenCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("File: %s\n", settingsService.ConfigPath())
	cmd.Println()

	cmd.Println("[Remote]")
	if settings.Remote.IsConfigured() {
		cmd.Printf("  URL: %s\n", settings.Remote.URL)
	} else {
		cmd.Printf("  URL: (not set, offline)\n")
	}
	if settings.Remote.Token != "" {
		cmd.Printf("  Token: %s\n", maskToken(settings.Remote.Token))
	} else {
		cmd.Printf("  Token: (not set)\n")
	}
	cmd.Printf("  Rate limit: %g req/s\n", settings.Remote.RateLimit)
	cmd.Printf("  Timeout: %s\n", settings.Remote.Timeout)
	cmd.Println()

	cmd.Println("[Data]")
	dir := settings.DataDir
	if dir == "" {
		dir = "(default)"
	}
	cmd.Printf("  Directory: %s\n", dir)
	cmd.Println()

	cmd.Println("[Narrative]")
	if settings.Narrative.IsConfigured() {
		cmd.Printf("  URL: %s\n", settings.Narrative.BaseURL)
	} else {
		cmd.Printf("  URL: (not set, drafting disabled)\n")
	}
	cmd.Printf("  Model: %s\n", settings.Narrative.Model)
	cmd.Println()

	if err := settingsService.Validate(settings); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	value := args[1]
	if args[0] == services.KeyRemoteToken {
		value = maskToken(value)
	}
	cmd.Printf("Set %s = %s\n", args[0], value)
	return nil
}

func runConfigToken(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Token: ")
	token, err := readSecret(cmd)
	cmd.Println()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return errors.New("no token entered")
	}

	if err := settingsService.Set(services.KeyRemoteToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	cmd.Printf("Token saved (%s)\n", maskToken(token))
	return nil
}

// readSecret reads a line without echo from a terminal, or plainly otherwise.
func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// maskToken masks a token for display.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
