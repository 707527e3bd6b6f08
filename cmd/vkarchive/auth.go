package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"vkarchive/pkg/auth"
	"vkarchive/pkg/logger"
	"vkarchive/pkg/ui"
)

var (
	skipCheck bool
	stdin     = bufio.NewReader(os.Stdin)
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage VK access tokens",
	Long: `Manage stored VK access tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (VKARCHIVE_ACCESS_TOKEN, read only)`,
}

var loginCmd = &cobra.Command{
	Use:   "login [login]",
	Short: "Store an access token",
	Long: `Store a VK access token, and optionally a separate token for audio
lookups. The token is checked with a users.get call before it is saved.`,
	Example: `  vkarchive auth login
  vkarchive auth login archivist`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout <login>",
	Short: "Remove a stored token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := auth.NewManager()
		if err != nil {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}
		if err := manager.Delete(args[0]); err != nil {
			return err
		}
		ui.PrintSuccess("Removed " + args[0])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored logins",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := auth.NewManager()
		if err != nil {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}

		accounts, err := manager.List()
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			ui.PrintStatus("No stored logins. Use 'vkarchive auth login' to add one")
			return nil
		}

		ui.PrintHighlight("Stored logins")
		for i, account := range accounts {
			sanitized := auth.SanitizeAccount(account)
			fmt.Printf("%d. %s\n", i+1, sanitized.Login)
			fmt.Printf("   Access token: %s\n", sanitized.AccessToken)
			if sanitized.AudioToken != "" {
				fmt.Printf("   Audio token:  %s\n", sanitized.AudioToken)
			}
			fmt.Printf("   Modified:     %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd, logoutCmd, listCmd)

	loginCmd.Flags().BoolVar(&skipCheck, "skip-check", false, "store the token without calling the API")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	auth.ShowTokenGuide(os.Stdout)

	login := ""
	if len(args) > 0 {
		login = args[0]
	}
	if login == "" {
		fmt.Print("Login (any name for this token): ")
		input, err := stdin.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read login: %w", err)
		}
		login = strings.TrimSpace(input)
	}
	if login == "" {
		return fmt.Errorf("login is required")
	}

	fmt.Print("Access token: ")
	accessToken, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}
	fmt.Print("\nAudio token (Enter to reuse the access token): ")
	audioToken, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read audio token: %w", err)
	}
	fmt.Println()

	account := &auth.Account{Login: login, AccessToken: accessToken, AudioToken: audioToken}

	if !skipCheck {
		session := auth.NewSession(account, cfg, nil, logger.GetLogger())
		users, err := session.Handle().UsersGet(context.Background())
		if err != nil {
			return fmt.Errorf("token check failed: %w", err)
		}
		if len(users) > 0 {
			ui.PrintSuccess(fmt.Sprintf("Auth successful as %s %s", users[0].FirstName, users[0].LastName))
		}
	}

	if err := manager.Store(account); err != nil {
		return err
	}
	ui.PrintSuccess("Token stored for " + login)
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret() (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
