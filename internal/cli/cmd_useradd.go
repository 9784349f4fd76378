package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
)

// newUserAddCmd creates the useradd command
func newUserAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "useradd <email>",
		Short: "Create a user account",
		Long: `Create a user account directly in the database.

The password can be supplied with --password; without it the command
prompts on the terminal.

Examples:
  oblat useradd dev@example.com
  oblat useradd lead@example.com --role pm --name "Team Lead"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			password, _ := cmd.Flags().GetString("password")
			fullName, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")

			if password == "" {
				var err error
				password, err = promptPassword()
				if err != nil {
					return err
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := auth.NewService(store, newLogger(), cfg.Auth.SessionTTL)
			identity, _, err := svc.SignUp(email, password, fullName, auth.Role(role))
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			if !quiet {
				fmt.Printf("Created user %s (%s)\n", identity.Email, identity.Role)
			}
			return nil
		},
	}

	cmd.Flags().String("password", "", "password (prompted if omitted)")
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("role", string(auth.DefaultRole), "role (pm, developer, tester, analyst)")

	return cmd
}

// promptPassword reads a password from stdin. Piped input is accepted so
// scripts can do: echo secret | oblat useradd a@b.com
func promptPassword() (string, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Print("Password: ")
	}
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", fmt.Errorf("no password given")
	}
	return strings.TrimSpace(scanner.Text()), nil
}
