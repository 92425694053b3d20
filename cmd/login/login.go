// Package login implements session subcommands.
package login

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parishlib/libris/internal/conf"
	"github.com/parishlib/libris/internal/console"
)

// Command creates the login command.
func Command(settings *conf.Settings) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the backend and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			c, err := console.FromSettings(settings)
			if err != nil {
				return err
			}
			defer c.Close()

			session, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			// Persist the token so later invocations are authenticated.
			paths, err := conf.GetDefaultConfigPaths()
			if err != nil {
				return err
			}
			configPath := filepath.Join(paths[len(paths)-1], "config.yaml")
			if err := conf.SaveSettings(settings, configPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", session.User.Name, session.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
