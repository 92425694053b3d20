package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parishlib/libris/cmd/books"
	"github.com/parishlib/libris/cmd/categories"
	"github.com/parishlib/libris/cmd/checkouts"
	"github.com/parishlib/libris/cmd/dashboard"
	"github.com/parishlib/libris/cmd/login"
	"github.com/parishlib/libris/cmd/members"
	"github.com/parishlib/libris/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "libris",
		Short: "Libris library console CLI",
		Long:  "Manage the library catalog, members and checkouts against the libris REST backend.",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		books.Command(settings),
		categories.Command(settings),
		members.Command(settings),
		checkouts.Command(settings),
		dashboard.Command(settings),
		login.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Server.URL, "server", viper.GetString("server.url"), "Base URL of the REST backend")
	rootCmd.PersistentFlags().IntVar(&settings.Server.PerPage, "per-page", viper.GetInt("server.perpage"), "Page size for paginated listings")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
