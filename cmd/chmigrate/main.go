// Command chmigrate is a versioned SQL migration runner for ClickHouse.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chmigrate/chmigrate/cmd/create"
	"github.com/chmigrate/chmigrate/cmd/down"
	"github.com/chmigrate/chmigrate/cmd/force"
	"github.com/chmigrate/chmigrate/cmd/reset"
	"github.com/chmigrate/chmigrate/cmd/show"
	"github.com/chmigrate/chmigrate/cmd/sql"
	"github.com/chmigrate/chmigrate/cmd/up"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "chmigrate",
	Short: "Versioned SQL migrations for ClickHouse",
	Long: `chmigrate applies and reverts versioned SQL migration scripts
against a ClickHouse database, tracking every lifecycle transition in an
append-only history table so that interrupted runs are detectable and
recoverable.

chmigrate assumes a single logical writer: it provides no locking, and
concurrent runners against the same history table can race each other.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(create.NewCreateCommand())
	rootCmd.AddCommand(show.NewShowCommand())
	rootCmd.AddCommand(up.NewUpCommand())
	rootCmd.AddCommand(down.NewDownCommand())
	rootCmd.AddCommand(force.NewForceCommand())
	rootCmd.AddCommand(reset.NewResetCommand())
	rootCmd.AddCommand(sql.NewSQLCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
