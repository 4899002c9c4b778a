package show

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chmigrate/chmigrate/cmd/internal/bootstrap"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show migration status",
	Long: `Show every migration file reconciled against the history table:
current status, whether the on-disk script still matches the fingerprint
recorded when it was applied, and the current apply position.`,
	RunE: showCommand,
}

func NewShowCommand() *cobra.Command {
	return showCmd
}

func showCommand(cmd *cobra.Command, _ []string) error {
	m, closeConn, err := bootstrap.NewMigrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeConn()

	report, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Print(report.String())
	return nil
}
