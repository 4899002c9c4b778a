package reset

import (
	"github.com/spf13/cobra"

	"github.com/chmigrate/chmigrate/cmd/internal/bootstrap"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Roll the last dirty migration back to the prior state",
	Long: `Resolve the newest dirty history record by re-appending the
second-newest record verbatim, treating the interrupted attempt as if it had
reverted to the last known-good state. Statements the attempt already
executed are not undone; clean them up manually if needed.`,
	RunE: resetCommand,
}

func NewResetCommand() *cobra.Command {
	return resetCmd
}

func resetCommand(cmd *cobra.Command, _ []string) error {
	m, closeConn, err := bootstrap.NewMigrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeConn()

	return m.Force(cmd.Context(), true)
}
