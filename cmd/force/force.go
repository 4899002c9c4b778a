package force

import (
	"github.com/spf13/cobra"

	"github.com/chmigrate/chmigrate/cmd/internal/bootstrap"
)

var forceCmd = &cobra.Command{
	Use:   "force",
	Short: "Mark the last dirty migration as completed",
	Long: `Promote the newest dirty history record to its clean counterpart.

Use this after verifying that the interrupted migration's statements did in
fact complete. The promotion is recorded as a new history row; nothing is
mutated or deleted.`,
	RunE: forceCommand,
}

func NewForceCommand() *cobra.Command {
	return forceCmd
}

func forceCommand(cmd *cobra.Command, _ []string) error {
	m, closeConn, err := bootstrap.NewMigrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeConn()

	return m.Force(cmd.Context(), false)
}
