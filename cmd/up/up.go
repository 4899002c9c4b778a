package up

import (
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/chmigrate/chmigrate/cmd/internal/bootstrap"
)

const stepFlag = "step"

var upFlags = map[string]cobraflags.Flag{
	stepFlag: &cobraflags.IntFlag{
		Name:  stepFlag,
		Value: 0,
		Usage: "Number of migrations to apply (0 applies all pending)",
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations in ascending version order.

Each migration is recorded in the history table before and after its
statements run, so an interrupted run leaves a dirty record that must be
resolved with "force" or "reset" before further migrations are accepted.`,
	RunE: upCommand,
}

func NewUpCommand() *cobra.Command {
	cobraflags.RegisterMap(upCmd, upFlags)
	return upCmd
}

func upCommand(cmd *cobra.Command, _ []string) error {
	m, closeConn, err := bootstrap.NewMigrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeConn()

	return m.Up(cmd.Context(), upFlags[stepFlag].GetInt())
}
