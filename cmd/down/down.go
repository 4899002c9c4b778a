package down

import (
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/chmigrate/chmigrate/cmd/internal/bootstrap"
)

const stepFlag = "step"

var downFlags = map[string]cobraflags.Flag{
	stepFlag: &cobraflags.IntFlag{
		Name:  stepFlag,
		Value: 0,
		Usage: "Number of migrations to revert (0 reverts all applied)",
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert applied migrations",
	Long: `Revert applied migrations in descending version order, most recent
first. Reverting follows the same dirty-tracking protocol as "up".`,
	RunE: downCommand,
}

func NewDownCommand() *cobra.Command {
	cobraflags.RegisterMap(downCmd, downFlags)
	return downCmd
}

func downCommand(cmd *cobra.Command, _ []string) error {
	m, closeConn, err := bootstrap.NewMigrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeConn()

	return m.Down(cmd.Context(), downFlags[stepFlag].GetInt())
}
