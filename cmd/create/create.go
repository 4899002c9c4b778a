package create

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/chmigrate/chmigrate/cmd/internal/bootstrap"
)

const forceFlag = "force"

var createFlags = map[string]cobraflags.Flag{
	forceFlag: &cobraflags.BoolFlag{
		Name:  forceFlag,
		Value: false,
		Usage: "Create the files even when pending migrations have not been applied",
	},
}

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new migration file pair",
	Long: `Create empty up and down migration files at the next version number.

Without --force the command refuses to create files while earlier migrations
are still pending, so version numbers stay aligned with the applied
position.`,
	Args: cobra.MaximumNArgs(1),
	RunE: createCommand,
}

func NewCreateCommand() *cobra.Command {
	cobraflags.RegisterMap(createCmd, createFlags)
	return createCmd
}

func createCommand(cmd *cobra.Command, args []string) error {
	name := "new"
	if len(args) > 0 {
		name = args[0]
	}

	m, closeConn, err := bootstrap.NewMigrator(cmd.Context())
	if err != nil {
		return err
	}
	defer closeConn()

	upFile, downFile, err := m.Create(cmd.Context(), name, createFlags[forceFlag].GetBool())
	if err != nil {
		return err
	}
	fmt.Printf("created migration %s\n", upFile)
	fmt.Printf("created migration %s\n", downFile)
	return nil
}
