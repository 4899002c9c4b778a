package sql

import (
	"fmt"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/chmigrate/chmigrate/cmd/internal/bootstrap"
	"github.com/chmigrate/chmigrate/migration/migrator"
)

const (
	versionFlag = "version"
	actionFlag  = "action"
)

var sqlFlags = map[string]cobraflags.Flag{
	versionFlag: &cobraflags.IntFlag{
		Name:  versionFlag,
		Value: 0,
		Usage: "Migration version to render (required)",
	},
	actionFlag: &cobraflags.StringFlag{
		Name:  actionFlag,
		Value: "up",
		Usage: "Script direction to render (up or down)",
	},
}

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Render a migration script without executing it",
	Long: `Render one migration script with the configured template variables
and print the resulting SQL. Nothing is executed and no history is written.`,
	RunE: sqlCommand,
}

func NewSQLCommand() *cobra.Command {
	cobraflags.RegisterMap(sqlCmd, sqlFlags)
	return sqlCmd
}

func sqlCommand(_ *cobra.Command, _ []string) error {
	version := sqlFlags[versionFlag].GetInt()
	if version <= 0 {
		return fmt.Errorf("a positive --version is required")
	}

	action := migrator.Action(sqlFlags[actionFlag].GetString())
	if action != migrator.ActionUp && action != migrator.ActionDown {
		return fmt.Errorf("invalid --action %q: must be up or down", action)
	}

	m, err := bootstrap.NewOfflineMigrator()
	if err != nil {
		return err
	}

	script, err := m.RenderScript(version, action)
	if err != nil {
		return err
	}
	fmt.Println(script)
	return nil
}
