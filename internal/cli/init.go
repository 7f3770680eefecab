package cli

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/quire/internal/config"
)

func (c *CLI) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample project file",
		Long:  "Write a commented sample project file (quire.toml by default) to start a new book from.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("Wrote sample project", "path", path)
			return nil
		},
	}
}
