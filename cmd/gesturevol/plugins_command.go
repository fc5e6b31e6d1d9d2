package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/gesturevol/internal/logging"
	"github.com/ayusman/gesturevol/internal/plugin"
)

func newPluginsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List volume plugins in the plugin directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			manager := plugin.NewManager(cfg.Volume.PluginDir, logging.Discard())
			if err := manager.Discover(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			list := manager.List()
			if len(list) == 0 {
				fmt.Fprintf(out, "No plugins found in %s\n", manager.PluginDir())
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, p := range list {
				selected := p.Manifest.Name == cfg.Volume.PluginName
				rows = append(rows, []string{
					p.Manifest.Name,
					p.Manifest.Version,
					strings.Join(p.Manifest.Actions, ", "),
					yesNo(selected && p.Supports(plugin.ActionVolumeSet)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Version", "Actions", "Selected"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
