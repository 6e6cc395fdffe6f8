package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/simchat/internal/config"
	"github.com/diogo/simchat/internal/render"
)

func newConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long:  `Show the effective configuration, its location, widget profiles and themes.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprintln(deps.Stdout, string(data))

			key := "unset"
			if config.OpenRouterAPIKey() != "" {
				key = "set"
			}
			fmt.Fprintf(deps.Stdout, "%s: %s\n", config.EnvOpenRouter, key)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file and data directory paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			configPath, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			dataDir, err := config.GetDataDir(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "config: %s\ndata:   %s\n", configPath, dataDir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "profiles",
		Short: "List widget profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := config.LoadProfiles()
			if err != nil {
				return err
			}
			for _, p := range pc.Profiles {
				marker := " "
				if p.Name == pc.DefaultProfile {
					marker = "*"
				}
				model := p.Model
				if model == "" {
					model = "-"
				}
				fmt.Fprintf(deps.Stdout, "%s %-12s %-40s %s\n", marker, p.Name, p.Endpoint, model)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "themes",
		Short: "List markdown and shell themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(deps.Stdout, "Markdown styles:")
			for _, t := range render.AvailableThemes() {
				fmt.Fprintf(deps.Stdout, "  %-10s %s\n", t.Name, t.Description)
			}
			fmt.Fprintln(deps.Stdout, "Shell themes:")
			for _, t := range render.AvailableTUIThemes() {
				fmt.Fprintf(deps.Stdout, "  %-10s %s\n", t.Name, t.Description)
			}
			return nil
		},
	})

	return cmd
}
