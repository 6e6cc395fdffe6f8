package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/simchat/internal/config"
	"github.com/diogo/simchat/internal/workflows"
)

func newWorkflowsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"wf"},
		Short:   "Manage the workflow registry",
		Long: `Manage the workflows listed in the sidebar.

` + workflows.ReferenceHelp(),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List workflows, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), func(ctx context.Context, r *workflows.Registry) error {
				printWorkflows(deps.Stdout, r)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create a workflow",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return withRegistry(cmd.Context(), func(ctx context.Context, r *workflows.Registry) error {
				id, err := r.Create(ctx, name)
				if err != nil {
					return err
				}
				wf, _ := r.Get(id)
				fmt.Fprintf(deps.Stdout, "Created %s (%s)\n", wf.Name, id)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <ref> <name>",
		Short: "Rename a workflow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), func(ctx context.Context, r *workflows.Registry) error {
				id, err := r.Resolve(args[0])
				if err != nil {
					return err
				}
				if err := r.Rename(ctx, id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(deps.Stdout, "Renamed %s to %s\n", shortID(id), args[1])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "color <ref> <hex>",
		Short: "Set a workflow colour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), func(ctx context.Context, r *workflows.Registry) error {
				id, err := r.Resolve(args[0])
				if err != nil {
					return err
				}
				if err := r.SetColor(ctx, id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(deps.Stdout, "Set colour of %s to %s\n", shortID(id), args[1])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <ref>",
		Aliases: []string{"rm"},
		Short:   "Delete a workflow",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), func(ctx context.Context, r *workflows.Registry) error {
				id, err := r.Resolve(args[0])
				if err != nil {
					return err
				}
				if err := r.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(deps.Stdout, "Deleted %s\n", shortID(id))
				return nil
			})
		},
	})

	return cmd
}

// withRegistry opens and loads the configured registry, runs fn and closes it
func withRegistry(ctx context.Context, fn func(context.Context, *workflows.Registry) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	dataDir, err := config.GetDataDir(cfg)
	if err != nil {
		return err
	}

	store, err := workflows.Open(cfg.Registry.Backend, dataDir)
	if err != nil {
		return err
	}
	registry := workflows.NewRegistry(store)
	defer registry.Close()

	if err := registry.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, registry)
}

func printWorkflows(w io.Writer, r *workflows.Registry) {
	list := r.Sorted()
	if len(list) == 0 {
		fmt.Fprintln(w, "No workflows yet. Create one with 'simchat workflows create'.")
		return
	}

	header := lipgloss.NewStyle().Foreground(colorTextDim).Bold(true)
	fmt.Fprintln(w, header.Render(fmt.Sprintf("%-3s %-10s %-28s %-8s %s", "#", "ID", "NAME", "COLOR", "MODIFIED")))
	for i, wf := range list {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(wf.DisplayColor())).Render("■")
		fmt.Fprintf(w, "%-3d %-10s %-28s %s %-6s %s\n",
			i+1,
			shortID(wf.ID),
			truncate(wf.Name, 25),
			dot,
			strings.TrimPrefix(wf.DisplayColor(), "#"),
			wf.LastModified.Local().Format("2006-01-02 15:04"),
		)
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
