// Package commands provides CLI commands for simchat.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalOptions are flags shared by the root command and its subcommands
type globalOptions struct {
	profile string
	model   string
}

// askOptions are the flags of the one-shot ask
type askOptions struct {
	output string
	file   string
	raw    bool
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	global := &globalOptions{}
	ask := &askOptions{}

	rootCmd := &cobra.Command{
		Use:   "simchat [prompt]",
		Short: "Chat widget, workflow sidebar and backend in one CLI",
		Long: `simchat sends a message to a chat backend and shows the reply, either
once from the command line or inside an interactive terminal shell with a
workflow sidebar. It can also run the backend itself.

Examples:
  simchat "What is Go?"                 Send a single message
  simchat -f prompt.md                  Read the message from a file
  cat prompt.md | simchat               Read the message from stdin
  simchat "Hello" -o reply.md           Save the reply to a file
  simchat -p basic "Hi"                 Use the basic widget profile
  simchat chat                          Start the interactive shell
  simchat serve                         Run the backend on localhost:8000
  simchat workflows list                List registry workflows`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "simchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps, ask, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}
			return runAsk(cmd.Context(), deps, global, ask, prompt)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&global.profile, "profile", "p", "", "Widget profile (assistant, basic, panel or custom)")
	rootCmd.PersistentFlags().StringVarP(&global.model, "model", "m", "", "Model to request (profiles without a model ignore it)")
	rootCmd.Flags().StringVarP(&ask.output, "output", "o", "", "Save reply to file")
	rootCmd.Flags().StringVarP(&ask.file, "file", "f", "", "Read message from file")
	rootCmd.Flags().BoolVar(&ask.raw, "raw", false, "Print only the reply text")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.SetIn(deps.Stdin)
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.AddCommand(newChatCmd(deps, global))
	rootCmd.AddCommand(newServeCmd(deps))
	rootCmd.AddCommand(newWorkflowsCmd(deps))
	rootCmd.AddCommand(newConfigCmd(deps))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(NewDependencies()).Execute(); err != nil {
		os.Exit(1)
	}
}
