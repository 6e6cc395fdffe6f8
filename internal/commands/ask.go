package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/simchat/internal/chat"
	"github.com/diogo/simchat/internal/config"
	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/observability"
	"github.com/diogo/simchat/internal/render"
)

// writeClipboard is swapped in tests
var writeClipboard = clipboard.WriteAll

// Styles matching the chat TUI
var (
	botLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	botBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Foreground(colorText).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)
)

// readPrompt picks the message from --file, the argument or piped stdin, in
// that order. ok is false when there is no input at all.
func readPrompt(deps *Dependencies, opts *askOptions, args []string) (string, bool, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	if isPiped(deps.Stdin) {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	return "", false, nil
}

func isPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// runAsk sends one message through a widget built from the resolved profile
// and prints the reply
func runAsk(ctx context.Context, deps *Dependencies, global *globalOptions, opts *askOptions, prompt string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	profile, err := config.ResolveProfile(cfg, global.profile)
	if err != nil {
		return err
	}
	if global.model != "" && profile.Model != "" {
		profile.Model = global.model
	}

	exchanger, err := deps.NewExchanger(profile, cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	logger := observability.Discard()
	if cfg.Verbose {
		logger = observability.NewLogger("ask", observability.ParseLevel(cfg.LogLevel), cfg.LogFormat, deps.Stderr)
	}
	widget := chat.NewWidget(profile, exchanger,
		chat.WithLogger(logger))

	rawOutput := opts.raw || !isTTY(deps.Stdout)

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(deps.Stderr, "Waiting for "+profile.Endpoint)
		spin.start()
	}

	widget.SetInput(prompt)
	sendErr := widget.Send(ctx)
	if errors.Is(sendErr, apierrors.ErrEmptyInput) {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("prompt cannot be empty")
	}

	if spin != nil {
		if sendErr != nil {
			spin.stopWithError()
			fmt.Fprintln(deps.Stderr, formatErrorMessage(sendErr, "Exchange failed"))
		} else {
			spin.stopWithSuccess("Done")
		}
	}

	reply := widget.LastBotReply()
	if err := writeReply(deps, cfg, profile.Markdown, opts, rawOutput, reply); err != nil {
		return err
	}

	if sendErr != nil {
		return fmt.Errorf("exchange failed: %w", sendErr)
	}
	return nil
}

func writeReply(deps *Dependencies, cfg config.Config, markdown bool, opts *askOptions, rawOutput bool, reply string) error {
	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !rawOutput {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", opts.output)))
		}
		return nil
	}

	if rawOutput {
		fmt.Fprint(deps.Stdout, reply)
		if !strings.HasSuffix(reply, "\n") {
			fmt.Fprintln(deps.Stdout)
		}
		return nil
	}

	if cfg.CopyToClipboard {
		if err := writeClipboard(reply); err != nil {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	bubbleWidth := terminalWidth(deps.Stdout) - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	renderOpts := render.FromConfig(cfg.Markdown, bubbleWidth-4)
	rendered := render.Reply(reply, markdown, renderOpts)

	fmt.Fprintln(deps.Stdout, botLabelStyle.Render("● Bot"))
	fmt.Fprintln(deps.Stdout, botBubbleStyle.Width(bubbleWidth).Render(rendered))
	return nil
}

// terminalWidth returns the width of w when it is a terminal, or 80
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isTTY returns true if w is connected to a terminal
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, label string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", label, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the backend running? Start it with 'simchat serve'"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Raise request_timeout in the config"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The endpoint must answer with {\"reply\": \"...\"}"))
	}

	return sb.String()
}

// truncate shortens s to max runes, adding "..." when cut
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
