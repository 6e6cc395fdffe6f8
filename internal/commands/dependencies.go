package commands

import (
	"io"
	"os"

	"github.com/diogo/simchat/internal/api"
	"github.com/diogo/simchat/internal/chat"
	"github.com/diogo/simchat/internal/config"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunApp(opts tui.AppOptions) error
}

// ExchangerFactory builds the transport for a resolved widget profile
type ExchangerFactory func(profile models.Profile, cfg config.Config) (chat.Exchanger, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewExchanger builds the chat transport. Tests swap in api.MockExchanger.
	NewExchanger ExchangerFactory

	// TUI is the terminal user interface.
	TUI TUIInterface

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunApp(opts tui.AppOptions) error {
	return tui.RunApp(opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewExchanger: httpExchanger,
		TUI:          &DefaultTUI{},
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

func httpExchanger(profile models.Profile, cfg config.Config) (chat.Exchanger, error) {
	return api.NewChatClient(profile.Endpoint, api.WithTimeout(cfg.Timeout()))
}

// withDefaults fills unset fields so callers may pass a partial struct
func (d *Dependencies) withDefaults() *Dependencies {
	if d == nil {
		return NewDependencies()
	}
	out := *d
	def := NewDependencies()
	if out.NewExchanger == nil {
		out.NewExchanger = def.NewExchanger
	}
	if out.TUI == nil {
		out.TUI = def.TUI
	}
	if out.Stdin == nil {
		out.Stdin = def.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = def.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = def.Stderr
	}
	return &out
}
