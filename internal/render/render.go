// Package render turns bot replies into terminal output.
package render

import (
	"os"
	"strings"

	"github.com/diogo/simchat/internal/config"
)

// Options configures the markdown renderer. It is comparable and doubles as
// the renderer pool key.
type Options struct {
	Width            int
	Style            string
	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the renderer defaults
func DefaultOptions() Options {
	return FromConfig(config.DefaultMarkdownConfig(), 80)
}

// FromConfig builds options from the markdown section of the config.
// GLAMOUR_STYLE, when set, wins over the configured style.
func FromConfig(md config.MarkdownConfig, width int) Options {
	opts := Options{
		Width:            width,
		Style:            md.Style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
	if opts.Style == "" {
		opts.Style = ThemeSimchat
	}
	if style := strings.TrimSpace(os.Getenv("GLAMOUR_STYLE")); style != "" {
		opts.Style = style
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	return opts
}

// WithWidth returns a copy with the wrap width replaced
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle returns a copy with the style replaced
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// Markdown renders content through a pooled glamour renderer
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// Reply renders one bot reply. Markdown replies go through glamour; plain
// replies and render failures come back as the raw text, trimmed of trailing
// whitespace.
func Reply(content string, markdown bool, opts Options) string {
	if !markdown {
		return strings.TrimRight(content, " \t\n")
	}
	out, err := Markdown(content, opts)
	if err != nil {
		return strings.TrimRight(content, " \t\n")
	}
	return strings.Trim(out, "\n")
}
