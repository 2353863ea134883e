// Package console renders chat traffic and directory listings for the operator.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/directory"
)

const (
	ansiReset       = "\x1b[0m"
	ansiBright      = "\x1b[1m"
	ansiRed         = "\x1b[31m"
	ansiYellow      = "\x1b[33m"
	ansiLightGreen  = "\x1b[92m"
	ansiLightCyan   = "\x1b[96m"
	defaultPrompt   = "Enter a message to send (or 'exit' to quit, 'list' to show node list): "
	directoryHeader = "Node List:"
)

// Printer writes operator-facing output. Every call produces whole lines with a
// single write, so concurrent receive and send output never splits a line, but no
// ordering across calls is imposed.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	prompt string
}

// Options configures a Printer.
type Options struct {
	// NoColor disables ANSI colours regardless of the terminal
	NoColor bool

	// Prompt overrides the input prompt
	Prompt string
}

// NewPrinter creates a Printer writing to out. Colour is enabled only when out is a
// terminal, NO_COLOR is unset and opts.NoColor is false.
func NewPrinter(out io.Writer, opts Options) *Printer {
	color := !opts.NoColor && os.Getenv("NO_COLOR") == ""
	if f, ok := out.(*os.File); ok {
		color = color && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
		if color {
			out = colorable.NewColorable(f)
		}
	} else {
		color = false
	}

	prompt := opts.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}

	return &Printer{out: out, color: color, prompt: prompt}
}

// Stdout returns a Printer for the process's standard output.
func Stdout(noColor bool) *Printer {
	return NewPrinter(os.Stdout, Options{NoColor: noColor})
}

// Incoming displays a received message.
func (p *Printer) Incoming(label, text string) {
	p.line(ansiYellow+ansiBright, label+": "+text)
}

// Outgoing displays a message this client sent.
func (p *Printer) Outgoing(text string) {
	p.line(ansiLightGreen+ansiBright, "You: "+text)
}

// Error displays a recoverable failure.
func (p *Printer) Error(format string, args ...any) {
	p.line(ansiRed, fmt.Sprintf(format, args...))
}

// Info displays a plain status line.
func (p *Printer) Info(format string, args ...any) {
	p.line("", fmt.Sprintf(format, args...))
}

// Directory displays the node list.
func (p *Printer) Directory(nodes []directory.Identity) {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(p.paint(ansiLightCyan, directoryHeader))
	b.WriteString("\n")
	if len(nodes) == 0 {
		b.WriteString("No nodes available.\n")
	}
	for _, n := range nodes {
		b.WriteString(n.String())
		b.WriteString("\n")
	}
	p.write(b.String())
}

// Prompt displays the input prompt without a trailing newline.
func (p *Printer) Prompt() {
	p.write("\n" + p.prompt)
}

func (p *Printer) line(color, text string) {
	p.write(p.paint(color, text) + "\n")
}

func (p *Printer) paint(color, text string) string {
	if !p.color || color == "" {
		return text
	}
	return color + text + ansiReset
}

func (p *Printer) write(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, s)
}
