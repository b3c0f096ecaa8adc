package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/feedstream/pkg/domain"
	"golang.org/x/term"
)

// Printer writes the flattened feed to a terminal or a plain stream.
type Printer struct {
	out    io.Writer
	render func(string) (string, error)
}

// NewPrinter creates a printer for out. Terminals get glamour styling; any
// other writer receives the raw markdown.
func NewPrinter(out io.Writer) *Printer {
	p := &Printer{out: out}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil {
			width = 0
		}
		if render, err := NewRenderer(width); err == nil {
			p.render = render
		}
	}
	return p
}

// Styled reports whether output goes through the markdown renderer.
func (p *Printer) Styled() bool {
	return p.render != nil
}

// Print writes leaves under heading.
func (p *Printer) Print(heading string, leaves []domain.ViewState) error {
	md := Markdown(heading, leaves)
	if p.render != nil {
		styled, err := p.render(md)
		if err != nil {
			return fmt.Errorf("failed to render feed: %w", err)
		}
		md = styled
	}
	_, err := io.WriteString(p.out, md)
	return err
}

// Markdown formats leaves as a numbered markdown list.
func Markdown(heading string, leaves []domain.ViewState) string {
	var sb strings.Builder
	if heading != "" {
		fmt.Fprintf(&sb, "## %s\n\n", heading)
	}
	if len(leaves) == 0 {
		sb.WriteString("_empty_\n")
		return sb.String()
	}
	for i, leaf := range leaves {
		fmt.Fprintf(&sb, "%d. %s\n", i, describe(leaf))
		if leaf.Kind == domain.LeafContent && leaf.Content != nil && leaf.Content.Body != "" {
			fmt.Fprintf(&sb, "   %s\n", leaf.Content.Body)
		}
	}
	return sb.String()
}

func describe(leaf domain.ViewState) string {
	spinner := ""
	if leaf.SpinnerShown {
		spinner = " ⏳"
	}
	switch leaf.Kind {
	case domain.LeafContent:
		title := string(leaf.Key)
		if leaf.Content != nil && leaf.Content.Title != "" {
			title = leaf.Content.Title
		}
		if leaf.Content != nil && leaf.Content.URL != "" {
			return fmt.Sprintf("**[%s](%s)** `%s`", title, leaf.Content.URL, leaf.Key)
		}
		return fmt.Sprintf("**%s** `%s`", title, leaf.Key)
	case domain.LeafContinuation:
		return fmt.Sprintf("_Load more_ `%s`%s", leaf.Key, spinner)
	case domain.LeafZeroState:
		return "_Nothing here yet. Refresh to try again._" + spinner
	case domain.LeafNoContent:
		return "_No new suggestions_"
	default:
		return fmt.Sprintf("`%s`", leaf.Key)
	}
}
