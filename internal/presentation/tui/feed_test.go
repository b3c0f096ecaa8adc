package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	leaves := []domain.ViewState{
		{Kind: domain.LeafContent, Key: "s1/content", Content: &domain.Content{ID: "s1/content", Title: "One", Body: "Body text"}},
		{Kind: domain.LeafContent, Key: "s2/content", Content: &domain.Content{ID: "s2/content", Title: "Two", URL: "https://example.com/2"}},
		{Kind: domain.LeafNoContent, Key: domain.NoContentKey},
		{Kind: domain.LeafContinuation, Key: "t1", SpinnerShown: true},
	}

	md := Markdown("Feed", leaves)
	assert.Contains(t, md, "## Feed\n\n")
	assert.Contains(t, md, "0. **One** `s1/content`\n   Body text\n")
	assert.Contains(t, md, "1. **[Two](https://example.com/2)** `s2/content`\n")
	assert.Contains(t, md, "2. _No new suggestions_\n")
	assert.Contains(t, md, "3. _Load more_ `t1` ⏳\n")
}

func TestMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "_empty_\n", Markdown("", nil))
}

func TestMarkdown_ZeroState(t *testing.T) {
	md := Markdown("", []domain.ViewState{{Kind: domain.LeafZeroState, Key: domain.ZeroStateKey}})
	assert.Equal(t, "0. _Nothing here yet. Refresh to try again._\n", md)
}

func TestPrinter_PlainWriter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	assert.False(t, p.Styled())

	leaves := []domain.ViewState{{Kind: domain.LeafContinuation, Key: "t1"}}
	require.NoError(t, p.Print("Feed", leaves))
	assert.Equal(t, Markdown("Feed", leaves), buf.String())
}

func TestRenderer(t *testing.T) {
	render, err := NewRenderer(40)
	require.NoError(t, err)
	out, err := render("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")
}
