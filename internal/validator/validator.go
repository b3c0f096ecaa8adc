// Package validator lints fixture feeds before they are loaded.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/feedstream/pkg/adapters/fixture"
)

// ValidateFeed crawls the root and every page reachable through its tokens.
// It reports duplicate keys, malformed top-level children, unreachable pages
// and scripted failures for tokens that never appear.
func ValidateFeed(f *fixture.File) error {
	v := &crawler{
		seen:   make(map[string]string),
		tokens: make(map[string]bool),
	}

	v.level("root", f.Root)
	queue := append([]string(nil), v.found...)
	visited := make(map[string]bool)
	for len(queue) > 0 {
		token := queue[0]
		queue = queue[1:]
		if visited[token] {
			continue
		}
		visited[token] = true

		page, ok := f.Pages[token]
		if !ok {
			continue
		}
		v.found = nil
		v.level("pages."+token, page)
		queue = append(queue, v.found...)
	}

	for _, token := range sortedKeys(f.Pages) {
		if !visited[token] {
			v.errorf("page %q is unreachable: no token %q in the feed", token, token)
		}
	}
	for _, token := range sortedKeys(f.Failures) {
		if !v.tokens[token] {
			v.errorf("failures for %q: no such token", token)
		}
	}
	if f.Refresh != nil {
		v.found = nil
		v.level("refresh", f.Refresh)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(v.errors), strings.Join(v.errors, "\n- "))
	}
	return nil
}

type crawler struct {
	seen   map[string]string
	tokens map[string]bool
	found  []string
	errors []string
}

func (c *crawler) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *crawler) claim(key, where string) {
	if prev, ok := c.seen[key]; ok {
		c.errorf("duplicate key %q in %s (first seen in %s)", key, where, prev)
		return
	}
	c.seen[key] = where
}

// level checks the top-level children of the root, a page or the refresh.
func (c *crawler) level(where string, nodes []fixture.Node) {
	for i, n := range nodes {
		at := fmt.Sprintf("%s[%d]", where, i)
		switch {
		case n.Story != nil:
			c.claim(n.Story.ID, at)
			if !n.Story.Card {
				c.claim(n.Story.ID+"/card", at)
			}
			c.claim(n.Story.ID+"/content", at)
		case n.Type == "token":
			c.claim(n.ID, at)
			c.tokens[n.ID] = true
			c.found = append(c.found, n.ID)
		case n.Type == "content":
			c.claim(n.ID, at)
			c.errorf("%s: content %q at top level is skipped", at, n.ID)
		case n.Type == "unbound":
			c.claim(n.ID, at)
			c.errorf("%s: unbound child %q is skipped", at, n.ID)
		default:
			c.claim(n.ID, at)
			c.nested(at, n)
		}
	}
}

// nested checks that a cluster wraps one card and a card wraps one content.
func (c *crawler) nested(at string, n fixture.Node) {
	if len(n.Children) != 1 {
		c.errorf("%s: %s %q has %d children and is skipped", at, n.Type, n.ID, len(n.Children))
		return
	}
	child := n.Children[0]
	c.claim(child.ID, at)

	want := "content"
	if n.Type == "cluster" {
		want = "card"
	}
	if child.Type != want {
		c.errorf("%s: %s %q wraps a %s, not a %s", at, n.Type, n.ID, child.Type, want)
		return
	}
	if child.Type == "card" {
		c.nested(at+"."+child.ID, child)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
