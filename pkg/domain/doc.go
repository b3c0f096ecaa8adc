/*
Package domain contains the core model of the feed reconciliation engine.

It describes the content tree the engine consumes (Features, Tokens, Cursors
and the Child variant), the states and policies that drive flattening, and the
values the engine reports to its collaborators. This package is kept pure and
free of I/O, following the same hexagonal split as the ports and adapters.

# Key Entities

  - Child: one entry yielded by a Cursor. A Feature, a Token or Unbound.
  - Feature: a Cluster, Card or Content node of the content tree.
  - Token: an unexpanded pagination marker.
  - TokenState: the activation phase of a token.
  - Policy: pagination and synthetic token consumption rules.
  - InternalError: structural problems reported to diagnostics.
  - ViewState: what a bound leaf renders.
*/
package domain
