package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/feedstream/pkg/domain"
)

// Overlay marks session state on top of the model tree.
type Overlay struct {
	// Visible holds the keys currently in the flattened list.
	Visible []domain.ChildKey
	// Dismissed holds keys removed by the user.
	Dismissed []domain.ChildKey
}

// GenerateMermaid produces a Mermaid flowchart of the feature tree under root.
// Shapes follow the child variant:
// - Cluster: [[Subroutine]]
// - Card: [Rectangle]
// - Content: (Rounded)
// - Token: [/Parallelogram/], synthetic tokens are [\Reversed\]
// - Unbound: {{Hexagon}}
func GenerateMermaid(root domain.Feature, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if root == nil {
		return sb.String()
	}

	rootID := sanitizeMermaidID(string(root.Key()))
	sb.WriteString(fmt.Sprintf("    %s((\"%s\"))\n", rootID, root.Key()))
	writeChildren(&sb, rootID, root)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visible fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef dismissed fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		writeClass(&sb, overlay.Visible, "visible")
		writeClass(&sb, overlay.Dismissed, "dismissed")
	}

	return sb.String()
}

func writeChildren(sb *strings.Builder, parentID string, f domain.Feature) {
	cursor := f.Cursor()
	for child, ok := cursor.Next(); ok; child, ok = cursor.Next() {
		id := sanitizeMermaidID(string(child.Key()))
		opener, closer := "{{", "}}"
		var nested domain.Feature

		switch child.Kind() {
		case domain.ChildFeature:
			feature, _ := child.Feature()
			switch feature.Kind() {
			case domain.FeatureCluster:
				opener, closer = "[[", "]]"
			case domain.FeatureContent:
				opener, closer = "(", ")"
			default:
				opener, closer = "[", "]"
			}
			nested = feature
		case domain.ChildToken:
			opener, closer = "[/", "/]"
			if token, _ := child.Token(); token != nil && token.Synthetic() {
				opener, closer = "[\\", "\\]"
			}
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label(child, nested), closer))
		arrow := "-->"
		if child.Kind() != domain.ChildFeature {
			arrow = "-.->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", parentID, arrow, id))

		if nested != nil {
			writeChildren(sb, id, nested)
		}
	}
}

func label(child domain.Child, f domain.Feature) string {
	text := string(child.Key())
	if f != nil {
		if c := f.Content(); c != nil && c.Title != "" {
			text = fmt.Sprintf("%s <br/> %s", text, c.Title)
		}
	}
	return strings.ReplaceAll(text, "\"", "'")
}

func writeClass(sb *strings.Builder, keys []domain.ChildKey, class string) {
	seen := make(map[string]bool)
	for _, key := range keys {
		id := sanitizeMermaidID(string(key))
		if id != "" && !seen[id] {
			seen[id] = true
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", id, class))
		}
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
