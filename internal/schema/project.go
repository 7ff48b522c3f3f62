package schema

import (
	"slices"
	"strings"
)

// View is the filtered schema handed to prompts.
type View struct {
	// Labels in output order.
	Labels         []string
	NodeProperties map[string][]string
	Relationships  []Relationship
}

// Project filters raw down to what is outside the exclusion set. The default
// exclusions are always applied in addition to exclude. Labels and
// relationships are sorted; property order follows the input. Malformed
// relationship entries are skipped.
func Project(raw Raw, exclude ...string) View {
	excluded := make(map[string]struct{}, len(exclude)+len(DefaultExclusions))
	for _, e := range DefaultExclusions {
		excluded[e] = struct{}{}
	}
	for _, e := range exclude {
		if e = strings.TrimSpace(e); e != "" {
			excluded[e] = struct{}{}
		}
	}
	isExcluded := func(s string) bool {
		_, ok := excluded[s]
		return ok
	}

	view := View{NodeProperties: make(map[string][]string)}

	for label, props := range raw.NodeProps {
		if isExcluded(label) {
			continue
		}
		names := make([]string, 0, len(props))
		for _, p := range props {
			if p.Name != "" && !slices.Contains(names, p.Name) {
				names = append(names, p.Name)
			}
		}
		view.Labels = append(view.Labels, label)
		view.NodeProperties[label] = names
	}
	slices.Sort(view.Labels)

	seen := make(map[Relationship]struct{})
	for _, entry := range raw.Relationships {
		rel, ok := entry.Normalize()
		if !ok {
			continue
		}
		if isExcluded(rel.Start) || isExcluded(rel.End) || isExcluded(rel.Type) {
			continue
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		view.Relationships = append(view.Relationships, rel)
	}
	slices.SortFunc(view.Relationships, func(a, b Relationship) int {
		return strings.Compare(a.String(), b.String())
	})

	return view
}

// Empty reports whether nothing survived projection.
func (v View) Empty() bool {
	return len(v.Labels) == 0 && len(v.Relationships) == 0
}

// String renders the "Node Properties:" and "Relationships:" sections.
// A section with no entries is omitted.
func (v View) String() string {
	var lines []string

	if len(v.Labels) > 0 {
		lines = append(lines, "Node Properties:")
		for _, label := range v.Labels {
			lines = append(lines, label+": ["+strings.Join(v.NodeProperties[label], ", ")+"]")
		}
	}

	if len(v.Relationships) > 0 {
		lines = append(lines, "Relationships:")
		for _, rel := range v.Relationships {
			lines = append(lines, rel.String())
		}
	}

	return strings.Join(lines, "\n")
}
