package section

import "fmt"

// Validate checks the structural rules of a built document and returns one
// warning per violation. Callers decide whether warnings are fatal.
//
// Rules checked: every section has an ID, IDs are unique across the
// document, levels stay within 0..6, and each child's level is strictly
// greater than its parent's when both are set.
func (d *Document) Validate() []string {
	var warnings []string
	seen := make(map[string]bool)
	for _, s := range d.Content {
		warnings = validateSection(s, nil, seen, warnings)
	}
	return warnings
}

func validateSection(s *Section, parent *Section, seen map[string]bool, warnings []string) []string {
	switch {
	case s.ID == "":
		warnings = append(warnings, fmt.Sprintf("section %q has no id", s.Title))
	case seen[s.ID]:
		warnings = append(warnings, fmt.Sprintf("duplicate section id %q", s.ID))
	default:
		seen[s.ID] = true
	}

	if s.Level < 0 || s.Level > 6 {
		warnings = append(warnings, fmt.Sprintf("section %q has level %d outside 0..6", s.ID, s.Level))
	}
	if parent != nil && parent.Level > 0 && s.Level > 0 && s.Level <= parent.Level {
		warnings = append(warnings, fmt.Sprintf("section %q level %d does not nest under %q level %d",
			s.ID, s.Level, parent.ID, parent.Level))
	}

	for _, c := range s.Children {
		warnings = validateSection(c, s, seen, warnings)
	}
	return warnings
}
