package section

import (
	"strings"
	"testing"
)

func TestValidate_CleanDocument(t *testing.T) {
	doc := &Document{
		Title: "ok",
		Content: []*Section{
			{ID: "a", Level: 1, Children: []*Section{
				{ID: "b", Level: 2},
				{ID: "c", Level: 4},
			}},
			{ID: "d", Level: 1},
		},
	}
	if warnings := doc.Validate(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestValidate_ReportsViolations(t *testing.T) {
	doc := &Document{
		Content: []*Section{
			{ID: "a", Level: 2, Children: []*Section{
				{ID: "a", Level: 2},  // duplicate id, level not nested
				{ID: "", Level: 3},   // missing id
				{ID: "z", Level: 99}, // level out of range
			}},
		},
	}
	warnings := doc.Validate()
	if len(warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %d: %v", len(warnings), warnings)
	}
	joined := strings.Join(warnings, "\n")
	for _, want := range []string{"duplicate section id", "has no id", "outside 0..6", "does not nest"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in warnings: %v", want, warnings)
		}
	}
}

func TestValidate_BuiltDocumentsAreClean(t *testing.T) {
	root := page(
		el("h1", text("Top")),
		el("p", text("body")),
		el("h3", text("Deep")),
		el("h2", text("Mid")),
	)
	doc := build(t, root)
	if warnings := doc.Validate(); len(warnings) != 0 {
		t.Errorf("builder output should validate cleanly, got %v", warnings)
	}
}
