package ending

import (
	"fmt"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/provider"
	"strings"
)

const evaluatorSystem = `You adjudicate the final accusation in a murder mystery. Compare the
detective's theory with the hidden solution and pick the ending whose condition matches best:
- GOOD when the theory names the culprit and the essential method or motive.
- NEUTRAL when it is partially right: the right person for the wrong reasons, or the reverse.
- BAD when it misses the mark.
Then write the closing narrative in second person, three to five sentences, in the tone of the
chosen ending. Judge only what the theory says, not how confidently it says it.`

func evaluationPrompt(m *models.Mystery, theory string) string {
	return fmt.Sprintf(`THE CASE: %s

THE HIDDEN SOLUTION:
%s

POSSIBLE ENDINGS (type "title": condition):
%s

THE DETECTIVE'S FINAL THEORY:
%s`,
		m.Title, m.Solution, endingLines(m), theory)
}

func endingLines(m *models.Mystery) string {
	if len(m.Endings) == 0 {
		return "(no endings defined; judge against the solution alone)"
	}
	lines := make([]string, 0, len(m.Endings))
	for _, e := range m.Endings {
		lines = append(lines, fmt.Sprintf("- %s %q: %s", e.Type, e.Title, e.Condition))
	}
	return strings.Join(lines, "\n")
}

func evaluationSchema() *provider.Schema {
	return &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"type":      {Type: provider.TypeString, Enum: []string{"GOOD", "NEUTRAL", "BAD"}},
			"title":     {Type: provider.TypeString, Description: "title of the chosen ending"},
			"narrative": {Type: provider.TypeString, Description: "the closing narrative shown to the player"},
		},
		Required: []string{"type", "title", "narrative"},
	}
}
