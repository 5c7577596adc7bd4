package judge

import (
	"fmt"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/provider"
	"strings"
)

// historyWindow is how many prior messages the judge sees for continuity.
const historyWindow = 5

const gmSystem = `You are the Game Master of a lateral-thinking murder mystery. The player asks
free-form questions to work out the hidden solution. You answer as an omniscient narrator under
strict rules:
- YES when the premise of the question is true.
- NO when it is false.
- IRRELEVANT when it has no bearing on the solution.
- HINT when the player is stuck or circling: nudge them without revealing anything.
- CLARIFICATION when the question cannot be answered as asked.
Keep replies to one or two sentences and never state the solution outright. When an answer
confirms the substance of a clue the player has not discovered yet, put that clue's id in
unlockedClueId.`

func npcSystem(npc models.NPC) string {
	return fmt.Sprintf(`You are %s, %s in a murder mystery. %s

PERSONALITY: %s

RULES:
- Stay in character and speak in first person. Dialogue only, no stage directions.
- You only know what someone in your position would plausibly know.
- Never state the hidden solution outright. If you are the culprit, deflect and misdirect.
- answerType is always "NPC_DIALOGUE".
- When your answer gives away the substance of a clue you plausibly know about, put that
  clue's id in unlockedClueId.
- Two or three sentences at most.`,
		npc.Name, npc.Role, npc.Description, npc.Personality)
}

func userPrompt(m *models.Mystery, utterance string, history []models.ChatMessage) string {
	return fmt.Sprintf(`THE CASE: %s

HIDDEN SOLUTION (for your judgment only, never reveal it):
%s

CLUES (id: description):
%s

RECENT CONVERSATION:
%s

THE DETECTIVE ASKS:
%s`,
		m.Title, m.Solution, clueLines(m), historyLines(history), utterance)
}

func clueLines(m *models.Mystery) string {
	if len(m.Clues) == 0 {
		return "(no clues in this case)"
	}
	lines := make([]string, 0, len(m.Clues))
	for _, clue := range m.Clues {
		lines = append(lines, "- "+clue.ID+": "+clue.Description)
	}
	return strings.Join(lines, "\n")
}

func historyLines(history []models.ChatMessage) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) == 0 {
		return "(none yet)"
	}
	lines := make([]string, 0, len(history))
	for _, message := range history {
		lines = append(lines, speaker(message)+": "+message.Content)
	}
	return strings.Join(lines, "\n")
}

func speaker(message models.ChatMessage) string {
	switch message.Type {
	case models.MessageTypeUser:
		return "Detective"
	case models.MessageTypeAIResponse:
		if message.SpeakerName != "" {
			return message.SpeakerName
		}
		return "GM"
	case models.MessageTypeSystem, models.MessageTypeClueAlert:
		return "Narrator"
	default:
		return "Narrator"
	}
}

func judgmentSchema() *provider.Schema {
	return &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"answerType": {
				Type: provider.TypeString,
				Enum: []string{"YES", "NO", "IRRELEVANT", "HINT", "CLARIFICATION", "NPC_DIALOGUE"},
			},
			"reply": {Type: provider.TypeString, Description: "the spoken answer shown to the player"},
			"unlockedClueId": {
				Type:        provider.TypeString,
				Description: "id of a clue this answer reveals, or empty",
			},
		},
		Required: []string{"answerType", "reply"},
	}
}
