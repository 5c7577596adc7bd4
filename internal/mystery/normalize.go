package mystery

import (
	"encoding/json"
	"github.com/google/uuid"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/provider"
	"strings"
)

// Placeholder text for fields the generator left unusable.
const (
	fallbackTitle      = "An Unnamed Case"
	fallbackSituation  = "The record of what happened tonight is incomplete. A crime took place; the rest is yours to uncover."
	fallbackSolution   = "The full truth behind the case was never written down."
	fallbackDifficulty = "unknown"
)

// flexString tolerates generators that emit numbers or booleans where a
// string belongs. Objects, arrays and null collapse to "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	token := strings.TrimSpace(string(data))
	if token == "null" || strings.HasPrefix(token, "{") || strings.HasPrefix(token, "[") {
		*f = ""
		return nil
	}
	*f = flexString(token)
	return nil
}

type rawMystery struct {
	Title      flexString      `json:"title"`
	Situation  flexString      `json:"situation"`
	Solution   flexString      `json:"solution"`
	Difficulty flexString      `json:"difficulty"`
	NPCs       json.RawMessage `json:"npcs"`
	Clues      json.RawMessage `json:"clues"`
	Endings    json.RawMessage `json:"endings"`
}

type rawNPC struct {
	ID            flexString `json:"id"`
	Name          flexString `json:"name"`
	Role          flexString `json:"role"`
	Description   flexString `json:"description"`
	Personality   flexString `json:"personality"`
	Status        flexString `json:"status"`
	VisualSummary flexString `json:"visualSummary"`
}

// rawClue has no isLocked field on purpose: whatever the generator claims,
// every clue starts locked.
type rawClue struct {
	ID          flexString `json:"id"`
	Title       flexString `json:"title"`
	Description flexString `json:"description"`
}

type rawEnding struct {
	Type        flexString `json:"type"`
	Title       flexString `json:"title"`
	Description flexString `json:"description"`
	Condition   flexString `json:"condition"`
}

// normalize turns a raw completion into canonical mystery data. It never
// fails: unusable fields get placeholders, unusable arrays become empty,
// and the cast is repaired until it holds exactly one deceased NPC and at
// least two alive ones.
func normalize(completion string) *models.Mystery {
	raw, err := provider.DecodeJSON[rawMystery](completion)
	if err != nil {
		raw = rawMystery{}
	}
	m := &models.Mystery{
		Title:      withDefault(raw.Title, fallbackTitle),
		Situation:  withDefault(raw.Situation, fallbackSituation),
		Solution:   withDefault(raw.Solution, fallbackSolution),
		Difficulty: withDefault(raw.Difficulty, fallbackDifficulty),
		NPCs:       normalizeNPCs(decodeArray[rawNPC](raw.NPCs)),
		Clues:      normalizeClues(decodeArray[rawClue](raw.Clues)),
		Endings:    normalizeEndings(decodeArray[rawEnding](raw.Endings)),
	}
	repairCast(m)
	return m
}

// decodeArray decodes a JSON array element by element so one malformed
// entry does not throw away the rest. A value that is not an array at all
// yields nil.
func decodeArray[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil
	}
	out := make([]T, 0, len(elements))
	for _, element := range elements {
		var v T
		if err := json.Unmarshal(element, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func withDefault(s flexString, fallback string) string {
	if v := strings.TrimSpace(string(s)); v != "" {
		return v
	}
	return fallback
}

func normalizeNPCs(raws []rawNPC) []models.NPC {
	seen := make(map[string]bool, len(raws))
	npcs := make([]models.NPC, 0, len(raws))
	for _, raw := range raws {
		npcs = append(npcs, models.NPC{
			ID:            freshID(raw.ID, seen),
			Name:          withDefault(raw.Name, "An Unnamed Figure"),
			Role:          string(raw.Role),
			Description:   string(raw.Description),
			Personality:   string(raw.Personality),
			Status:        models.ParseNPCStatus(string(raw.Status)),
			VisualSummary: strings.TrimSpace(string(raw.VisualSummary)),
			AvatarURL:     "",
		})
	}
	return npcs
}

func normalizeClues(raws []rawClue) []models.Clue {
	seen := make(map[string]bool, len(raws))
	clues := make([]models.Clue, 0, len(raws))
	for _, raw := range raws {
		clues = append(clues, models.Clue{
			ID:          freshID(raw.ID, seen),
			Title:       string(raw.Title),
			Description: string(raw.Description),
			IsLocked:    true,
		})
	}
	return clues
}

func normalizeEndings(raws []rawEnding) []models.Ending {
	endings := make([]models.Ending, 0, len(raws))
	for _, raw := range raws {
		endings = append(endings, models.Ending{
			Type:        models.ParseEndingType(string(raw.Type)),
			Title:       string(raw.Title),
			Description: string(raw.Description),
			Condition:   string(raw.Condition),
		})
	}
	return endings
}

// freshID returns the trimmed id, replacing missing or duplicate ids with a
// random one so lookups stay unambiguous.
func freshID(id flexString, seen map[string]bool) string {
	v := strings.TrimSpace(string(id))
	if v == "" || seen[v] {
		v = uuid.NewString()
	}
	seen[v] = true
	return v
}

// repairCast enforces the cast invariant: exactly one deceased NPC and at
// least two alive ones, whatever the generator delivered.
func repairCast(m *models.Mystery) {
	if len(m.NPCs) == 0 {
		m.NPCs = append(m.NPCs, models.NPC{
			ID:            uuid.NewString(),
			Name:          "An Unidentified Victim",
			Role:          "Victim",
			Description:   "Found at the scene. Nobody has come forward to claim the body.",
			Personality:   "",
			Status:        models.NPCStatusDeceased,
			VisualSummary: "",
			AvatarURL:     "",
		})
	}

	firstDeceased := -1
	for i := range m.NPCs {
		if m.NPCs[i].Status != models.NPCStatusDeceased {
			continue
		}
		if firstDeceased == -1 {
			firstDeceased = i
		} else {
			m.NPCs[i].Status = models.NPCStatusAlive
		}
	}
	if firstDeceased == -1 {
		m.NPCs[0].Status = models.NPCStatusDeceased
	}

	alive := 0
	for i := range m.NPCs {
		if m.NPCs[i].Status == models.NPCStatusAlive {
			alive++
		}
	}
	witnesses := []models.NPC{
		{
			ID:            uuid.NewString(),
			Name:          "A Reluctant Bystander",
			Role:          "Witness",
			Description:   "Happened to be nearby when the body was found.",
			Personality:   "Answers briefly and only what is asked.",
			Status:        models.NPCStatusAlive,
			VisualSummary: "",
			AvatarURL:     "",
		},
		{
			ID:            uuid.NewString(),
			Name:          "The Night Watchman",
			Role:          "Witness",
			Description:   "Was on his rounds when it happened.",
			Personality:   "Gruff, but notices more than he lets on.",
			Status:        models.NPCStatusAlive,
			VisualSummary: "",
			AvatarURL:     "",
		},
	}
	for i := 0; alive < 2; i++ {
		m.NPCs = append(m.NPCs, witnesses[i])
		alive++
	}
}
