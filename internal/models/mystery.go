package models

import "strings"

// Mystery holds the generated scenario for one game: the known facts,
// the hidden solution, and the cast, clues and endings the player plays
// against. It is created once per game and treated as read-mostly
// afterwards; clue discovery is tracked by the game session, not by
// mutating Clues in place.
type Mystery struct {
	Title      string   `json:"title"`
	Situation  string   `json:"situation"`
	Solution   string   `json:"solution"`
	Difficulty string   `json:"difficulty"`
	NPCs       []NPC    `json:"npcs"`
	Clues      []Clue   `json:"clues"`
	Endings    []Ending `json:"endings"`
}

type NPCStatus string

const (
	NPCStatusAlive    NPCStatus = "alive"
	NPCStatusDeceased NPCStatus = "deceased"
)

// NPC is a character in the mystery. Exactly one NPC is deceased (the
// victim) and the rest are alive and can be interrogated.
type NPC struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Description   string    `json:"description"`
	Personality   string    `json:"personality"`
	Status        NPCStatus `json:"status"`
	VisualSummary string    `json:"visualSummary"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
}

// Clue is a discoverable piece of evidence. Every clue starts locked;
// the session records which clue IDs the player has uncovered.
type Clue struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsLocked    bool   `json:"isLocked"`
}

type EndingType string

const (
	EndingTypeGood    EndingType = "GOOD"
	EndingTypeNeutral EndingType = "NEUTRAL"
	EndingTypeBad     EndingType = "BAD"
)

// Ending is one possible conclusion of the mystery. Condition guides the
// evaluator in matching the player's theory to this ending.
type Ending struct {
	Type        EndingType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Condition   string     `json:"condition"`
}

// ParseNPCStatus maps free-form status text to a known NPCStatus.
// Anything unrecognized counts as alive so that a sloppy generator
// cannot flood the cast with corpses.
func ParseNPCStatus(s string) NPCStatus {
	if strings.EqualFold(strings.TrimSpace(s), string(NPCStatusDeceased)) {
		return NPCStatusDeceased
	}
	return NPCStatusAlive
}

// ParseEndingType maps free-form ending text to a known EndingType.
// Unrecognized values become NEUTRAL.
func ParseEndingType(s string) EndingType {
	switch EndingType(strings.ToUpper(strings.TrimSpace(s))) {
	case EndingTypeGood:
		return EndingTypeGood
	case EndingTypeBad:
		return EndingTypeBad
	case EndingTypeNeutral:
		return EndingTypeNeutral
	default:
		return EndingTypeNeutral
	}
}

// NPC looks up a character by ID.
func (m *Mystery) NPC(id string) (NPC, bool) {
	for _, npc := range m.NPCs {
		if npc.ID == id {
			return npc, true
		}
	}
	return NPC{}, false
}

// Clue looks up a clue by ID.
func (m *Mystery) Clue(id string) (Clue, bool) {
	for _, clue := range m.Clues {
		if clue.ID == id {
			return clue, true
		}
	}
	return Clue{}, false
}

// Victim returns the deceased NPC.
func (m *Mystery) Victim() (NPC, bool) {
	for _, npc := range m.NPCs {
		if npc.Status == NPCStatusDeceased {
			return npc, true
		}
	}
	return NPC{}, false
}

// AliveNPCs returns the interrogatable characters in cast order.
func (m *Mystery) AliveNPCs() []NPC {
	var alive []NPC
	for _, npc := range m.NPCs {
		if npc.Status == NPCStatusAlive {
			alive = append(alive, npc)
		}
	}
	return alive
}
