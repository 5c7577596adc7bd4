package game

import (
	"github.com/halvemaan/gumshoe/internal/models"
	"slices"
)

// Snapshot is the full player-visible session state. Every mutation
// produces a fresh snapshot, so one can be handed out or published without
// further locking.
type Snapshot struct {
	Phase              Phase                    `json:"phase"`
	Processing         bool                     `json:"processing"`
	CredentialRequired bool                     `json:"credentialRequired"`
	Mystery            *MysteryView             `json:"mystery,omitempty"`
	Messages           []models.ChatMessage     `json:"messages"`
	UnlockedClues      []string                 `json:"unlockedClues"`
	Target             string                   `json:"target,omitempty"`
	Theory             string                   `json:"theory,omitempty"`
	Ending             *models.EndingEvaluation `json:"ending,omitempty"`
}

// MysteryView is the mystery as the player may see it. The solution and
// the ending conditions stay server-side, and locked clues are reduced to
// bare ids so the list length is known but the contents are not.
type MysteryView struct {
	Title      string       `json:"title"`
	Situation  string       `json:"situation"`
	Difficulty string       `json:"difficulty"`
	NPCs       []models.NPC `json:"npcs"`
	Clues      []ClueView   `json:"clues"`
}

type ClueView struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Unlocked    bool   `json:"unlocked"`
}

func viewOf(m *models.Mystery, unlocked map[string]struct{}) *MysteryView {
	clues := make([]ClueView, 0, len(m.Clues))
	for _, clue := range m.Clues {
		if _, ok := unlocked[clue.ID]; ok {
			clues = append(clues, ClueView{ID: clue.ID, Title: clue.Title, Description: clue.Description, Unlocked: true})
			continue
		}
		clues = append(clues, ClueView{ID: clue.ID, Title: "", Description: "", Unlocked: false})
	}
	return &MysteryView{
		Title:      m.Title,
		Situation:  m.Situation,
		Difficulty: m.Difficulty,
		NPCs:       slices.Clone(m.NPCs),
		Clues:      clues,
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Phase:              s.phase,
		Processing:         s.processing,
		CredentialRequired: s.credentialRequired,
		Mystery:            nil,
		Messages:           slices.Clone(s.messages),
		UnlockedClues:      make([]string, 0, len(s.unlocked)),
		Target:             s.target,
		Theory:             s.theory,
		Ending:             nil,
	}
	for id := range s.unlocked {
		snapshot.UnlockedClues = append(snapshot.UnlockedClues, id)
	}
	slices.Sort(snapshot.UnlockedClues)
	if snapshot.Messages == nil {
		snapshot.Messages = []models.ChatMessage{}
	}
	if s.mystery != nil {
		snapshot.Mystery = viewOf(s.mystery, s.unlocked)
	}
	if s.evaluation != nil {
		evaluation := *s.evaluation
		snapshot.Ending = &evaluation
	}
	return snapshot
}
