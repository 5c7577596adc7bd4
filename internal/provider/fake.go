package provider

import (
	"context"
	"encoding/json"
)

// FakeBackend returns deterministic payloads for offline play and tests.
// It picks the payload by inspecting the requested output schema.
type FakeBackend struct{}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{}
}

func (f *FakeBackend) Name() string {
	return "fake"
}

func (f *FakeBackend) Generate(_ context.Context, _ string, req Request) (string, error) {
	if req.Schema == nil {
		return "The fog over the harbor kept its own counsel.", nil
	}
	var obj any
	switch {
	case req.Schema.Properties["npcs"] != nil:
		obj = fakeMystery()
	case req.Schema.Properties["answerType"] != nil:
		obj = map[string]any{
			"answerType":     "HINT",
			"reply":          "Consider who had reason to visit the archive after closing.",
			"unlockedClueId": "c1",
		}
	case req.Schema.Properties["narrative"] != nil:
		obj = map[string]any{
			"type":      "NEUTRAL",
			"title":     "A Partial Truth",
			"narrative": "You named the place and the hour, but the why of it stays wrapped in fog.",
		}
	default:
		obj = map[string]any{}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fakeMystery() map[string]any {
	return map[string]any{
		"title":      "Murder at the Gaslight Archive",
		"situation":  "Archivist Edmund Hale was found dead among the map drawers at dawn. The archive was locked from the inside and the night ledger is missing a page.",
		"solution":   "Curator Beatrice Lang killed Hale after he discovered she had been selling forged charts. She slipped out through the coal chute and tore the ledger page naming her late visit.",
		"difficulty": "medium",
		"npcs": []map[string]any{
			{
				"id": "hale", "name": "Edmund Hale", "role": "Archivist",
				"description": "The victim, a meticulous keeper of the city's charts.",
				"personality": "Precise, suspicious of everyone.",
				"status":      "deceased",
				"visualSummary": "An elderly man in a worn tweed waistcoat, " +
					"wire spectacles, ink-stained fingers.",
			},
			{
				"id": "lang", "name": "Beatrice Lang", "role": "Curator",
				"description": "Hale's superior, admired and untouchable.",
				"personality": "Charming, evasive, redirects questions about money.",
				"status":      "alive",
				"visualSummary": "A composed woman in a high-collared dress, " +
					"silver brooch shaped like a compass rose.",
			},
			{
				"id": "mercer", "name": "Tom Mercer", "role": "Night porter",
				"description": "Locked the building and swears nobody entered after ten.",
				"personality": "Nervous, eager to please, contradicts himself under pressure.",
				"status":      "alive",
				"visualSummary": "A wiry young man in an oversized porter's coat, " +
					"cap pulled low.",
			},
			{
				"id": "quill", "name": "Ada Quill", "role": "Cartography student",
				"description": "Spent every evening this week copying harbor charts.",
				"personality": "Blunt, observant, resents being suspected.",
				"status":      "alive",
				"visualSummary": "A young woman with rolled shirtsleeves, " +
					"charcoal smudges on her cuffs, hair pinned with a pen nib.",
			},
		},
		"clues": []map[string]any{
			{"id": "c1", "title": "Torn ledger page", "description": "The night ledger is missing the page for visitors after nine.", "isLocked": true},
			{"id": "c2", "title": "Coal dust trail", "description": "Fresh coal dust leads from the chute to the curator's stair.", "isLocked": true},
			{"id": "c3", "title": "Forged harbor chart", "description": "A chart in the sale pile carries an inverted watermark.", "isLocked": true},
			{"id": "c4", "title": "Hale's notebook", "description": "The last entry reads: 'B. knows that I know.'", "isLocked": true},
		},
		"endings": []map[string]any{
			{"type": "GOOD", "title": "The Forger Unmasked", "description": "Lang confesses when confronted with the chute and the chart.", "condition": "The theory names Lang, the forgery motive, and the coal chute escape."},
			{"type": "NEUTRAL", "title": "An Arrest Without Answers", "description": "Lang is held on suspicion but the motive never surfaces.", "condition": "The theory names Lang but misses the motive or the escape route."},
			{"type": "BAD", "title": "The Archive Keeps Its Secret", "description": "The inquest blames a burglary gone wrong. Lang resigns quietly.", "condition": "The theory accuses the wrong person or offers no evidence."},
		},
	}
}
