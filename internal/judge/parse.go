package judge

import (
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/provider"
	"strings"
)

type rawJudgment struct {
	AnswerType     string `json:"answerType"`
	Reply          string `json:"reply"`
	UnlockedClueID string `json:"unlockedClueId"`
}

// parseJudgment decodes a completion into a JudgeResponse. Unknown answer
// types soften to CLARIFICATION and clue ids that don't exist in the mystery
// are dropped, so a parseable judgment is always usable as-is.
func parseJudgment(m *models.Mystery, completion string) (models.JudgeResponse, error) {
	raw, err := provider.DecodeJSON[rawJudgment](completion)
	if err != nil {
		return models.JudgeResponse{}, errors.Wrap(err, "decode judgment")
	}

	reply := strings.TrimSpace(raw.Reply)
	if reply == "" {
		return models.JudgeResponse{}, errors.New("judgment carries no reply")
	}

	response := models.JudgeResponse{
		AnswerType:     models.ParseAnswerType(raw.AnswerType),
		Reply:          reply,
		UnlockedClueID: "",
	}
	if id := strings.TrimSpace(raw.UnlockedClueID); id != "" {
		if _, ok := m.Clue(id); ok {
			response.UnlockedClueID = id
		}
	}
	return response, nil
}
