package models

import "strings"

// TargetGM is the sentinel interrogation target for the omniscient game
// master, as opposed to an NPC ID.
const TargetGM = "GM"

type MessageType string

const (
	MessageTypeUser       MessageType = "user"
	MessageTypeAIResponse MessageType = "ai_response"
	MessageTypeSystem     MessageType = "system"
	MessageTypeClueAlert  MessageType = "clue_alert"
)

// ChatMessage is one entry in the session's append-only message log.
type ChatMessage struct {
	ID          string      `json:"id"`
	Type        MessageType `json:"type"`
	Content     string      `json:"content"`
	AnswerType  AnswerType  `json:"answerType,omitempty"`
	SpeakerName string      `json:"speakerName,omitempty"`
	AvatarURL   string      `json:"avatarUrl,omitempty"`
}

type AnswerType string

const (
	AnswerTypeYes           AnswerType = "YES"
	AnswerTypeNo            AnswerType = "NO"
	AnswerTypeIrrelevant    AnswerType = "IRRELEVANT"
	AnswerTypeHint          AnswerType = "HINT"
	AnswerTypeClarification AnswerType = "CLARIFICATION"
	AnswerTypeNPCDialogue   AnswerType = "NPC_DIALOGUE"
)

// ParseAnswerType maps free-form judge output to a known AnswerType.
// Unrecognized values become CLARIFICATION so the player always sees a
// coherent reply type.
func ParseAnswerType(s string) AnswerType {
	switch AnswerType(strings.ToUpper(strings.TrimSpace(s))) {
	case AnswerTypeYes:
		return AnswerTypeYes
	case AnswerTypeNo:
		return AnswerTypeNo
	case AnswerTypeIrrelevant:
		return AnswerTypeIrrelevant
	case AnswerTypeHint:
		return AnswerTypeHint
	case AnswerTypeNPCDialogue:
		return AnswerTypeNPCDialogue
	case AnswerTypeClarification:
		return AnswerTypeClarification
	default:
		return AnswerTypeClarification
	}
}

// JudgeResponse is the typed verdict for one player question.
// UnlockedClueID is empty unless the answer reveals a clue.
type JudgeResponse struct {
	AnswerType     AnswerType `json:"answerType"`
	Reply          string     `json:"reply"`
	UnlockedClueID string     `json:"unlockedClueId,omitempty"`
}

// EndingEvaluation is the verdict for a submitted theory.
type EndingEvaluation struct {
	Type      EndingType `json:"type"`
	Title     string     `json:"title"`
	Narrative string     `json:"narrative"`
}
