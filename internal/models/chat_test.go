package models_test

import (
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParseAnswerType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want models.AnswerType
	}{
		{name: "exact", in: "YES", want: models.AnswerTypeYes},
		{name: "lowercase", in: "no", want: models.AnswerTypeNo},
		{name: "padded", in: " HINT\n", want: models.AnswerTypeHint},
		{name: "dialogue", in: "npc_dialogue", want: models.AnswerTypeNPCDialogue},
		{name: "unknown", in: "MAYBE", want: models.AnswerTypeClarification},
		{name: "empty", in: "", want: models.AnswerTypeClarification},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ParseAnswerType(tt.in))
		})
	}
}

func TestParseEndingType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want models.EndingType
	}{
		{name: "good", in: "good", want: models.EndingTypeGood},
		{name: "bad", in: "BAD", want: models.EndingTypeBad},
		{name: "unknown", in: "TRIUMPHANT", want: models.EndingTypeNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.ParseEndingType(tt.in))
		})
	}
}

func TestParseNPCStatus(t *testing.T) {
	assert.Equal(t, models.NPCStatusDeceased, models.ParseNPCStatus("Deceased"))
	assert.Equal(t, models.NPCStatusAlive, models.ParseNPCStatus("alive"))
	assert.Equal(t, models.NPCStatusAlive, models.ParseNPCStatus("undead"))
	assert.Equal(t, models.NPCStatusAlive, models.ParseNPCStatus(""))
}

func TestMysteryLookups(t *testing.T) {
	m := models.Mystery{
		NPCs: []models.NPC{
			{ID: "victim", Name: "Edgar Voss", Status: models.NPCStatusDeceased},
			{ID: "butler", Name: "Mrs. Hargreaves", Status: models.NPCStatusAlive},
			{ID: "heir", Name: "Julian Voss", Status: models.NPCStatusAlive},
		},
		Clues: []models.Clue{
			{ID: "c1", Title: "Broken watch", Description: "Stopped at 11:47.", IsLocked: true},
		},
	}

	npc, ok := m.NPC("butler")
	assert.True(t, ok)
	assert.Equal(t, "Mrs. Hargreaves", npc.Name)

	_, ok = m.NPC("nobody")
	assert.False(t, ok)

	clue, ok := m.Clue("c1")
	assert.True(t, ok)
	assert.Equal(t, "Broken watch", clue.Title)

	victim, ok := m.Victim()
	assert.True(t, ok)
	assert.Equal(t, "Edgar Voss", victim.Name)

	assert.Len(t, m.AliveNPCs(), 2)
}
