package mystery

import "github.com/halvemaan/gumshoe/internal/provider"

const generationSystem = `You are the author of interactive noir murder mysteries. You write tight,
dark, suspenseful scenarios with believable motives and concrete physical evidence. All content is
in English and, despite the dark tone, suitable for a general audience.`

const generationPrompt = `Write a self-contained murder mystery for an interrogation game.

REQUIREMENTS:
- A title, the publicly known situation, and the hidden solution naming culprit, motive and method.
- A difficulty tag: easy, medium or hard.
- Exactly one character with status "deceased" (the victim) and at least three with status "alive".
- Every character gets a distinct personality directive and an English visualSummary a portrait artist could paint from.
- 4 to 5 discoverable clues that point toward the solution without spelling it out.
- Exactly three endings tagged GOOD, NEUTRAL and BAD, each with a condition describing when it applies.
- Short lowercase ids for characters and clues (for example "butler", "c1").
- The situation must not give the solution away.`

func generationSchema() *provider.Schema {
	npc := &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"id":            {Type: provider.TypeString, Description: "short unique identifier"},
			"name":          {Type: provider.TypeString},
			"role":          {Type: provider.TypeString},
			"description":   {Type: provider.TypeString},
			"personality":   {Type: provider.TypeString, Description: "behavioral directive for roleplay"},
			"status":        {Type: provider.TypeString, Enum: []string{"alive", "deceased"}},
			"visualSummary": {Type: provider.TypeString, Description: "English portrait description"},
		},
		Required: []string{"id", "name", "role", "description", "personality", "status", "visualSummary"},
	}
	clue := &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"id":          {Type: provider.TypeString, Description: "short unique identifier"},
			"title":       {Type: provider.TypeString},
			"description": {Type: provider.TypeString},
			"isLocked":    {Type: provider.TypeBoolean},
		},
		Required: []string{"id", "title", "description"},
	}
	ending := &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"type":        {Type: provider.TypeString, Enum: []string{"GOOD", "NEUTRAL", "BAD"}},
			"title":       {Type: provider.TypeString},
			"description": {Type: provider.TypeString, Description: "narrative of how the case concludes"},
			"condition":   {Type: provider.TypeString, Description: "when the player's theory earns this ending"},
		},
		Required: []string{"type", "title", "description", "condition"},
	}
	return &provider.Schema{
		Type: provider.TypeObject,
		Properties: map[string]*provider.Schema{
			"title":      {Type: provider.TypeString},
			"situation":  {Type: provider.TypeString, Description: "the publicly known facts"},
			"solution":   {Type: provider.TypeString, Description: "the hidden truth of the case"},
			"difficulty": {Type: provider.TypeString, Enum: []string{"easy", "medium", "hard"}},
			"npcs":       {Type: provider.TypeArray, Items: npc},
			"clues":      {Type: provider.TypeArray, Items: clue},
			"endings":    {Type: provider.TypeArray, Items: ending},
		},
		Required: []string{"title", "situation", "solution", "difficulty", "npcs", "clues", "endings"},
	}
}
