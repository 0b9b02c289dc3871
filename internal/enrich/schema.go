package enrich

import "github.com/abhisek/wordiz/internal/llm"

// EnrichmentSchema defines the JSON schema for word enrichment.
var EnrichmentSchema = &llm.Schema{
	Name:        "word-enrichment",
	Description: "An example sentence, its translation and an English definition for a vocabulary word",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentence": map[string]any{
				"type":        "string",
				"description": "A natural English sentence (8-20 words) that uses the word exactly as given",
			},
			"sentence_translation": map[string]any{
				"type":        "string",
				"description": "The sentence translated into the learner's language",
			},
			"definition": map[string]any{
				"type":        "string",
				"description": "A short learner-dictionary English definition (5-15 words)",
			},
		},
		"required":             []any{"sentence", "sentence_translation", "definition"},
		"additionalProperties": false,
	},
}
