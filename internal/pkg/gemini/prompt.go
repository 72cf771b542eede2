package gemini

import genai "github.com/google/generative-ai-go/genai"

const DefaultModel = "gemini-2.5-flash"

const systemInstruction = `You are an expert electronics engineer who helps people understand, repair and salvage printed circuit boards.
You are given a single photograph of a PCB. Be concrete and honest: if markings are unreadable, say so instead of guessing.`

const analysisPrompt = `Analyze this printed circuit board photo.

Return JSON with two fields:
- "markdownReport": a markdown report with these sections:
  ## Board Overview - what the board most likely is and what device it came from.
  ## Key Components - a table (Designator/Location, Component, Markings, Function).
  ## Markings Decoded - part numbers, date codes and manufacturer logos you can read.
  ## Safety Notes - high-voltage areas, charged capacitors, batteries, handling advice.
  ## Reuse & Salvage - which parts are worth desoldering and what they can be reused for.
- "componentStats": counts of visible components grouped by category
  (for example "Resistors", "Capacitors", "ICs", "Connectors", "Transistors", "Diodes", "Inductors", "Other").
  Only include categories with at least one component.`

var resultSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"markdownReport": {
			Type:        genai.TypeString,
			Description: "Detailed markdown analysis of the board.",
		},
		"componentStats": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category": {Type: genai.TypeString, Description: "Component category, e.g. Resistors."},
					"count":    {Type: genai.TypeInteger, Description: "Number of visible components."},
				},
				Required: []string{"category", "count"},
			},
		},
	},
	Required: []string{"markdownReport", "componentStats"},
}
