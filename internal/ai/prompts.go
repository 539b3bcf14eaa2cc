package ai

import (
	"fmt"
	"strings"

	"github.com/bwise1/earthlens/internal/model"
)

func classifyPrompt(text string) string {
	return fmt.Sprintf(`Classify the following environmental report into one of these categories:
%s.
Respond only with JSON: {"category": "<category>", "confidence": <number between 0 and 1>}

Report:
%s`, strings.Join(model.Categories, ", "), text)
}

func advicePrompt(category, title, description string, location *string) string {
	loc := "N/A"
	if location != nil && *location != "" {
		loc = *location
	}
	return fmt.Sprintf(`Generate short, actionable advice for the following environmental report.
Category: %s
Title: %s
Description: %s
Location: %s`, category, title, description, loc)
}

func greenAdvicePrompt(category string, location *string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Give practical, actionable advice in a few sentences for someone concerned about %s", category)
	if location != nil && *location != "" {
		fmt.Fprintf(&b, " in %s", *location)
	}
	b.WriteString(". Mention who to contact and what individuals can do.")
	return b.String()
}

const ecoTipsPrompt = `Generate 10 short and actionable sustainability tips (eco-tips) suitable for a webpage.
Each tip must include:
- title
- tag (Energy, Water, Travel, Nature, Food, Waste)
- description
- impact_text (e.g., "Saves 3,000kg carbon dioxide per year")
- difficulty (Easy, Medium, Hard)
Respond ONLY with a JSON array.`
