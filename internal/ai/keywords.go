package ai

import (
	"strings"

	"github.com/bwise1/earthlens/internal/model"
)

const (
	keywordConfidence = 0.8
	defaultConfidence = 0.6
)

// categoryKeywords is checked in order; the first category with a matching
// keyword wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{model.CategoryPollution, []string{"pollution", "waste", "garbage", "trash", "contamination", "toxic", "dump"}},
	{model.CategoryClimateChange, []string{"climate", "temperature", "weather", "global warming", "carbon", "heat"}},
	{model.CategoryDeforestation, []string{"forest", "trees", "logging", "deforestation", "habitat", "wood"}},
	{model.CategoryWaterIssues, []string{"water", "river", "ocean", "lake", "drought", "flood", "stream"}},
	{model.CategoryAirQuality, []string{"air", "smog", "emissions", "smoke", "breathing", "fumes"}},
	{model.CategoryWildlife, []string{"animals", "wildlife", "species", "endangered", "biodiversity", "birds"}},
}

var defaultAdvice = map[string]string{
	model.CategoryPollution:          "Report this to local environmental authorities. Document with photos and location details.",
	model.CategoryClimateChange:      "Reduce your carbon footprint by using public transport and conserving energy.",
	model.CategoryDeforestation:      "Report illegal logging to forestry authorities. Support reforestation efforts.",
	model.CategoryWaterIssues:        "Report to water management authorities. Conserve water usage.",
	model.CategoryAirQuality:         "Monitor air quality indexes. Report industrial emissions to authorities.",
	model.CategoryWildlife:           "Contact local wildlife protection agencies. Document with photos safely.",
	model.CategoryEnvironmentalIssue: "Document the issue and report to local environmental authorities.",
}

// MatchingCategories lists every category with at least one keyword
// (substring, case-insensitive) in text, in table order.
func MatchingCategories(text string) []string {
	text = strings.ToLower(text)
	var out []string
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				out = append(out, entry.category)
				break
			}
		}
	}
	return out
}

// KeywordClassify is the deterministic fallback classifier.
func KeywordClassify(text string) model.Classification {
	if matches := MatchingCategories(text); len(matches) > 0 {
		return model.Classification{
			Category:   matches[0],
			Confidence: keywordConfidence,
			Source:     model.SourceKeywordMatch,
		}
	}
	return model.Classification{
		Category:   model.CategoryEnvironmentalIssue,
		Confidence: defaultConfidence,
		Source:     model.SourceDefault,
	}
}

// DefaultAdvice returns the canned advice for category, using the generic
// entry for unknown categories.
func DefaultAdvice(category string) string {
	if advice, ok := defaultAdvice[category]; ok {
		return advice
	}
	return defaultAdvice[model.CategoryEnvironmentalIssue]
}

var staticEcoTips = []model.EcoTip{
	{Title: "Reduce Plastic Use", Tag: "Waste", Description: "Use reusable bags and water bottles", ImpactText: "Reduces plastic waste by 50kg per year", Difficulty: "Easy"},
	{Title: "Save Energy at Home", Tag: "Energy", Description: "Switch to LED bulbs and unplug devices", ImpactText: "Saves 1,000 kWh per year", Difficulty: "Easy"},
	{Title: "Use Public Transport", Tag: "Travel", Description: "Take buses, trains, or cycle instead of driving", ImpactText: "Cuts 500kg CO2 per year", Difficulty: "Medium"},
	{Title: "Compost Organic Waste", Tag: "Waste", Description: "Turn food scraps into compost", ImpactText: "Reduces landfill waste by 200kg per year", Difficulty: "Medium"},
	{Title: "Plant Trees", Tag: "Nature", Description: "Participate in local tree planting events", ImpactText: "Supports 50+ species locally", Difficulty: "Medium"},
	{Title: "Save Water", Tag: "Water", Description: "Fix leaks and use water-saving appliances", ImpactText: "Saves 5,000 liters per month", Difficulty: "Easy"},
	{Title: "Eat More Plant-Based Meals", Tag: "Food", Description: "Reduce meat consumption to lower carbon footprint", ImpactText: "Saves 1,200kg CO2 per year", Difficulty: "Medium"},
	{Title: "Avoid Fast Fashion", Tag: "Waste", Description: "Buy fewer, higher-quality clothes and donate old items", ImpactText: "Reduces textile waste by 10kg per year", Difficulty: "Medium"},
	{Title: "Support Local Produce", Tag: "Food", Description: "Buy from local farmers to reduce transport emissions", ImpactText: "Reduces food transport CO2 by 300kg per year", Difficulty: "Easy"},
	{Title: "Use Eco-Friendly Cleaning Products", Tag: "Waste", Description: "Switch to biodegradable detergents and cleaning agents", ImpactText: "Prevents 100L of chemical runoff annually", Difficulty: "Easy"},
}

// StaticEcoTips returns a copy of the built-in tip list.
func StaticEcoTips() []model.EcoTip {
	out := make([]model.EcoTip, len(staticEcoTips))
	copy(out, staticEcoTips)
	return out
}
