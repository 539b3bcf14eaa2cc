package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	responses []string
	err       error
	calls     int
	prompts   []string
	opts      []CompletionOptions
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, prompt string, opts CompletionOptions) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	out := f.responses[0]
	f.responses = f.responses[1:]
	return out, nil
}

func TestKeywordClassify(t *testing.T) {
	tests := []struct {
		text       string
		category   string
		confidence float64
		source     string
	}{
		{"Illegal garbage dump near the park", model.CategoryPollution, 0.8, model.SourceKeywordMatch},
		{"Record heat this summer", model.CategoryClimateChange, 0.8, model.SourceKeywordMatch},
		{"Trees cut down for logging", model.CategoryDeforestation, 0.8, model.SourceKeywordMatch},
		{"The river level dropped", model.CategoryWaterIssues, 0.8, model.SourceKeywordMatch},
		{"Thick SMOG over downtown", model.CategoryAirQuality, 0.8, model.SourceKeywordMatch},
		{"Endangered birds nesting", model.CategoryWildlife, 0.8, model.SourceKeywordMatch},
		// pollution is checked before water-issues
		{"Toxic waste in the river", model.CategoryPollution, 0.8, model.SourceKeywordMatch},
		{"Something odd is happening", model.CategoryEnvironmentalIssue, 0.6, model.SourceDefault},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got := KeywordClassify(tc.text)
			assert.Equal(t, tc.category, got.Category)
			assert.InDelta(t, tc.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tc.source, got.Source)
		})
	}
}

func TestDefaultAdvice(t *testing.T) {
	for _, c := range model.Categories {
		assert.NotEmpty(t, DefaultAdvice(c), c)
	}
	assert.Equal(t, DefaultAdvice(model.CategoryEnvironmentalIssue), DefaultAdvice("unknown"))
}

func TestClassifyUsesProvider(t *testing.T) {
	p := &fakeProvider{responses: []string{"```json\n{\"category\": \"Water-Issues\", \"confidence\": 0.93}\n```"}}
	svc := NewService(p, zap.NewNop())

	got := svc.Classify(context.Background(), "Oil slick on the lake")

	assert.Equal(t, model.CategoryWaterIssues, got.Category)
	assert.InDelta(t, 0.93, got.Confidence, 1e-9)
	assert.Equal(t, "ai:fake", got.Source)
	require.Len(t, p.opts, 1)
	assert.Zero(t, p.opts[0].Temperature)
}

func TestClassifyFallsBackOnce(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{"provider error", &fakeProvider{err: errors.New("timeout")}},
		{"empty answer", &fakeProvider{responses: []string{"   "}}},
		{"not json", &fakeProvider{responses: []string{"I think it is pollution"}}},
		{"unknown category", &fakeProvider{responses: []string{`{"category":"volcano","confidence":0.9}`}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(tc.provider, zap.NewNop())

			got := svc.Classify(context.Background(), "Smoke from the factory")

			assert.Equal(t, model.CategoryAirQuality, got.Category)
			assert.Equal(t, model.SourceKeywordMatch, got.Source)
			assert.Equal(t, 1, tc.provider.calls, "no retries")
		})
	}
}

func TestClassifyWithoutProvider(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	assert.False(t, svc.Healthy())
	assert.Equal(t, "none", svc.ProviderName())

	got := svc.Classify(context.Background(), "nothing specific")
	assert.Equal(t, model.CategoryEnvironmentalIssue, got.Category)
}

func TestClassifyClampsConfidence(t *testing.T) {
	p := &fakeProvider{responses: []string{`Sure! {"category":"wildlife","confidence":7}`}}
	got := NewService(p, zap.NewNop()).Classify(context.Background(), "deer")
	assert.Equal(t, model.CategoryWildlife, got.Category)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
}

func TestAnalyze(t *testing.T) {
	p := &fakeProvider{responses: []string{
		`{"category":"pollution","confidence":0.7}`,
		"Call the council.",
	}}
	svc := NewService(p, zap.NewNop())
	fixed := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	got := svc.Analyze(context.Background(), "Plastic everywhere", "Bags on the beach", nil)

	assert.Equal(t, model.CategoryPollution, got.Category)
	assert.Equal(t, "Call the council.", got.Advice)
	assert.Equal(t, fixed, got.ProcessedAt)
	require.Len(t, p.prompts, 2)
	assert.Contains(t, p.prompts[1], "Location: N/A")
}

func TestAnalyzeFallbackAdvice(t *testing.T) {
	svc := NewService(&fakeProvider{err: errors.New("down")}, zap.NewNop())

	got := svc.Analyze(context.Background(), "Forest cleared", "Whole hillside logged", nil)

	assert.Equal(t, model.CategoryDeforestation, got.Category)
	assert.Equal(t, DefaultAdvice(model.CategoryDeforestation), got.Advice)
}

func TestCategorizeTextSuggestions(t *testing.T) {
	svc := NewService(nil, zap.NewNop())

	got := svc.CategorizeText(context.Background(), "toxic smoke over the river")

	assert.Equal(t, model.CategoryPollution, got.Category)
	assert.Equal(t, []string{model.CategoryWaterIssues, model.CategoryAirQuality}, got.Suggestions)
}

func TestEcoTips(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	tips := svc.EcoTips(context.Background())
	require.Len(t, tips, 10)
	assert.Equal(t, "Reduce Plastic Use", tips[0].Title)

	p := &fakeProvider{responses: []string{`[{"title":"Bike","tag":"Travel","description":"Ride to work","impact_text":"Less CO2","difficulty":"Easy"}]`}}
	tips = NewService(p, zap.NewNop()).EcoTips(context.Background())
	require.Len(t, tips, 1)
	assert.Equal(t, "Bike", tips[0].Title)
}

func TestGreenAdvicePrompt(t *testing.T) {
	loc := "Lagos"
	p := &fakeProvider{responses: []string{"Plant trees."}}
	svc := NewService(p, zap.NewNop())

	assert.Equal(t, "Plant trees.", svc.GreenAdvice(context.Background(), model.CategoryDeforestation, &loc))
	assert.Contains(t, p.prompts[0], "in Lagos")
}
