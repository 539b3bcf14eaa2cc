// Package ai classifies environmental reports and generates advice through a
// language-model provider, falling back to keyword rules whenever the
// provider is missing or misbehaves.
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwise1/earthlens/internal/model"
	"go.uber.org/zap"
)

var ErrNoProvider = errors.New("no AI provider configured")

// Provider sends a single prompt to a language model and returns its text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

const (
	classifyTemperature = 0.0
	defaultTemperature  = 0.7
	defaultMaxTokens    = 500
	defaultTimeout      = 20 * time.Second
)

type Service struct {
	provider    Provider
	temperature float64
	maxTokens   int
	timeout     time.Duration
	log         *zap.Logger
	now         func() time.Time
}

type Option func(*Service)

func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

func WithMaxTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService builds the service. A nil provider is allowed; every call then
// uses the keyword fallback.
func NewService(provider Provider, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		timeout:     defaultTimeout,
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Healthy reports whether a provider is configured.
func (s *Service) Healthy() bool {
	return s.provider != nil
}

func (s *Service) ProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}

func (s *Service) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if s.provider == nil {
		return "", ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.provider.Complete(ctx, prompt, CompletionOptions{
		Temperature: temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func (s *Service) fallback(op string, err error) {
	if errors.Is(err, ErrNoProvider) {
		return
	}
	s.log.Warn("ai provider failed, using fallback",
		zap.String("op", op),
		zap.String("provider", s.ProviderName()),
		zap.Error(err),
	)
}

// Classify always returns a category from the fixed set.
func (s *Service) Classify(ctx context.Context, text string) model.Classification {
	raw, err := s.complete(ctx, classifyPrompt(text), classifyTemperature)
	if err == nil {
		var c model.Classification
		if c, err = parseClassification(raw); err == nil {
			c.Source = model.SourceProviderPrefix + s.provider.Name()
			return c
		}
	}
	s.fallback("classify", err)
	return KeywordClassify(text)
}

// Advise returns advice for a report, or the canned advice for its category.
func (s *Service) Advise(ctx context.Context, category, title, description string, location *string) string {
	advice, err := s.complete(ctx, advicePrompt(category, title, description, location), s.temperature)
	if err == nil {
		return advice
	}
	s.fallback("advise", err)
	return DefaultAdvice(category)
}

// Analyze classifies a report and generates advice for the chosen category.
func (s *Service) Analyze(ctx context.Context, title, description string, location *string) model.Analysis {
	c := s.Classify(ctx, strings.TrimSpace(title+". "+description))
	return model.Analysis{
		Classification: c,
		Advice:         s.Advise(ctx, c.Category, title, description, location),
		ProcessedAt:    s.now().UTC(),
	}
}

// GreenAdvice answers a free-standing advice request for a category.
func (s *Service) GreenAdvice(ctx context.Context, category string, location *string) string {
	advice, err := s.complete(ctx, greenAdvicePrompt(category, location), s.temperature)
	if err == nil {
		return advice
	}
	s.fallback("green_advice", err)
	return DefaultAdvice(category)
}

// CategorizeText classifies arbitrary text and lists the other categories
// its keywords point at.
func (s *Service) CategorizeText(ctx context.Context, text string) model.CategorizeTextResponse {
	c := s.Classify(ctx, text)

	suggestions := make([]string, 0)
	for _, cat := range MatchingCategories(text) {
		if cat != c.Category {
			suggestions = append(suggestions, cat)
		}
	}
	return model.CategorizeTextResponse{Classification: c, Suggestions: suggestions}
}

// EcoTips returns provider-generated tips or the static list.
func (s *Service) EcoTips(ctx context.Context) []model.EcoTip {
	raw, err := s.complete(ctx, ecoTipsPrompt, s.temperature)
	if err == nil {
		var tips []model.EcoTip
		if tips, err = parseEcoTips(raw); err == nil {
			return tips
		}
	}
	s.fallback("eco_tips", err)
	return StaticEcoTips()
}
