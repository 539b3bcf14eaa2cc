package deps

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwise1/earthlens/config"
	"github.com/bwise1/earthlens/internal/ai"
	"github.com/bwise1/earthlens/internal/db"
	"github.com/bwise1/earthlens/internal/http/gemini"
	"github.com/bwise1/earthlens/internal/http/google"
	"github.com/bwise1/earthlens/internal/http/mapbox"
	"github.com/bwise1/earthlens/internal/http/openai"
	stadiamaps "github.com/bwise1/earthlens/internal/http/stadia_maps"
	"github.com/bwise1/earthlens/util/storage"
	"github.com/bwise1/earthlens/util/websockets"
	"go.uber.org/zap"
)

// Geocoder turns coordinates into a place label.
type Geocoder interface {
	LocationLabel(ctx context.Context, lat, lon float64) (string, error)
}

// GoogleProfiler resolves a Google access token to an account profile.
type GoogleProfiler interface {
	Profile(ctx context.Context, accessToken string) (*google.Profile, error)
}

type Dependencies struct {
	DB       *db.DB
	Images   storage.ImageStore
	Hub      *websockets.Hub
	AI       *ai.Service
	Geocoder Geocoder
	Google   GoogleProfiler
	Log      *zap.Logger
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	database, err := db.New(cfg.Dsn, log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	images, err := newImageStore(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	provider, err := newAIProvider(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, err
	}
	if provider == nil {
		log.Warn("no AI provider configured, keyword classification only")
	}

	d := &Dependencies{
		DB:     database,
		Images: images,
		Hub:    websockets.NewHub(log),
		AI: ai.NewService(provider, log,
			ai.WithTemperature(cfg.GPTTemperature),
			ai.WithMaxTokens(cfg.GPTMaxTokens),
			ai.WithTimeout(cfg.AITimeout),
		),
		Google: newGoogle(cfg),
		Log:    log,
	}
	if d.Google == nil {
		log.Info("GOOGLE_CLIENT_ID not set, google sign-in is disabled")
	}
	d.Geocoder = newGeocoder(cfg)
	if d.Geocoder == nil {
		log.Info("no geocoder configured, report locations are not filled in")
	}
	return d, nil
}

// newGoogle returns nil without a client id so tokens minted for other
// Google apps are never accepted.
func newGoogle(cfg *config.Config) GoogleProfiler {
	if strings.TrimSpace(cfg.GoogleClientID) == "" {
		return nil
	}
	return google.NewClient(cfg.GoogleClientID)
}

// newGeocoder returns nil when the selected geocoder has no API key.
func newGeocoder(cfg *config.Config) Geocoder {
	switch strings.ToLower(cfg.Geocoder) {
	case "stadia":
		if cfg.StadiaAPIKey != "" {
			return stadiamaps.NewClient(cfg.StadiaAPIKey)
		}
	case "mapbox":
		if cfg.MapboxAPIKey != "" {
			return mapbox.NewClient(cfg.MapboxAPIKey)
		}
	}
	return nil
}

func newImageStore(cfg *config.Config) (storage.ImageStore, error) {
	if cfg.UsesCloudinary() {
		return storage.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	}
	return storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL)
}

// newAIProvider returns nil when the selected provider has no API key.
func newAIProvider(ctx context.Context, cfg *config.Config) (ai.Provider, error) {
	switch strings.ToLower(cfg.AIProvider) {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.GPTModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, nil
	}
}

func (d *Dependencies) Close() {
	if d.Hub != nil {
		d.Hub.Stop()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
