package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bwise1/earthlens/config"
	deps "github.com/bwise1/earthlens/internal/debs"
	"github.com/bwise1/earthlens/util/ratelimit"
	"github.com/bwise1/earthlens/util/tracing"
	"github.com/bwise1/earthlens/util/values"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultIdleTimeout    = time.Minute
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 60 * time.Second
	defaultShutdownPeriod = 30 * time.Second
)

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)
	if resp == nil {
		return
	}
	resp.RequestID = tracing.FromContext(r.Context()).RequestID
	respByte, err := json.Marshal(resp)
	if err != nil {
		writeErrorResponse(w, err, values.Error, "unable to marshal server response")
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

type API struct {
	Server *http.Server
	Config *config.Config
	Deps   *deps.Dependencies
	Log    *zap.Logger

	Users    UserStore
	Reports  ReportStore
	Comments CommentStore
	Tags     TagStore

	limiter *ratelimit.KeyedRateLimiter
}

// New wires the Postgres stores from d and builds the HTTP server.
func New(cfg *config.Config, d *deps.Dependencies) *API {
	api := &API{
		Config:   cfg,
		Deps:     d,
		Log:      d.Log,
		Users:    &UserRepo{DB: d.DB},
		Reports:  &ReportRepo{DB: d.DB},
		Comments: &CommentRepo{DB: d.DB},
		Tags:     &TagRepo{DB: d.DB},
		limiter:  ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.Routes(),
	}
	return api
}

func (api *API) Serve() error {
	return api.Server.ListenAndServe()
}

// Routes builds the full HTTP handler.
func (api *API) Routes() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RealIP)
	mux.Use(RequestTracing)
	mux.Use(api.RequestLogger)
	mux.Use(api.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CorsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", values.HeaderRequestID, values.HeaderRequestSource},
		ExposedHeaders:   []string{values.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.NotFound(Handler(func(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
		return &ServerResponse{Message: "resource not found", Status: values.NotFound, StatusCode: http.StatusNotFound}
	}).ServeHTTP)
	mux.MethodNotAllowed(Handler(func(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
		return &ServerResponse{Message: "method not allowed", Status: values.NotAllowed, StatusCode: http.StatusMethodNotAllowed}
	}).ServeHTTP)

	mux.Method(http.MethodGet, "/health", Handler(api.Health))

	mux.Route("/api", func(r chi.Router) {
		r.Mount("/auth", api.AuthRoutes())
		r.Mount("/reports", api.ReportRoutes())
		r.Mount("/comments", api.CommentRoutes())
		r.Mount("/tags", api.TagRoutes())
		r.Mount("/ai", api.AIRoutes())
		r.Mount("/profile", api.ProfileRoutes())
		r.Mount("/users", api.UserRoutes())
		r.Mount("/uploads", api.UploadRoutes())
	})

	if api.Deps.Hub != nil {
		mux.Get("/ws", api.Deps.Hub.ServeWS(websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     api.checkOrigin,
		}))
	}

	if !api.Config.UsesCloudinary() {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(api.Config.UploadDir)))
		mux.Get("/uploads/*", fs.ServeHTTP)
	}

	return mux
}

func (api *API) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range api.Config.CorsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (api *API) Health(_ http.ResponseWriter, _ *http.Request) *ServerResponse {
	return &ServerResponse{
		Message:    "EarthLens API is running",
		Status:     values.Success,
		StatusCode: http.StatusOK,
		Data: map[string]interface{}{
			"ai_provider": api.Deps.AI.ProviderName(),
			"time":        time.Now().UTC(),
		},
	}
}

func (api *API) Shutdown(ctx context.Context) error {
	if api.limiter != nil {
		api.limiter.Stop()
	}
	if api.Server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultShutdownPeriod)
	defer cancel()
	return api.Server.Shutdown(ctx)
}
