// Package transport exposes the gift concierge over HTTP.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
	"github.com/tanpawarit/gift-concierge/agent/registrar"
	"github.com/tanpawarit/gift-concierge/agent/tool"
)

const maxRequestBodyBytes = 1 << 20

type TokenIssuer interface {
	Issue(ctx context.Context) (registrar.GuestToken, error)
}

// Deps are the collaborators behind the routes. Registration and Tokens are
// always set, even when Fabric credentials are absent.
type Deps struct {
	Router       contractx.ToolRouter
	Tokens       TokenIssuer
	Registration registrar.Reader
	// SpaceName and SpaceHost describe the Fabric space for dashboard links.
	SpaceName string
	SpaceHost string
}

type ResourceInfo struct {
	SpaceName    string  `json:"space_name"`
	ResourceID   *string `json:"resource_id"`
	DashboardURL *string `json:"dashboard_url"`
}

type handlers struct {
	deps Deps
}

// NewHandler builds the chi router. The tool-call route is guarded by basic
// auth when both credentials are configured.
func NewHandler(cfg Config, deps Deps) (http.Handler, error) {
	if deps.Router == nil {
		return nil, errors.New("tool router is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	if deps.Registration == nil {
		return nil, errors.New("registration is required")
	}

	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/tools", h.listTools)
	r.Get("/get_token", h.getToken)
	r.Get("/get_resource_info", h.getResourceInfo)

	r.Route(cfg.AgentRoute(), func(r chi.Router) {
		if cfg.basicAuthEnabled() {
			r.Use(middleware.BasicAuth(cfg.AgentRoute(), map[string]string{
				cfg.BasicAuthUser: cfg.BasicAuthPassword,
			}))
		}
		r.Post("/", swmlNotServed)
		r.Post("/swaig", h.handleToolCall)
	})

	return r, nil
}

// Serve runs the server until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, cfg Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("route", cfg.AgentRoute()).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("http server stopped")
	return nil
}

func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

func (h *handlers) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var call contractx.ToolCall
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&call); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	reply, err := h.deps.Router.Handle(r.Context(), call)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			hlog.FromRequest(r).Warn().Err(err).Str("function", call.Function).Msg("rejected tool call")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("function", call.Function).Msg("tool call failed")
		writeError(w, http.StatusInternalServerError, "tool call failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// swmlNotServed answers the handler's registered callback. The SWML document
// itself comes from the voice runtime in front of this service; only the
// tool-call webhook is handled here.
func swmlNotServed(w http.ResponseWriter, r *http.Request) {
	hlog.FromRequest(r).Warn().Msg("swml document requested from tool-call service")
	writeError(w, http.StatusNotImplemented, "swml document is served by the voice runtime; tool calls go to /swaig")
}

func (h *handlers) listTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, tool.OpenAITools())
}

func (h *handlers) getToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.deps.Tokens.Issue(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("guest token request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (h *handlers) getResourceInfo(w http.ResponseWriter, _ *http.Request) {
	info := ResourceInfo{SpaceName: h.deps.SpaceName}
	if id := h.deps.Registration.Snapshot().HandlerID; id != "" {
		info.ResourceID = &id
		if h.deps.SpaceHost != "" {
			url := fmt.Sprintf("https://%s/neon/resources/%s/edit?t=addresses", h.deps.SpaceHost, id)
			info.DashboardURL = &url
		}
	}
	writeJSON(w, http.StatusOK, info)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
