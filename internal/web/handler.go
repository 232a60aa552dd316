package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shiftclock/internal/config"
	"github.com/shiftclock/internal/shift"
	"github.com/shiftclock/internal/tracker"
	"github.com/shiftclock/internal/visualization"
	"github.com/shiftclock/internal/work"
)

type Handler struct {
	config     *config.Config
	visualizer *visualization.Visualizer
	logger     *slog.Logger
	now        func() time.Time
	version    string

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, version string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		config:     cfg,
		visualizer: visualization.New(cfg.AssetBase),
		logger:     logger,
		now:        time.Now,
		version:    version,

		Mux: chi.NewRouter(),
	}
	h.RegisterRoutes()
	return h
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestLogger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/", h.Widget)
	h.Mux.Post("/calc", h.Calc)
	h.Mux.Get("/toggle", h.Toggle)
	h.Mux.Get("/api/shift", h.ShiftJSON)
	h.Mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	if dir := h.config.AssetDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			h.Mux.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(dir))))
		} else {
			h.logger.Warn("asset directory not found, images disabled", "dir", dir)
		}
	}
}

// inputFrom reads the form state from query or form values. Fields that are
// absent fall back to the configured defaults; fields that are present but
// empty stay empty so they read as zero.
func (h *Handler) inputFrom(get func(string) (string, bool)) work.Input {
	in := h.config.Input()
	if v, ok := get("start"); ok {
		in.StartTime = strings.TrimSpace(v)
	}
	if v, ok := get("mode"); ok {
		in.Mode = work.ParseMode(v)
	}
	if v, ok := get("hours"); ok {
		in.ShiftHours = v
	}
	if v, ok := get("h"); ok {
		in.ShiftH = v
	}
	if v, ok := get("m"); ok {
		in.ShiftM = v
	}
	if v, ok := get("break"); ok {
		in.BreakMinutes = v
	}
	return in
}

func (h *Handler) queryInput(r *http.Request) work.Input {
	q := r.URL.Query()
	return h.inputFrom(func(k string) (string, bool) {
		if !q.Has(k) {
			return "", false
		}
		return q.Get(k), true
	})
}

// Widget renders the page for the state in the query string.
func (h *Handler) Widget(w http.ResponseWriter, r *http.Request) {
	in := h.queryInput(r)
	page := visualization.Page{
		Input:          in,
		RefreshSeconds: h.config.RefreshSeconds,
		Version:        h.version,
	}
	if snap, ok := tracker.Compute(in, h.now()); ok {
		page.Snapshot = &snap
	}

	html, err := h.visualizer.GenerateWidgetHTML(page)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// Calc reads the submitted form and redirects to the matching GET URL.
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	in := h.inputFrom(func(k string) (string, bool) {
		vals, ok := r.PostForm[k]
		if !ok || len(vals) == 0 {
			return "", false
		}
		return vals[0], true
	})
	http.Redirect(w, r, "/?"+visualization.EncodeQuery(in), http.StatusFound)
}

// Toggle switches the shift entry mode, translating the value, and
// redirects back to the widget.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	in := h.queryInput(r)
	in = in.Toggle(work.ParseMode(r.URL.Query().Get("to")))
	http.Redirect(w, r, "/?"+visualization.EncodeQuery(in), http.StatusFound)
}

type shiftResponse struct {
	Input      work.Input      `json:"input"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	FinishTime string          `json:"finish_time"`
	Phase      shift.Phase     `json:"status"`
	Message    string          `json:"remaining"`
	Color      string          `json:"color"`
	Proximity  shift.Proximity `json:"proximity"`
	Asset      shift.Asset     `json:"asset"`
	AssetURL   string          `json:"asset_url"`
	Progress   float64         `json:"progress"`
}

// ShiftJSON serves the computed state for polling clients.
func (h *Handler) ShiftJSON(w http.ResponseWriter, r *http.Request) {
	in := h.queryInput(r)
	snap, ok := tracker.Compute(in, h.now())
	if !ok {
		h.errorResponse(w, r, http.StatusUnprocessableEntity, "start time is required (HH:MM)")
		return
	}

	h.writeJSON(w, r, http.StatusOK, shiftResponse{
		Input:      in,
		Start:      snap.Window.Start,
		End:        snap.Window.End,
		FinishTime: snap.FinishTime,
		Phase:      snap.Status.Phase,
		Message:    snap.Status.Message,
		Color:      snap.Status.Color,
		Proximity:  snap.Proximity,
		Asset:      snap.Asset,
		AssetURL:   h.visualizer.AssetPath(snap.Asset),
		Progress:   snap.Progress,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, r, status, map[string]string{"error": message})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

type responseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				h.logger.Debug("panic stack", "stack", string(debug.Stack()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
