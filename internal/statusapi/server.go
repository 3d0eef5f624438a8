package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quietshelf/fluidctl/internal/observability"
	"github.com/quietshelf/fluidctl/internal/synth"
)

type Server struct {
	client     *synth.Client
	engineAddr string
	log        zerolog.Logger

	// mu upholds the one-transaction-at-a-time contract of the engine
	// connection for concurrent network callers.
	mu sync.Mutex
}

func New(client *synth.Client, engineAddr string) *Server {
	return &Server{
		client:     client,
		engineAddr: engineAddr,
		log:        log.With().Str("component", "statusapi").Logger(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		// The metrics wrapper stays off /ws: the websocket upgrade needs
		// the raw ResponseWriter for hijacking.
		r.Use(s.requestMetrics)
		r.Get("/status", s.handleStatus)
		r.Get("/fonts", s.handleFonts)
		r.Post("/fonts", s.handleInitFont)
		r.Get("/fonts/{id}/instruments", s.handleInstruments)
		r.Post("/select", s.handleSelect)
		r.Post("/channel", s.handleChannel)
		r.Post("/command", s.handleCommand)
	})
	r.Get("/ws", s.handleWS)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Serve runs the API until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Msg("status api listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type statusResponse struct {
	EngineAddr string         `json:"engine_addr"`
	State      synth.Snapshot `json:"state"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := statusResponse{EngineAddr: s.engineAddr, State: s.client.State().Snapshot()}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFonts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids, err := s.client.Fonts()
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}
	writeJSON(w, http.StatusOK, map[string][]int{"fonts": ids})
}

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	voices, err := s.client.Instruments(id)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if voices == nil {
		voices = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"instruments": voices})
}

type initFontRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleInitFont(w http.ResponseWriter, r *http.Request) {
	var req initFontRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path required"))
		return
	}
	s.mu.Lock()
	id, voices, err := s.client.InitFont(req.Path)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "instruments": voices})
}

type selectRequest struct {
	Descriptor string `json:"descriptor"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	err := s.client.SelectInstrument(req.Descriptor)
	snap := s.client.State().Snapshot()
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{EngineAddr: s.engineAddr, State: snap})
}

type channelRequest struct {
	Channel int `json:"channel"`
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	s.client.State().SetSelectedChannel(req.Channel)
	sel := s.client.State().SelectedChannel
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"selected_channel": sel})
}

type commandRequest struct {
	Cmd string `json:"cmd"`
}

type commandResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cmd == "" {
		writeError(w, http.StatusBadRequest, errors.New("cmd required"))
		return
	}
	s.mu.Lock()
	out, err := s.client.Exec(req.Cmd)
	s.mu.Unlock()
	resp := commandResponse{Response: out}
	if err != nil {
		// Partial output on timeout is still useful to the caller.
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}
		observability.RecordAPIRequest(r.Method, pattern, rec.status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
