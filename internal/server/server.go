// Package server is the web front end: submit an expression, then evaluate it
// for measurements entered by hand or uploaded as a CSV table.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	propagate "github.com/fredc1/propagate-uncertainty-project"
	"github.com/fredc1/propagate-uncertainty-project/internal/config"
	"github.com/fredc1/propagate-uncertainty-project/internal/session"
	"github.com/fredc1/propagate-uncertainty-project/table"
)

// SessionCookie is the name of the cookie holding the session ID.
const SessionCookie = "session"

// Server serves the HTTP API. It is safe for concurrent use.
type Server struct {
	cfg      config.Config
	sessions *session.Store
	log      zerolog.Logger
	mux      *http.ServeMux
}

// New creates a server with the given settings.
func New(cfg config.Config, log zerolog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: session.New(cfg.SessionTTL),
		log:      log,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/functions", s.handleFunctions)
	s.mux.HandleFunc("/expression", s.handleExpression)
	s.mux.HandleFunc("/evaluate", s.handleEvaluate)
	s.mux.HandleFunc("/upload", s.handleUpload)
	return s
}

// ServeHTTP limits the request body, dispatches the request and logs it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &recorder{ResponseWriter: w, status: http.StatusOK}
	switch {
	case s.cfg.MaxUploadBytes <= 0:
		s.mux.ServeHTTP(rec, r)
	case r.ContentLength > s.cfg.MaxUploadBytes:
		s.fail(rec, http.StatusRequestEntityTooLarge, &http.MaxBytesError{Limit: s.cfg.MaxUploadBytes})
	default:
		r.Body = http.MaxBytesReader(rec, r.Body, s.cfg.MaxUploadBytes)
		s.mux.ServeHTTP(rec, r)
	}
	s.log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", time.Since(start)).
		Msg("request")
}

// SweepSessions removes expired sessions every interval until ctx is done.
func (s *Server) SweepSessions(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.log.Debug().Int("removed", n).Msg("swept sessions")
			}
		}
	}
}

type recorder struct {
	http.ResponseWriter
	status int
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type funcDoc struct {
	Name        string `json:"name"`
	Signature   string `json:"signature"`
	Description string `json:"description"`
}

type functionsResponse struct {
	Operators string    `json:"operators"`
	Functions []funcDoc `json:"functions"`
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	v := propagate.DefaultVocabulary()
	resp := functionsResponse{Operators: v.Operators()}
	for _, f := range v.Funcs() {
		resp.Functions = append(resp.Functions, funcDoc{Name: f.Name, Signature: f.Signature, Description: f.Description})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type expressionResponse struct {
	Expression string   `json:"expression"`
	Variables  []string `json:"variables"`
	Columns    []string `json:"columns"`
}

func (s *Server) handleExpression(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	e, err := s.expression(r.FormValue("expression"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	id := s.sessions.Create(e.Text())
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	vars := e.Variables()
	s.writeJSON(w, http.StatusOK, expressionResponse{
		Expression: e.Text(),
		Variables:  vars,
		Columns:    table.Header(vars),
	})
}

type measurementJSON struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Uncertainty string `json:"uncertainty"`
}

type evaluateRequest struct {
	Measurements []measurementJSON `json:"measurements"`
}

type evaluateResponse struct {
	Expression  string  `json:"expression"`
	Value       float64 `json:"value"`
	Uncertainty float64 `json:"uncertainty"`
	Text        string  `json:"text"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	e, ok := s.current(w, r)
	if !ok {
		return
	}
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "The request is not valid JSON."})
		return
	}
	ms := make([]propagate.Measurement, len(req.Measurements))
	for i, m := range req.Measurements {
		ms[i] = propagate.Measurement{Name: m.Name, Value: m.Value, Uncertainty: m.Uncertainty}
	}
	res, err := e.Propagate(ms)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, evaluateResponse{
		Expression:  e.Text(),
		Value:       res.Value,
		Uncertainty: res.Uncertainty,
		Text:        res.String(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	e, ok := s.current(w, r)
	if !ok {
		return
	}
	f, _, err := r.FormFile("data")
	if err != nil {
		var mb *http.MaxBytesError
		if errors.As(err, &mb) {
			s.fail(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Attach a CSV file in the \"data\" field."})
		return
	}
	defer f.Close()
	t, err := table.Read(f, e.Variables())
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	rs, err := table.Evaluate(e, t)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
	if err := table.Write(w, e, t, rs); err != nil {
		s.log.Error().Err(err).Msg("writing results")
	}
}

// expression validates text with the server's limits.
func (s *Server) expression(text string) (*propagate.Expression, error) {
	return propagate.New(text,
		propagate.MaxVariables(s.cfg.MaxVariables),
		propagate.MaxDepth(s.cfg.MaxDepth),
		propagate.Prec(s.cfg.Precision),
		propagate.WithLogger(s.log),
	)
}

// current gets the expression stored in the request's session. If there is
// none, it writes an error response.
func (s *Server) current(w http.ResponseWriter, r *http.Request) (*propagate.Expression, bool) {
	var text string
	ok := false
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			text, ok = s.sessions.Get(id)
		}
	}
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Submit an expression first."})
		return nil, false
	}
	// The core keeps no state between calls, so validate again.
	e, err := s.expression(text)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return nil, false
	}
	return e, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	var mb *http.MaxBytesError
	if errors.As(err, &mb) {
		status = http.StatusRequestEntityTooLarge
	}
	s.log.Debug().Err(err).Int("status", status).Msg("request failed")
	s.writeJSON(w, status, errorResponse{Error: Explain(err)})
}

// writeJSON encodes v before writing anything, so that a value which cannot
// be encoded becomes a 500 rather than a truncated success.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("encoding response")
		status = http.StatusInternalServerError
		b, _ = json.Marshal(errorResponse{Error: "Something went wrong: the result could not be encoded."})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(b, '\n')); err != nil {
		s.log.Error().Err(err).Msg("writing response")
	}
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}
