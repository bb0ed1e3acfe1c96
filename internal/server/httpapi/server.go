// Package httpapi exposes the LevelVault JSON API over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/morlovs/levelvault/internal/diag"
	"github.com/morlovs/levelvault/internal/errs"
	"github.com/morlovs/levelvault/internal/model"
	"github.com/morlovs/levelvault/internal/ready"
	"github.com/morlovs/levelvault/internal/service"
)

const maxBodyBytes = 2 << 20

// Server wires services into HTTP handlers. Every data handler waits on the
// readiness gate before touching the store; the client sees either a JSON
// success payload or an {"error": "..."} body, always with status 200, which
// is the protocol the game client speaks.
type Server struct {
	auth service.AuthService
	sync service.SyncService
	gate *ready.Gate
	diag *diag.Buffer
	log  *zap.Logger
}

// New constructs the API server with injected collaborators.
func New(auth service.AuthService, sync service.SyncService, gate *ready.Gate, d *diag.Buffer, log *zap.Logger) *Server {
	return &Server{auth: auth, sync: sync, gate: gate, diag: d, log: log}
}

// Handler returns the routed handler with logging and panic recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDiagnostics)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /sync", s.handleSync)
	mux.HandleFunc("POST /load", s.handleLoad)
	mux.HandleFunc("POST /getlevels", s.handleGetLevels)
	return Recover(s.log)(Logging(s.log)(mux))
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type playerDataRequest struct {
	PlayerData model.Profile `json:"playerData"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// fail records the failure once in the diagnostic log and converts it to the
// JSON error-string response.
func (s *Server) fail(w http.ResponseWriter, message string, detail error) {
	writeJSON(w, http.StatusOK, errorResponse{Error: s.diag.Error(message, detail)})
}

// storeFailure maps a wrapped store error to the protocol's per-operation
// error string.
func (s *Server) storeFailure(w http.ResponseWriter, err error) {
	message := "Database error!"
	var op *errs.OpError
	if errors.As(err, &op) {
		switch op.Op {
		case errs.OpUserQuery:
			message = "Database user query error!"
		case errs.OpUserCreate:
			message = "Database user creation error!"
		case errs.OpUserUpdate:
			message = "Database user update error!"
		case errs.OpLevelPublish:
			message = "Database public level update error!"
		case errs.OpLevelList:
			message = "Database public levels query error!"
		}
	}
	if errors.Is(err, errs.ErrStoreUnavailable) {
		message = "Database connection failed!"
	}
	s.fail(w, message, err)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.AwaitReady(r.Context()); err != nil {
		s.storeFailure(w, err)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, "Invalid request body!", err)
		return
	}
	switch err := s.auth.Login(r.Context(), req.Username, req.Password, remoteIP(r)); {
	case err == nil:
		writeJSON(w, http.StatusOK, struct{}{})
	case errors.Is(err, errs.ErrNotFound):
		s.fail(w, "Invalid username!", nil)
	case errors.Is(err, errs.ErrUnauthorized):
		s.fail(w, "Invalid password!", nil)
	case errors.Is(err, errs.ErrRateLimited):
		s.fail(w, "Too many login attempts!", nil)
	default:
		s.storeFailure(w, err)
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.AwaitReady(r.Context()); err != nil {
		s.storeFailure(w, err)
		return
	}
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, "Invalid request body!", err)
		return
	}
	switch err := s.auth.Signup(r.Context(), req.Username, req.Password); {
	case err == nil:
		writeJSON(w, http.StatusOK, struct{}{})
	case errors.Is(err, errs.ErrAlreadyExists):
		s.fail(w, "Username already exists!", nil)
	default:
		s.storeFailure(w, err)
	}
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.AwaitReady(r.Context()); err != nil {
		s.storeFailure(w, err)
		return
	}
	var req playerDataRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, "Invalid request body!", err)
		return
	}
	echoed, _, err := s.sync.Sync(r.Context(), req.PlayerData)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, playerDataRequest{PlayerData: echoed})
	case errors.Is(err, errs.ErrNotFound):
		s.fail(w, "Username not found!", nil)
	case errors.Is(err, errs.ErrUnauthorized):
		s.fail(w, "Password does not match!", nil)
	case errors.Is(err, errs.ErrBatchTooLarge):
		s.fail(w, "Too many levels!", err)
	default:
		s.storeFailure(w, err)
	}
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.AwaitReady(r.Context()); err != nil {
		s.storeFailure(w, err)
		return
	}
	var req playerDataRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, "Invalid request body!", err)
		return
	}
	stored, err := s.sync.Load(r.Context(), req.PlayerData)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, playerDataRequest{PlayerData: stored})
	case errors.Is(err, errs.ErrNotFound):
		s.fail(w, "Username not found!", nil)
	case errors.Is(err, errs.ErrUnauthorized):
		s.fail(w, "Password does not match!", nil)
	default:
		s.storeFailure(w, err)
	}
}

func (s *Server) handleGetLevels(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.AwaitReady(r.Context()); err != nil {
		s.storeFailure(w, err)
		return
	}
	levels, err := s.sync.ListLevels(r.Context())
	if err != nil {
		s.storeFailure(w, err)
		return
	}
	if levels == nil {
		levels = []model.Level{}
	}
	writeJSON(w, http.StatusOK, struct {
		Levels []model.Level `json:"levels"`
	}{Levels: levels})
}

// handleDiagnostics renders the readiness state and the diagnostic log as
// preformatted text. Not part of the game protocol.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<pre>Database status: %s\nLogs:\n%s</pre>",
		s.gate.State(), strings.Join(s.diag.Snapshot(), "\n"))
}
