// Package api exposes the simulation over HTTP JSON and pushes state
// changes to websocket clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/immortaldarkveil/Symulator/internal/game"
	"github.com/immortaldarkveil/Symulator/internal/observability"
	"github.com/immortaldarkveil/Symulator/internal/orchestrator"
)

const (
	maxBodyBytes    = 1 << 16
	shutdownTimeout = 5 * time.Second
)

// Server routes HTTP requests to the orchestrator.
type Server struct {
	orch   *orchestrator.Orchestrator
	hub    *Hub
	logger *log.Logger
}

// NewServer creates the HTTP front end. hub may be nil to disable /ws.
func NewServer(orch *orchestrator.Orchestrator, hub *Hub, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{orch: orch, hub: hub, logger: logger}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("GET /metrics", observability.Handler())

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/deposit", s.handleDeposit)
	mux.HandleFunc("POST /api/operator", s.handleRegisterOperator)
	mux.HandleFunc("POST /api/tasks/{id}/accept", s.handleAcceptTask)
	mux.HandleFunc("POST /api/round", s.handleAdvanceRound)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.ServeWS)
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting HTTP server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// DepositRequest is the body of POST /api/deposit. Amount is a JSON number
// or a numeric string; anything else is rejected as an invalid amount.
type DepositRequest struct {
	VaultID string          `json:"vault_id"`
	Amount  json.RawMessage `json:"amount"`
}

// kindBadRequest labels bodies that could not be decoded.
const kindBadRequest = "BadRequest"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateView(s.orch.Snapshot()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.orch.History(r.Context())
	if err != nil {
		s.logger.Printf("history: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundRecordViews(records))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		err = s.orch.Reject("deposit", kindBadRequest, fmt.Errorf("malformed request body: %w", err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: kindBadRequest})
		return
	}

	rec, err := s.orch.Deposit(req.VaultID, parseAmount(req.Amount))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depositResultView(rec))
}

func (s *Server) handleRegisterOperator(w http.ResponseWriter, r *http.Request) {
	op, err := s.orch.RegisterOperator()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, operatorView(op))
}

func (s *Server) handleAcceptTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.orch.AcceptTask(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskView(task))
}

func (s *Server) handleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	summary, err := s.orch.AdvanceRound(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundView(summary))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateView(s.orch.Reset()))
}

// parseAmount reads a JSON number or a numeric string. Anything else,
// including a missing amount, yields NaN.
func parseAmount(raw json.RawMessage) float64 {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return v
		}
	}
	return math.NaN()
}

// StatusFor maps a command error to its HTTP status.
func StatusFor(err error) int {
	switch game.ErrorKind(err) {
	case "InvalidAmount":
		return http.StatusBadRequest
	case "VaultNotFound", "TaskNotFound":
		return http.StatusNotFound
	case "InsufficientCapital":
		return http.StatusUnprocessableEntity
	case "OperatorNotEligible":
		return http.StatusForbidden
	case "AlreadyOperator", "NotAnOperator", "NoActivity", "GameOver", "RoundInProgress":
		return http.StatusConflict
	case "Cooldown":
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), ErrorResponse{Error: err.Error(), Kind: game.ErrorKind(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
