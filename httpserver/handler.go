package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cleverty/endpoint-provisioner/api"
	"github.com/cleverty/endpoint-provisioner/interfaces"
	"github.com/cleverty/endpoint-provisioner/orchestrator"
	"github.com/cleverty/endpoint-provisioner/status"
	"github.com/go-chi/chi/v5"
)

// maxBodySize is the maximum allowed request body size (64KB).
const maxBodySize = 64 * 1024

// Dispatcher runs triggers.
type Dispatcher interface {
	Dispatch(ctx context.Context, t interfaces.Trigger) orchestrator.Result
}

// Querier answers status queries.
type Querier interface {
	Query(ctx context.Context, target string) []status.Row
}

// RequestError provides structured error information for HTTP responses.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

type Handler struct {
	dispatcher Dispatcher
	querier    Querier
	log        *slog.Logger
}

func NewHandler(dispatcher Dispatcher, querier Querier, log *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		querier:    querier,
		log:        log,
	}
}

// HandleTrigger parses and dispatches one trigger.
//
// URL format: POST /api/trigger/{command}
//
// Dispatched triggers answer 200 with a TriggerResponse whose ok field tells
// whether the command succeeded, except for rejected parameters which answer
// 400 with the same body.
func (h *Handler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	trigger, err := h.parseTrigger(r)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			h.writeError(w, reqErr.StatusCode, reqErr.Err)
			return
		}
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	res := h.dispatcher.Dispatch(r.Context(), trigger)
	resp, err := api.NewTriggerResponse(res)
	if err != nil {
		h.log.Error("Failed to encode trigger result", slog.String("triggerID", trigger.ID), "err", err)
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	code := http.StatusOK
	if errors.Is(res.Err, interfaces.ErrInvalidInput) {
		code = http.StatusBadRequest
	}
	h.writeJSON(w, code, resp)
}

func (h *Handler) parseTrigger(r *http.Request) (interfaces.Trigger, error) {
	cmd, err := interfaces.ParseCommand(chi.URLParam(r, "command"))
	if err != nil {
		return interfaces.Trigger{}, &RequestError{StatusCode: http.StatusNotFound, Err: err}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return interfaces.Trigger{}, &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf("failed to read request body: %w", err)}
	}
	if len(body) > maxBodySize {
		return interfaces.Trigger{}, &RequestError{StatusCode: http.StatusRequestEntityTooLarge, Err: errors.New("request body too large")}
	}

	var req api.TriggerRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return interfaces.Trigger{}, &RequestError{StatusCode: http.StatusBadRequest, Err: fmt.Errorf("invalid request body: %w", err)}
		}
	}

	return interfaces.NewTrigger(cmd, req.Params), nil
}

// HandleQuery answers a status query.
//
// URL format: GET /api/query/{target}
//
// Unknown targets answer 200 with an empty array.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	rows := h.querier.Query(r.Context(), chi.URLParam(r, "target"))
	if rows == nil {
		rows = []status.Row{}
	}
	h.writeJSON(w, http.StatusOK, api.QueryResponse(rows))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to write response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, err error) {
	h.writeJSON(w, code, api.ErrorResponse{Error: err.Error()})
}
