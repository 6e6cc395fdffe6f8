package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/llm"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/observability"
)

const maxRequestBody = 1 << 20

// chatPayload mirrors models.ChatRequest but tells a missing message apart
// from an empty one.
type chatPayload struct {
	Message *string `json:"message"`
	Model   string  `json:"model"`
}

func decodeChatRequest(r *http.Request) (models.ChatRequest, error) {
	var payload chatPayload
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&payload); err != nil {
		return models.ChatRequest{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	if payload.Message == nil {
		return models.ChatRequest{}, errors.New("field 'message' is required")
	}
	return models.ChatRequest{Message: *payload.Message, Model: strings.TrimSpace(payload.Model)}, nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.exchange(w, r, RouteChat, func(ctx context.Context, req models.ChatRequest) (string, error) {
		return s.completer.Complete(ctx, req.Model, llm.UserPrompt(req.Message))
	})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	s.exchange(w, r, RouteAgent, func(ctx context.Context, req models.ChatRequest) (string, error) {
		res, err := s.agent.Run(ctx, req.Model, req.Message)
		observability.SetAttributes(ctx, observability.AttrIntent.Bool(res.Intent))
		return res.Reply, err
	})
}

// exchange runs the shared request pipeline: decode, key check, traced
// upstream call, reply.
func (s *Server) exchange(w http.ResponseWriter, r *http.Request, route string, run func(context.Context, models.ChatRequest) (string, error)) {
	req, err := decodeChatRequest(r)
	if err != nil {
		observability.RecordRequest(route, "bad_request")
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Model == "" {
		req.Model = s.cfg.DefaultModel
	}

	if s.completer == nil {
		observability.RecordRequest(route, "missing_key")
		respondJSON(w, http.StatusOK, models.ChatResponse{Reply: MissingKeyReply})
		return
	}

	ctx, span := observability.StartSpan(r.Context(), observability.SpanChatbotInteraction)
	defer span.End()
	observability.SetAttributes(ctx,
		observability.AttrRoute.String(route),
		observability.AttrModel.String(req.Model),
		observability.AttrInputLength.Int(len(req.Message)),
	)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	start := time.Now()
	reply, err := run(ctx, req)
	elapsed := time.Since(start).Seconds()
	observability.RecordUpstreamLatency(route, elapsed)

	logger := s.logger.WithContext(ctx)
	if err != nil {
		outcome := apierrors.Kind(err)
		observability.RecordError(ctx, err)
		observability.SetAttributes(ctx, observability.AttrOutcome.String(outcome))
		observability.RecordRequest(route, outcome)
		logger.LogUpstreamCall(route, req.Model, outcome, elapsed)
		respondJSON(w, http.StatusOK, models.ChatResponse{Reply: llm.DescribeError(err)})
		return
	}

	observability.SetAttributes(ctx,
		observability.AttrOutcome.String("ok"),
		observability.AttrOutputLength.Int(len(reply)),
	)
	observability.RecordRequest(route, "ok")
	logger.LogUpstreamCall(route, req.Model, "ok", elapsed)
	respondJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"upstream":   s.completer != nil,
		"model":      s.cfg.DefaultModel,
		"checked_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{
		Error:  err.Error(),
		Status: status,
	})
}
