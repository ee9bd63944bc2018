package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/parley-hq/parley/core"
	"github.com/parley-hq/parley/provider"
	"github.com/parley-hq/parley/relay"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type conversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type conversationResponse struct {
	SessionID string                `json:"session_id"`
	Messages  []conversationMessage `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// bindChatRequest parses and validates the shared chat input contract.
// Validation happens before any session is created or touched.
func bindChatRequest(c *gin.Context) (chatRequest, bool) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return chatRequest{}, false
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "message is required"})
		return chatRequest{}, false
	}
	return req, true
}

// handleChat serves the synchronous completion endpoint.
func (s *Server) handleChat(c *gin.Context) {
	req, ok := bindChatRequest(c)
	if !ok {
		return
	}

	hist := s.store.GetOrCreate(req.SessionID)
	if _, err := hist.Append(core.RoleUser, req.Message); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	text, err := s.provider.Complete(c.Request.Context(), hist.Messages(), s.chatCfg)
	if err != nil {
		s.log.Error("completion failed", "session_id", hist.SessionID(), "error", err)
		c.JSON(completionStatus(err), errorResponse{Error: err.Error()})
		return
	}

	if _, err := hist.Append(core.RoleAssistant, text); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, chatResponse{Response: text, SessionID: hist.SessionID()})
}

// handleChatStream serves the streaming completion endpoint as
// server-sent events. Failures before the stream opens return a JSON
// error; mid-stream failures terminate the stream without a trailing frame.
func (s *Server) handleChatStream(c *gin.Context) {
	req, ok := bindChatRequest(c)
	if !ok {
		return
	}

	hist := s.store.GetOrCreate(req.SessionID)
	if _, err := hist.Append(core.RoleUser, req.Message); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cfg := s.chatCfg
	cfg.Stream = true

	stream, err := s.provider.CompleteStream(c.Request.Context(), hist.Messages(), cfg)
	if err != nil {
		s.log.Error("opening completion stream failed", "session_id", hist.SessionID(), "error", err)
		c.JSON(completionStatus(err), errorResponse{Error: err.Error()})
		return
	}

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // keep intermediaries from buffering the stream
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	events, errc := relay.Run(c.Request.Context(), stream, hist, s.log)
	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		c.Writer.Flush()
	}

	select {
	case err := <-errc:
		s.log.Warn("stream aborted", "session_id", hist.SessionID(), "error", err)
	default:
	}
}

// handleGetConversation returns the ordered role/content pairs of a session.
func (s *Server) handleGetConversation(c *gin.Context) {
	sessionID := c.Param("session_id")

	hist, err := s.store.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	msgs := hist.Messages()
	out := make([]conversationMessage, len(msgs))
	for i, m := range msgs {
		out[i] = conversationMessage{Role: string(m.Role), Content: m.Content}
	}

	c.JSON(http.StatusOK, conversationResponse{SessionID: hist.SessionID(), Messages: out})
}

// handleDeleteConversation removes a session from the registry. The core
// never evicts on its own; this is the hook for external eviction policies.
func (s *Server) handleDeleteConversation(c *gin.Context) {
	sessionID := c.Param("session_id")

	if !s.store.Delete(sessionID) {
		c.JSON(http.StatusNotFound, errorResponse{Error: fmt.Sprintf("session not found: %q", sessionID)})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

// completionStatus maps provider errors to HTTP status codes: validation
// failures are the client's fault, everything else is upstream.
func completionStatus(err error) int {
	if errors.Is(err, provider.ErrInvalidConfig) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
