// Package devserver runs a local in-memory record store that speaks the same
// action-dispatch protocol as the production store. Field crews and tests use
// it to exercise the full submit, update, and edit-load loop without network
// access or store credentials.
package devserver

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// Server is the in-memory record store.
type Server struct {
	accessKey string

	mu      sync.RWMutex
	records map[string]json.RawMessage
}

// NewServer creates a dev record store. An empty access key disables the key
// check.
func NewServer(accessKey string) *Server {
	return &Server{
		accessKey: accessKey,
		records:   make(map[string]json.RawMessage),
	}
}

// Router builds the gin engine. The store dispatches on the action query
// parameter of a single endpoint, mirroring the production protocol.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/exec", s.handle)
	router.POST("/exec", s.handle)
	router.HEAD("/exec", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

// Count reports how many records the store holds.
func (s *Server) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns a stored record payload, or nil when absent.
func (s *Server) Get(id string) json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

func (s *Server) handle(c *gin.Context) {
	if s.accessKey != "" && c.Query("key") != s.accessKey {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "invalid access key"})
		return
	}

	switch c.Query("action") {
	case "get":
		s.handleGet(c)
	case "submit":
		s.handleSubmit(c)
	case "update":
		s.handleUpdate(c)
	default:
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "unknown action"})
	}
}

func (s *Server) handleGet(c *gin.Context) {
	id := c.Query("id")

	s.mu.RLock()
	payload, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "unknown submission id"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "submissionId": id, "payload": payload})
}

func (s *Server) handleSubmit(c *gin.Context) {
	id, payload, ok := s.readSubmission(c)
	if !ok {
		return
	}

	s.mu.Lock()
	s.records[id] = payload
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"ok": true, "submissionId": id})
}

func (s *Server) handleUpdate(c *gin.Context) {
	target := c.Query("id")
	if target == "" {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "update requires an id"})
		return
	}

	s.mu.RLock()
	_, exists := s.records[target]
	s.mu.RUnlock()
	if !exists {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "unknown submission id"})
		return
	}

	id, payload, ok := s.readSubmission(c)
	if !ok {
		return
	}
	if id != target {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "payload id does not match update target"})
		return
	}

	s.mu.Lock()
	s.records[target] = payload
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"ok": true, "submissionId": target})
}

// readSubmission reads the body as JSON regardless of content type; the real
// clients post JSON with a plain-text content type to dodge preflight.
func (s *Server) readSubmission(c *gin.Context) (string, json.RawMessage, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "unreadable body"})
		return "", nil, false
	}

	var envelope struct {
		SubmissionID string `json:"submissionId"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "malformed submission payload"})
		return "", nil, false
	}
	if envelope.SubmissionID == "" {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "submission payload carries no id"})
		return "", nil, false
	}

	return envelope.SubmissionID, json.RawMessage(body), true
}
