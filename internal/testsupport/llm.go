package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// LLMReply is one canned response from an LLMServer.
type LLMReply struct {
	Status  int
	Content string
	Body    string
}

// LLMServer is a chat-completion endpoint that records prompts and answers
// from a queue of replies. When the queue is empty it echoes "OK".
type LLMServer struct {
	*httptest.Server

	mu      sync.Mutex
	prompts []string
	replies []LLMReply
}

// NewLLMServer starts a server and registers cleanup.
func NewLLMServer(t testing.TB, replies ...LLMReply) *LLMServer {
	t.Helper()

	srv := &LLMServer{replies: replies}
	srv.Server = httptest.NewServer(http.HandlerFunc(srv.handle))
	t.Cleanup(srv.Close)
	return srv
}

// Enqueue appends replies.
func (s *LLMServer) Enqueue(replies ...LLMReply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// Prompts returns the user messages received so far.
func (s *LLMServer) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func (s *LLMServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	_ = json.Unmarshal(body, &req)

	s.mu.Lock()
	if len(req.Messages) > 0 {
		s.prompts = append(s.prompts, req.Messages[0].Content)
	}
	reply := LLMReply{Content: "OK"}
	if len(s.replies) > 0 {
		reply = s.replies[0]
		s.replies = s.replies[1:]
	}
	s.mu.Unlock()

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if reply.Body != "" {
		_, _ = io.WriteString(w, reply.Body)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{{
			"message":       map[string]any{"content": reply.Content},
			"finish_reason": "stop",
		}},
	})
}
