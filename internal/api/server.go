package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agentforge/agentforge/internal/config"
	"github.com/agentforge/agentforge/pkg/agent"
	"github.com/agentforge/agentforge/pkg/events"
	"github.com/agentforge/agentforge/pkg/ghostfolio"
	"github.com/agentforge/agentforge/pkg/memory"
	"github.com/agentforge/agentforge/pkg/tools"
	"github.com/agentforge/agentforge/pkg/verify"
)

// Server is the HTTP front end: one chat endpoint plus health and feedback.
type Server struct {
	cfg       config.Config
	agent     *agent.Agent
	verifier  *verify.Layer
	store     *memory.Store
	news      tools.NewsSource
	congress  tools.CongressSource
	bus       events.EventBus
	log       *logrus.Entry
	startedAt time.Time
	engine    *gin.Engine
}

// NewServer wires the full request path. store, news, and congress may be
// nil; the corresponding tools are simply not registered.
func NewServer(cfg config.Config, llm agent.ChatCompleter, store *memory.Store, news tools.NewsSource, congress tools.CongressSource, bus events.EventBus, logger *logrus.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		agent:     agent.New(llm, cfg.OpenAI.Model, bus, logger),
		verifier:  verify.NewLayer(logger),
		store:     store,
		news:      news,
		congress:  congress,
		bus:       bus,
		log:       logger.WithField("component", "api"),
		startedAt: time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/chat", s.handleChat)
	engine.POST("/feedback", s.handleFeedback)
	engine.GET("/health", s.handleHealth)
	s.engine = engine
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("listening")
	return s.engine.Run(addr)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatMetrics struct {
	ToolsUsed  []string             `json:"tools_used"`
	Iterations int                  `json:"iterations"`
	LatencyMS  int64                `json:"latency_ms"`
	Amended    bool                 `json:"amended"`
	Checks     []verify.CheckResult `json:"checks"`
}

type chatReply struct {
	RunID   string      `json:"run_id"`
	Content string      `json:"content"`
	Metrics chatMetrics `json:"metrics"`
}

func (s *Server) handleChat(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	runID := uuid.NewString()
	log := s.log.WithField("run_id", runID)

	// An empty message gets a prompt back rather than an error: the agent
	// should never crash on it, and eval cases probe exactly this.
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusOK, chatReply{
			RunID:   runID,
			Content: "Please enter a question about your portfolio, for example \"How is my portfolio doing?\".",
			Metrics: chatMetrics{ToolsUsed: []string{}, Checks: []verify.CheckResult{}},
		})
		return
	}

	backend := ghostfolio.NewClient(s.cfg.Ghostfolio.BaseURL, token)
	registry, err := tools.NewRegistryForRequest(tools.Deps{
		Backend:   backend,
		Store:     s.store,
		News:      s.news,
		Congress:  s.congress,
		AuthToken: token,
	})
	if err != nil {
		log.Errorf("build tool registry: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var history []memory.HistoryEntry
	if s.store != nil {
		if history, err = s.store.History(token); err != nil {
			log.Warnf("load history: %v", err)
		}
	}

	s.publish(events.EventChatStart, map[string]any{"run_id": runID})
	start := time.Now()

	result, err := s.agent.Run(c.Request.Context(), req.Message, history, registry)
	if err != nil {
		log.Errorf("agent run: %v", err)
		s.publish(events.EventChatError, map[string]any{"run_id": runID, "error": err.Error()})
		c.JSON(http.StatusBadGateway, gin.H{"error": "agent failed to produce a response"})
		return
	}

	outcome := s.verifier.Verify(result.Text, result.ToolsUsed, result.ToolOutputs)
	latency := time.Since(start)

	if s.store != nil {
		s.appendHistory(log, token, req.Message, outcome.Response)
	}

	s.publish(events.EventVerifyResult, map[string]any{"run_id": runID, "amended": outcome.Amended})
	s.publish(events.EventChatEnd, map[string]any{"run_id": runID, "tools": result.ToolsUsed})

	toolsUsed := result.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}
	c.JSON(http.StatusOK, chatReply{
		RunID:   runID,
		Content: outcome.Response,
		Metrics: chatMetrics{
			ToolsUsed:  toolsUsed,
			Iterations: result.Iterations,
			LatencyMS:  latency.Milliseconds(),
			Amended:    outcome.Amended,
			Checks:     outcome.Checks,
		},
	})
}

func (s *Server) appendHistory(log *logrus.Entry, token, message, response string) {
	now := time.Now()
	for _, entry := range []memory.HistoryEntry{
		{Role: "user", Content: message, CreatedAt: now},
		{Role: "assistant", Content: response, CreatedAt: now},
	} {
		if err := s.store.AppendHistory(token, entry); err != nil {
			log.Warnf("append history: %v", err)
		}
	}
}

type feedbackRequest struct {
	RunID   string `json:"run_id" binding:"required"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	if bearerToken(c) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id is required"})
		return
	}
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feedback store not configured"})
		return
	}

	fb := memory.Feedback{
		RunID:     req.RunID,
		Score:     float64(req.Score),
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveFeedback(fb); err != nil {
		s.log.Errorf("save feedback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save feedback"})
		return
	}
	s.publish(events.EventFeedback, map[string]any{"run_id": req.RunID, "score": req.Score})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	}
	if s.bus != nil {
		resp["events_last_hour"] = s.bus.Counts(time.Now().Add(-time.Hour))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) publish(typ events.EventType, data map[string]any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.NewEvent(typ, data))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
