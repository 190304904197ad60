package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/emiliopalmerini/mkanban/internal/backup"
	"github.com/emiliopalmerini/mkanban/internal/board"
	"github.com/emiliopalmerini/mkanban/internal/prompt"
)

type Server struct {
	router       *http.ServeMux
	handler      http.Handler
	port         int
	boards       *board.Service
	backups      *backup.Service
	generator    *prompt.Generator
	backupSecret string
	logger       logrus.FieldLogger
	registry     *prometheus.Registry
}

func NewServer(
	port int,
	boards *board.Service,
	backups *backup.Service,
	generator *prompt.Generator,
	backupSecret string,
	logger logrus.FieldLogger,
) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		router:       http.NewServeMux(),
		port:         port,
		boards:       boards,
		backups:      backups,
		generator:    generator,
		backupSecret: backupSecret,
		logger:       logger,
		registry:     prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.setupRoutes()
	s.handler = newInstrumentation(s.registry, logger).wrap(s.router)
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Backups and prompt generation
	s.router.HandleFunc("GET /api/backup", s.handleBackup)
	s.router.HandleFunc("POST /api/generate-prompt", s.handleGeneratePrompt)

	// Projects
	s.router.HandleFunc("GET /api/projects", s.handleListProjects)
	s.router.HandleFunc("POST /api/projects", s.handleCreateProject)
	s.router.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	s.router.HandleFunc("PATCH /api/projects/{id}", s.handleRenameProject)
	s.router.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)

	// Board
	s.router.HandleFunc("GET /api/projects/{id}/tasks", s.handleBoard)
	s.router.HandleFunc("POST /api/projects/{id}/tasks", s.handleAddTask)
	s.router.HandleFunc("PUT /api/projects/{id}/tasks", s.handleSaveBoard)
	s.router.HandleFunc("POST /api/projects/{id}/tasks/move", s.handleMoveTask)

	// Tasks
	s.router.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	s.router.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	s.router.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.port),
		Handler:     s.handler,
		ReadTimeout: 15 * time.Second,
		// Prompt generation can wait on the CLI timeout and then the API.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("port", s.port).Infof("Starting server at http://localhost:%d", s.port)

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("server shutdown error")
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil // Graceful shutdown
	}
	return err
}
