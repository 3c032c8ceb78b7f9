package loamy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/loamy/internal/loamy/config"
	"github.com/kiosk404/loamy/internal/loamy/service/agents"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/service/runtime"
	"github.com/kiosk404/loamy/internal/loamy/service/llm"
	"github.com/kiosk404/loamy/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type apiServer struct {
	cfg    *config.Config
	engine *gin.Engine
	http   *http.Server

	llmModule    *llm.Module
	agentsModule *agents.Module
}

type preparedAPIServer struct {
	*apiServer
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	ctx := context.Background()

	// Initialize LLM module (K8S-style: Config → Complete → New).
	llmModule, err := cfg.LLMConfig().Complete().New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM module: %w", err)
	}
	logger.Info("[Loamy] LLM module initialized (model=%s)", llmModule.Model)

	agentsCfg, err := cfg.AgentsConfig()
	if err != nil {
		return nil, err
	}
	agentsModule, err := agentsCfg.Complete().New(ctx, agents.Dependencies{
		Backend: runtime.NewChatModelBackend(llmModule.ChatModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Agents module: %w", err)
	}
	logger.Info("[Loamy] Agents module initialized successfully")

	return newAPIServer(cfg, llmModule, agentsModule), nil
}

func newAPIServer(cfg *config.Config, llmModule *llm.Module, agentsModule *agents.Module) *apiServer {
	gin.SetMode(cfg.ServerOptions.Mode)
	engine := gin.New()

	return &apiServer{
		cfg:    cfg,
		engine: engine,
		http: &http.Server{
			Addr:              cfg.ServerOptions.Address(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		llmModule:    llmModule,
		agentsModule: agentsModule,
	}
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	initRouter(s.engine, &routerDeps{
		runner:          s.agentsModule.Orchestrator,
		maxHistoryTurns: s.cfg.AgentOptions.MaxHistoryTurns,
		staticDir:       s.cfg.ServerOptions.StaticDir,
		enableProfiling: s.cfg.ServerOptions.EnableProfiling,
		enableMetrics:   s.cfg.ServerOptions.EnableMetrics,
	})
	return preparedAPIServer{s}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s preparedAPIServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Loamy] start to listening the incoming requests on http address: %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
		logger.Info("[Loamy] shutting down the http server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.close()
	return err
}

func (s *apiServer) close() {
	if s.agentsModule != nil {
		if err := s.agentsModule.Close(); err != nil {
			logger.Warn("[Loamy] close agents module: %v", err)
		}
	}
	logger.Info("[Loamy] server exited")
}
