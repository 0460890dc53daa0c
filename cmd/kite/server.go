package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kitehq/kite/internal/api"
	"github.com/kitehq/kite/internal/config"
	"github.com/kitehq/kite/internal/estimate"
	"github.com/kitehq/kite/internal/genai"
	"github.com/kitehq/kite/internal/index"
	"github.com/kitehq/kite/internal/knowledge"
	"github.com/kitehq/kite/internal/metrics"
	"github.com/kitehq/kite/internal/ollama"
	"github.com/kitehq/kite/internal/storage"
	"github.com/kitehq/kite/internal/triage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kite server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show kite system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "kite version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Pick the generation backend. The hosted backend is used only when
	// an API key is configured; otherwise generation goes through the
	// local Ollama daemon, and degrades to keyword rules when that is
	// down too.
	ollamaClient := ollama.New(cfg.Ollama.BaseURL)
	var adapter *genai.Adapter
	if cfg.OpenAI.APIKey != "" {
		adapter = genai.New(genai.NewOpenAIGenerator(cfg.OpenAI.APIKey, ""), cfg.OpenAI.Model)
		slog.Info("using hosted generation backend", "model", cfg.OpenAI.Model)
	} else {
		adapter = genai.New(ollamaClient, cfg.Ollama.Model)
		if !ollamaClient.IsRunning(ctx) {
			printWarning("Ollama is not reachable at %s; classification will use keyword rules", cfg.Ollama.BaseURL)
		} else if !ollamaClient.HasModel(ctx, cfg.Ollama.Model) {
			printWarning("model %q not found in Ollama; pull it with: ollama pull %s", cfg.Ollama.Model, cfg.Ollama.Model)
		}
	}

	// Build the search index and load the corpus.
	idx := index.NewLexical()
	idx.SetThreshold(cfg.Search.Threshold)
	corpus := knowledge.NewCorpus(store, idx)
	if err := corpus.Load(); err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	if cfg.Storage.SampleData {
		if err := corpus.Seed(knowledge.SampleDocuments()); err != nil {
			return fmt.Errorf("seeding sample data: %w", err)
		}
	}
	slog.Info("knowledge base ready", "documents", corpus.Size())

	// Dense mode embeds the corpus at startup. Documents added while
	// running become searchable after a restart, same as CLI ingestion.
	var searcher index.Searcher = idx
	if strings.EqualFold(cfg.Search.Mode, "dense") {
		var embedder index.Embedder
		if cfg.OpenAI.APIKey != "" {
			embedder = genai.NewOpenAIEmbedder(cfg.OpenAI.APIKey, "", cfg.OpenAI.EmbedModel)
		} else {
			embedder = genai.NewOllamaEmbedder(ollamaClient, cfg.Ollama.EmbedModel)
		}
		dense := index.NewDense(embedder, cfg.Search.Threshold)
		if err := dense.Reindex(ctx, corpus.Documents()); err != nil {
			slog.Warn("dense index unavailable, using lexical search", "error", err)
		} else {
			searcher = dense
			slog.Info("dense index ready", "model", embedder.ModelVersion())
		}
	}

	// Metrics: in-memory collector for the dashboard plus Prometheus
	// exposition.
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector()
	sink := metrics.Fanout(collector, metrics.NewPrometheus(reg))

	knowledgeSvc := knowledge.NewService(searcher, adapter, sink)
	triageSvc := triage.NewService(adapter, estimate.New(), triage.SampleIncidents(), sink)

	handler := api.NewHandler(api.Deps{
		Knowledge: knowledgeSvc,
		Triage:    triageSvc,
		Corpus:    corpus,
		Store:     store,
		Collector: collector,
		Sink:      sink,
		AI:        ollamaClient,
		APIKey:    cfg.Server.APIKey,
		Prom:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server over stdio alongside the HTTP listener.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Knowledge: knowledgeSvc,
		Triage:    triageSvc,
		Corpus:    corpus,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "kite listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusOK:
			printStatus("Server", "running on port %d", cfg.Server.Port)
		case http.StatusServiceUnavailable:
			printStatus("Server", "degraded on port %d", cfg.Server.Port)
		default:
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	ollamaClient := ollama.New(cfg.Ollama.BaseURL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if ollamaClient.IsRunning(ctx) {
		printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
	} else {
		printStatus("Ollama", "not running")
	}

	printStatus("Model", "%s", cfg.Ollama.Model)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
