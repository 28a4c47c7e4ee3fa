// Package main runs the token sentinel service:
// - HTTP API: on-demand evaluation, history, health, status
// - WebSocket feed: fresh verdicts pushed to subscribed clients
// - Rescore scheduler: periodic re-evaluation of watched tokens
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-token-sentinel/internal/advisor"
	"solana-token-sentinel/internal/collector"
	"solana-token-sentinel/internal/config"
	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/engine"
	"solana-token-sentinel/internal/momentum"
	"solana-token-sentinel/internal/observability"
	"solana-token-sentinel/internal/providers"
	"solana-token-sentinel/internal/realtime"
	"solana-token-sentinel/internal/storage"
	chstore "solana-token-sentinel/internal/storage/clickhouse"
	"solana-token-sentinel/internal/storage/memory"
	"solana-token-sentinel/internal/storage/migrations"
	pgstore "solana-token-sentinel/internal/storage/postgres"
)

// Server holds all components of the sentinel service.
type Server struct {
	listenAddr      string
	useMemory       bool
	rescoreInterval time.Duration

	engine *engine.Engine
	hub    *realtime.Hub
	runner *momentum.Runner
	logger *log.Logger

	startedAt time.Time

	// Stats
	mu          sync.Mutex
	evaluations int
	evalErrors  int
}

// allStores holds all storage implementations.
type allStores struct {
	verdictCache    storage.VerdictCache
	evaluationStore storage.EvaluationStore
	watchlistStore  storage.WatchlistStore
}

func main() {
	// Load .env file if it exists; system env vars win.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	openaiKey := flag.String("openai-api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key (empty disables AI enrichment)")
	openaiModel := flag.String("openai-model", envOr("OPENAI_MODEL", ""), "OpenAI model override")
	coingeckoKey := flag.String("coingecko-api-key", os.Getenv("COINGECKO_API_KEY"), "CoinGecko demo API key")
	stubProviders := flag.Bool("stub-providers", false, "Use stub providers instead of live APIs")
	watchlistPath := flag.String("watchlist", os.Getenv("WATCHLIST_FILE"), "YAML watchlist file to seed the rescore scheduler")
	strict := flag.Bool("strict-validation", false, "Require mints to decode to on-curve ed25519 points")
	budget := flag.Duration("budget", engine.DefaultBudget, "Per-evaluation latency budget")
	cacheTTL := flag.Duration("cache-ttl", engine.DefaultCacheTTL, "Verdict cache TTL")
	rescoreInterval := flag.Duration("rescore-interval", momentum.DefaultInterval, "Rescore scheduler poll interval")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	hub := realtime.NewHub(log.New(os.Stdout, "[realtime] ", log.LstdFlags|log.Lshortfile))

	eng, err := engine.New(engine.Options{
		Collector:        createCollector(*stubProviders, *coingeckoKey),
		Advisor:          createAdvisor(*openaiKey, *openaiModel, logger),
		Cache:            stores.verdictCache,
		History:          stores.evaluationStore,
		Publisher:        hub,
		Budget:           *budget,
		CacheTTL:         *cacheTTL,
		StrictValidation: *strict,
		Logger:           log.New(os.Stdout, "[engine] ", log.LstdFlags|log.Lshortfile),
	})
	if err != nil {
		logger.Fatalf("Failed to create engine: %v", err)
	}

	runner := momentum.NewRunner(momentum.RunnerOptions{
		Watchlist: stores.watchlistStore,
		Engine:    eng,
		Interval:  *rescoreInterval,
		Logger:    log.New(os.Stdout, "[rescore] ", log.LstdFlags|log.Lshortfile),
	})

	if *watchlistPath != "" {
		if err := seedWatchlist(ctx, runner, *watchlistPath, logger); err != nil {
			logger.Fatalf("Failed to seed watchlist: %v", err)
		}
	}

	server := &Server{
		listenAddr:      *listenAddr,
		useMemory:       *useMemory,
		rescoreInterval: *rescoreInterval,
		engine:          eng,
		hub:             hub,
		runner:          runner,
		logger:          logger,
		startedAt:       time.Now(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// envOr returns the environment variable value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			verdictCache:    memory.NewVerdictCache(),
			evaluationStore: memory.NewEvaluationStore(),
			watchlistStore:  memory.NewWatchlistStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		verdictCache:    pgstore.NewVerdictCacheStore(pool),
		watchlistStore:  pgstore.NewWatchlistStore(pool),
		evaluationStore: chstore.NewEvaluationStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// createCollector wires the signal providers in priority order.
func createCollector(stub bool, coingeckoKey string) *collector.Collector {
	logger := log.New(os.Stdout, "[collector] ", log.LstdFlags|log.Lshortfile)

	if stub {
		return collector.New(collector.Options{
			Markets:  []collector.MarketDataSource{providers.NewStubMarketSource()},
			Security: providers.NewStubSecuritySource(),
			Logger:   logger,
		})
	}

	var cgOpts []providers.CoinGeckoOption
	if coingeckoKey != "" {
		cgOpts = append(cgOpts, providers.WithCoinGeckoAPIKey(coingeckoKey))
	}

	return collector.New(collector.Options{
		// DexScreener first: fresher DEX data wins field conflicts, the
		// CoinGecko fallback fills rank and anything DexScreener lacks.
		Markets: []collector.MarketDataSource{
			providers.NewDexScreenerSource(),
			providers.NewCoinGeckoSource(cgOpts...),
		},
		Security: providers.NewRugCheckSource(),
		Logger:   logger,
	})
}

// createAdvisor builds the AI interpreter, or a noop when no key is set.
func createAdvisor(apiKey, model string, logger *log.Logger) advisor.QualitativeRiskSource {
	if apiKey == "" {
		logger.Println("No OpenAI API key, AI enrichment disabled")
		return advisor.NewNoopSource()
	}

	var opts []advisor.OpenAIOption
	if model != "" {
		opts = append(opts, advisor.WithModel(model))
	}
	client := advisor.NewOpenAIClient(apiKey, opts...)
	return advisor.NewInterpreter(client, log.New(os.Stdout, "[advisor] ", log.LstdFlags|log.Lshortfile))
}

// seedWatchlist loads the YAML watchlist and tracks every entry.
func seedWatchlist(ctx context.Context, runner *momentum.Runner, path string, logger *log.Logger) error {
	wl, err := config.LoadWatchlist(path)
	if err != nil {
		return err
	}
	for _, entry := range wl.Tokens {
		if err := runner.Track(ctx, entry.Mint, entry.Label); err != nil {
			return fmt.Errorf("track %s: %w", entry.Mint, err)
		}
	}
	logger.Printf("Seeded watchlist with %d tokens from %s", len(wl.Tokens), path)
	return nil
}

// Run starts all components and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting token sentinel...")

	go s.hub.Run(ctx)
	go s.runner.Run(ctx)

	httpServer := &http.Server{
		Addr:    s.listenAddr,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting HTTP server on %s", s.listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("HTTP shutdown error: %v", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// routes builds the HTTP mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/ws", s.hub.HandleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	return mux
}

// evaluateRequest is the POST /evaluate body.
type evaluateRequest struct {
	Mint    string `json:"mint"`
	Refresh bool   `json:"refresh"`
}

// handleEvaluate evaluates one mint. GET takes ?mint=...&refresh=1,
// POST takes a JSON body; refresh bypasses the verdict cache read.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var mint string
	var refresh bool

	switch r.Method {
	case http.MethodGet:
		mint = r.URL.Query().Get("mint")
		refresh = r.URL.Query().Get("refresh") == "1"
	case http.MethodPost:
		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		mint = req.Mint
		refresh = req.Refresh || r.URL.Query().Get("refresh") == "1"
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if mint == "" {
		writeError(w, http.StatusBadRequest, "missing mint parameter")
		return
	}

	start := time.Now()
	verdict, err := s.engine.Evaluate(r.Context(), mint, engine.EvaluateOptions{Refresh: refresh})

	s.mu.Lock()
	s.evaluations++
	if err != nil {
		s.evalErrors++
	}
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, domain.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":      "evaluation failed",
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

// handleHistory returns recent evaluation records for a mint, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mint := r.URL.Query().Get("mint")
	if mint == "" {
		writeError(w, http.StatusBadRequest, "missing mint parameter")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	records, err := s.engine.History(r.Context(), mint, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if records == nil {
		records = []*domain.EvaluationRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mint":    mint,
		"records": records,
	})
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	StorageMode     string `json:"storage_mode"`
	Evaluations     int    `json:"evaluations"`
	EvalErrors      int    `json:"eval_errors"`
	RescoreInterval string `json:"rescore_interval"`
	WSClients       int    `json:"ws_clients"`
	WSEvents        int64  `json:"ws_events"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	mode := "postgres+clickhouse"
	if s.useMemory {
		mode = "memory"
	}

	s.mu.Lock()
	evals := s.evaluations
	evalErrs := s.evalErrors
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.startedAt).String(),
		StorageMode:     mode,
		Evaluations:     evals,
		EvalErrors:      evalErrs,
		RescoreInterval: s.rescoreInterval.String(),
		WSClients:       s.hub.ClientCount(),
		WSEvents:        s.hub.TotalEvents(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
