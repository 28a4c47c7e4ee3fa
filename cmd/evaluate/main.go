// Package main provides a one-shot CLI that evaluates a single token
// and prints the verdict.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-token-sentinel/internal/advisor"
	"solana-token-sentinel/internal/collector"
	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/engine"
	"solana-token-sentinel/internal/providers"
)

func main() {
	// Load .env file if it exists; system env vars win.
	_ = godotenv.Load()

	// Parse flags
	mint := flag.String("mint", "", "Token mint address to evaluate (required)")
	openaiKey := flag.String("openai-api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key (empty disables AI enrichment)")
	openaiModel := flag.String("openai-model", os.Getenv("OPENAI_MODEL"), "OpenAI model override")
	coingeckoKey := flag.String("coingecko-api-key", os.Getenv("COINGECKO_API_KEY"), "CoinGecko demo API key")
	strict := flag.Bool("strict-validation", false, "Require the mint to decode to an on-curve ed25519 point")
	budget := flag.Duration("budget", engine.DefaultBudget, "Evaluation latency budget")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[evaluate] ", log.LstdFlags)

	if *mint == "" {
		logger.Fatal("--mint is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	var cgOpts []providers.CoinGeckoOption
	if *coingeckoKey != "" {
		cgOpts = append(cgOpts, providers.WithCoinGeckoAPIKey(*coingeckoKey))
	}

	coll := collector.New(collector.Options{
		Markets: []collector.MarketDataSource{
			providers.NewDexScreenerSource(),
			providers.NewCoinGeckoSource(cgOpts...),
		},
		Security: providers.NewRugCheckSource(),
		Logger:   logger,
	})

	var ai advisor.QualitativeRiskSource
	if *openaiKey != "" {
		var opts []advisor.OpenAIOption
		if *openaiModel != "" {
			opts = append(opts, advisor.WithModel(*openaiModel))
		}
		ai = advisor.NewInterpreter(advisor.NewOpenAIClient(*openaiKey, opts...), logger)
	}

	eng, err := engine.New(engine.Options{
		Collector:        coll,
		Advisor:          ai,
		Budget:           *budget,
		StrictValidation: *strict,
	})
	if err != nil {
		logger.Fatalf("create engine: %v", err)
	}

	verdict, err := eng.Evaluate(ctx, *mint, engine.EvaluateOptions{})
	if err != nil {
		logger.Fatalf("evaluate failed: %v", err)
	}

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(verdict, "", "  ")
		fmt.Println(string(output))
	} else {
		printVerdict(verdict)
	}
}

// printVerdict outputs a human-readable verdict.
func printVerdict(v *domain.Verdict) {
	fmt.Println()
	fmt.Println("=== Token Verdict ===")
	fmt.Printf("Mint:               %s\n", v.Mint)
	if v.Name != "" {
		fmt.Printf("Name:               %s (%s)\n", v.Name, v.Symbol)
	}
	fmt.Printf("Score:              %d/100\n", v.Score)
	fmt.Printf("Tier:               %s\n", v.Tier)
	fmt.Printf("Recommendation:     %s\n", v.Recommendation)
	if v.HoneypotOverride {
		fmt.Println("Honeypot Override:  YES")
	}
	fmt.Printf("Sources:            %s\n", strings.Join(v.Sources, ", "))
	fmt.Println()

	if len(v.Warnings) > 0 {
		fmt.Println("Warnings:")
		for _, w := range v.Warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	if v.AI != nil {
		fmt.Println("AI Assessment:")
		fmt.Printf("  Risk Level:       %s (confidence %d%%)\n", v.AI.RiskLevel, v.AI.Confidence)
		if v.AI.PrimaryConcern != "" {
			fmt.Printf("  Primary Concern:  %s\n", v.AI.PrimaryConcern)
		}
		for _, f := range v.AI.KeyFindings {
			fmt.Printf("  - %s\n", f)
		}
		if v.AI.Reasoning != "" {
			fmt.Printf("  Reasoning:        %s\n", v.AI.Reasoning)
		}
		fmt.Println()
	}

	fmt.Printf("Evaluated:          %s (%dms)\n",
		time.UnixMilli(v.EvaluatedAt).Format(time.RFC3339), v.ElapsedMs)
}
