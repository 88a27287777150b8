package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bilmo5352/nsequotes/config"
	"github.com/bilmo5352/nsequotes/models"
	"github.com/bilmo5352/nsequotes/scraper"
)

// quotes-cli runs a single extraction from the command line and prints a
// summary; the full record lands in the artifact files.
func main() {
	var (
		symbol       = flag.String("symbol", "", "stock symbol to extract (required)")
		outputDir    = flag.String("output", "", "artifact output directory (default from config)")
		headless     = flag.Bool("headless", true, "run the browser headless")
		noScreenshot = flag.Bool("no-screenshot", false, "skip the screenshot artifact")
		timeout      = flag.Duration("timeout", 5*time.Minute, "overall extraction timeout")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "usage: quotes-cli -symbol SYMBOL [-output DIR] [-headless=false] [-no-screenshot]")
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Load()
	sc, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}

	takeScreenshot := !*noScreenshot
	req := &models.QuoteRequest{
		Symbol:         *symbol,
		Headless:       headless,
		TakeScreenshot: &takeScreenshot,
		OutputDir:      *outputDir,
	}
	req.Normalize()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result, err := sc.Quote(ctx, req)
	if err != nil {
		slog.Error("extraction failed", "symbol", req.Symbol, "error", err)
		if result != nil && result.Artifacts.Screenshot != "" {
			fmt.Fprintf(os.Stderr, "screenshot: %s\n", result.Artifacts.Screenshot)
		}
		os.Exit(1)
	}

	data := result.Data
	fmt.Printf("symbol:     %s\n", data.Symbol)
	if v, ok := data.Fields["last_price"]; ok {
		fmt.Printf("last price: %s\n", v)
	}
	fmt.Printf("fields:     %d\n", len(data.Fields))
	fmt.Printf("order book: %d rows (strategy: %s)\n", len(data.OrderBook), data.TableStrategy)
	if len(data.Returns) > 0 {
		fmt.Printf("returns:    %d periods\n", len(data.Returns))
	}
	if data.Degraded() {
		fmt.Printf("degraded:   %v\n", data.Diagnostics)
	}
	for _, p := range []struct{ label, path string }{
		{"screenshot", result.Artifacts.Screenshot},
		{"html", result.Artifacts.HTML},
		{"json", result.Artifacts.JSON},
	} {
		if p.path != "" {
			fmt.Printf("%-11s %s\n", p.label+":", p.path)
		}
	}
	fmt.Printf("elapsed:    %s\n", time.Since(start).Round(time.Millisecond))
}
