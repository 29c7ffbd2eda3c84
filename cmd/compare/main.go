package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"sjsage522/pricepeek/config"
	"sjsage522/pricepeek/internal"
	"sjsage522/pricepeek/internal/product"
	"sjsage522/pricepeek/logger"

	"github.com/joho/godotenv"
)

func main() {
	historyArg := flag.String("history", "", "print the price history of this snapshot ID instead of comparing")
	daysArg := flag.String("days", "30", "history window in days (1-90)")
	sentimentArg := flag.Bool("sentiment", false, "request review sentiment for each URL")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] url [url...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	godotenv.Load()
	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var result interface{}

	switch {
	case *sentimentArg:
		var results []product.SentimentResult
		for _, url := range flag.Args() {
			results = append(results, product.AnalyzeSentiment(url))
		}
		result = results

	default:
		if *historyArg == "" && flag.NArg() == 0 {
			flag.Usage()
			os.Exit(2)
		}

		deps, err := internal.NewDependencies(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize services")
		}
		defer deps.Cleanup()
		pipeline := deps.Pipeline(cfg)

		if *historyArg != "" {
			result, err = pipeline.History.History(ctx, *historyArg, product.ParseDays(*daysArg))
		} else {
			result, err = pipeline.Comparator.Compare(ctx, flag.Args())
		}
		if err != nil {
			deps.Cleanup()
			log.Fatal().Err(err).Msg("Request failed")
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("Failed to write result")
	}
}
