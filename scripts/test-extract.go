package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gadsdencode/Podster/internal/config"
	"github.com/gadsdencode/Podster/internal/services/extractor"
	"github.com/gadsdencode/Podster/internal/services/whisper"
	"github.com/gadsdencode/Podster/internal/services/youtube"
)

func main() {
	fmt.Println("Extraction Chain Test")
	fmt.Println("=====================")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Check if the Data API key is configured
	if cfg.YouTube.DataAPIKey == "" {
		fmt.Println("YOUTUBE_DATA_API_KEY not set - the authenticated captions strategy will be skipped")
		fmt.Println("Get a key from https://console.cloud.google.com to enable Data API caption downloads")
	}

	url := "https://www.youtube.com/watch?v=jNQXAC9IVRw"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	// Create YouTube clients
	ytClient := youtube.NewClient(cfg)
	videoID, err := ytClient.ParseYouTubeURL(url)
	if err != nil {
		log.Fatalf("Failed to parse URL: %v", err)
	}

	fmt.Printf("URL: %s\n", url)
	fmt.Printf("Video ID: %s\n", videoID)
	fmt.Println()

	chain := extractor.NewChain(
		extractor.NewAPIStrategy(youtube.NewTranscriptClient(&cfg.YouTube)),
		extractor.NewDataAPIStrategy(youtube.NewDataAPIClient(&cfg.YouTube)),
		extractor.NewScrapeStrategy(&cfg.YouTube),
		extractor.NewAudioStrategy(ytClient, whisper.NewClient(&cfg.Whisper), cfg.Whisper.Quality),
	)

	// Run the chain
	fmt.Println("Attempting extraction...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Extract.ExtractionTimeout)
	defer cancel()

	result, err := chain.Run(ctx, videoID)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	fmt.Println("Extraction successful!")
	fmt.Printf("Method: %s\n", result.Method)

	preview := result.Text
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	fmt.Printf("Text (%d chars): %s\n", len(result.Text), preview)
}
