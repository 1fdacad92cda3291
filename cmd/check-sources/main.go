package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kdimtricp/tvguide/internal/config"
	"github.com/kdimtricp/tvguide/internal/consensus"
	"github.com/kdimtricp/tvguide/internal/fetch"
	"github.com/kdimtricp/tvguide/internal/guide"
	"github.com/kdimtricp/tvguide/internal/models"
	"github.com/kdimtricp/tvguide/internal/source"
)

func main() {
	cfg, err := config.Load(os.Getenv("TVGUIDE_CONFIG"))
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	fmt.Println("🔍 Checking TV Guide Sources")
	fmt.Println("============================")
	fmt.Printf("Country: %s, agreement threshold: %d\n\n", cfg.Country, cfg.MinAgreement)

	sources := []source.Source{
		source.NewTVMaze(cfg.Sources.TVMazeURL),
		source.NewCommunityFeed(cfg.Sources.CommunityFeedURL),
		source.NewMirrorFeed(cfg.Sources.MirrorFeedURLs),
		source.NewScraper(cfg.Sources.NowPageURL, cfg.Sources.PrimePageURL, cfg.DeniedChannels, cfg.PrimeClock()),
	}

	orchestrator := fetch.NewOrchestrator(sources, cfg.SourceTimeout())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	results := orchestrator.FetchAll(ctx, cfg.Country, time.Now())

	var lists [][]models.ProgramEntry
	for _, result := range results {
		if result.Failed() {
			fmt.Printf("❌ %-10s %v\n", result.Source, result.Err)
			continue
		}
		fmt.Printf("✅ %-10s %d entries\n", result.Source, len(result.Entries))
		lists = append(lists, result.Entries)
	}

	merged := consensus.Build(lists, cfg.MinAgreement)
	fmt.Printf("\n📺 Merged schedule: %d entries\n", len(merged))

	service := guide.NewService(orchestrator, guide.Config{
		Country:      cfg.Country,
		MinAgreement: cfg.MinAgreement,
		PrimeCutoff:  cfg.PrimeClock(),
	})
	service.EnsureFresh(ctx, time.Now())

	if airing := service.NowAiring(time.Now()); len(airing) > 0 {
		fmt.Printf("▶️  Now: %s (%s)\n", airing[0].Title, airing[0].Channel)
	} else {
		fmt.Println("▶️  Now: no data")
	}

	prime := service.PrimeTime()
	fmt.Printf("🌙 Prime time entries: %d\n", len(prime))
	for i, entry := range prime {
		if i >= 5 {
			fmt.Println("   ...")
			break
		}
		fmt.Printf("   %s  %s (%s)\n", entry.Airtime, entry.Title, entry.Channel)
	}
}
