package main

import (
	"log"
	"net/http"
	"os"

	"github.com/kdimtricp/tvguide/internal/api"
	"github.com/kdimtricp/tvguide/internal/config"
	"github.com/kdimtricp/tvguide/internal/fetch"
	"github.com/kdimtricp/tvguide/internal/guide"
	"github.com/kdimtricp/tvguide/internal/source"
)

func main() {
	cfg, err := config.Load(os.Getenv("TVGUIDE_CONFIG"))
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	sources := buildSources(cfg)
	orchestrator := fetch.NewOrchestrator(sources, cfg.SourceTimeout())

	service := guide.NewService(orchestrator, guide.Config{
		Country:      cfg.Country,
		MinAgreement: cfg.MinAgreement,
		PrimeCutoff:  cfg.PrimeClock(),
	})

	app := &api.App{
		Guide: service,
		Name:  cfg.Name,
	}

	router := api.NewRouter(app)

	log.Printf("Server starting on %s", cfg.Addr)
	log.Printf("Country: %s", cfg.Country)
	log.Printf("Agreement threshold: %d of %d sources", cfg.MinAgreement, len(sources))
	log.Printf("Prime time cutoff: %s", cfg.PrimeClock())

	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatal(err)
	}
}

func buildSources(cfg config.Config) []source.Source {
	return []source.Source{
		source.NewTVMaze(cfg.Sources.TVMazeURL),
		source.NewCommunityFeed(cfg.Sources.CommunityFeedURL),
		source.NewMirrorFeed(cfg.Sources.MirrorFeedURLs),
		source.NewScraper(cfg.Sources.NowPageURL, cfg.Sources.PrimePageURL, cfg.DeniedChannels, cfg.PrimeClock()),
	}
}
