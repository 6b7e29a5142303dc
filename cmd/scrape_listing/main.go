package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/raushankrgupta/vehicle-catalog-importer/app"
	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

func main() {
	scan := flag.String("scan", "", "category URL to scan for listings before scraping")
	limit := flag.Int("limit", 5, "maximum listings taken from -scan")
	flag.Parse()

	config.LoadConfig()
	lg := logger.New(config.LogLevel)
	ctx := context.Background()

	renderer := app.NewRenderer(lg)
	registry := scrapers.NewRegistry(renderer)

	urls := flag.Args()
	if *scan != "" {
		found, err := scrapers.NewScanner(renderer, registry, lg).ScanCategory(ctx, *scan, *limit)
		if err != nil {
			log.Fatalf("Failed to scan %s: %v", *scan, err)
		}
		urls = append(urls, found...)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: scrape_listing [-scan category_url [-limit n]] [listing_url ...]")
		os.Exit(2)
	}

	for _, u := range urls {
		fmt.Printf("Testing URL: %s\n", u)
		resolved, err := utils.ResolveShortenedURL(ctx, u)
		if err != nil {
			log.Printf("Failed to resolve %s: %v\n", u, err)
			resolved = u
		}
		fmt.Printf("Resolved URL: %s\n", resolved)

		scraper := registry.GetScraper(resolved)
		fmt.Printf("Scraper: %T\n", scraper)

		listing, err := scraper.ScrapeListing(ctx, resolved)
		if err != nil {
			log.Printf("Failed to scrape listing: %v\n", err)
			continue
		}

		b, _ := json.MarshalIndent(listing, "", "  ")
		fmt.Printf("Listing: %s\n", string(b))
		fmt.Println("--------------------------------------------------")
	}
}
