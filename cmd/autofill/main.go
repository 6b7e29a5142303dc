package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raushankrgupta/vehicle-catalog-importer/app"
	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

func main() {
	config.LoadConfig()
	file := flag.String("config", config.AutoFillCategoriesFile, "auto-fill categories YAML file")
	analyzeOnly := flag.Bool("analyze", false, "print the deficit per category and exit")
	noGenerate := flag.Bool("no-generate", false, "skip AI content generation")
	flag.Parse()

	lg := logger.New(config.LogLevel)
	ctx := context.Background()

	a, err := app.New(ctx, lg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		a.Close(closeCtx)
	}()

	af, err := a.NewAutoFill(*file)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *file, err)
	}
	if *noGenerate {
		af.Generate = false
	}

	if *analyzeOnly {
		cats, total, err := af.Analyze(ctx)
		if err != nil {
			log.Fatalf("Analyze failed: %v", err)
		}
		for _, c := range cats {
			fmt.Printf("%-30s existing=%d target=%d needed=%d\n", c.Name, c.ExistingCount, c.Target, c.NeededCount)
		}
		fmt.Printf("Total needed: %d\n", total)
		return
	}

	// The first signal stops the run cooperatively; a second one exits.
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		lg.Info("stopping after the current item; interrupt again to exit")
		af.Stop()
		<-sigs
		os.Exit(130)
	}()

	result, err := af.Run(ctx)
	if err != nil {
		log.Fatalf("Auto-fill failed: %v", err)
	}
	fmt.Print(utils.FormatAutoFillSummary(result))
}
