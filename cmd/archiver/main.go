package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/raushankrgupta/vehicle-catalog-importer/app"
	"github.com/raushankrgupta/vehicle-catalog-importer/archive"
	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

func main() {
	config.LoadConfig()
	lg := logger.New(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := utils.InitS3(ctx); err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}
	st, err := app.OpenStore(ctx, lg)
	if err != nil {
		log.Fatalf("Failed to open catalog store: %v", err)
	}
	defer st.Close(context.Background())

	nc, err := app.ConnectNATS()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer nc.Close()

	w := &archive.Worker{
		Conn:     nc,
		Subject:  archive.DefaultSubject,
		Queue:    archive.DefaultQueue,
		Archiver: app.NewDirectArchiver(st, lg),
		Logger:   lg,
	}
	if err := w.Run(ctx); err != nil {
		log.Fatalf("Archiver stopped: %v", err)
	}
}
