package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/geocoding"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/postgres"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/config"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/workflows"
)

func main() {
	cfg, err := config.Load("ijar-alerts")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	geocoder := geocoding.New(cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey, cfg.Geocoding.Timeout())
	resolver := usecases.NewGeocodeService(geocoder, nil)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.DestinationAlertWorkflow)
	w.RegisterActivity(&workflows.AlertActivities{
		Destinations: postgres.NewDestinationRepo(db),
		Resolver:     resolver,
		// Notifier stays nil until a push provider is wired in.
	})

	log.Println("destination alert worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
