package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/postgres"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/adapters/valkey"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Properties   *usecases.PropertyService
	Destinations *usecases.DestinationService
	Commutes     *usecases.CommuteService
	History      *usecases.SearchHistoryService
	Resolver     usecases.Resolver
	Debounce     time.Duration // debounce delay for live search over WebSocket
	NATS         *nats.Conn
	DB           *postgres.DB
	Cache        *valkey.Cache
}
