package config

import (
	"log/slog"

	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps holds all infrastructure dependencies for building the app and services.
type Deps struct {
	Uow     repository.UnitOfWork
	Queue   queue.Queue
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Config  *App
	// DB and Redis are kept so the process can close them on shutdown.
	DB    *gorm.DB
	Redis *redis.Client
}
