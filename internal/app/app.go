package app

import (
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"surveybuddy/internal/cache"
	"surveybuddy/internal/repository"
)

// App bundles the storage-backed dependencies shared across services.
type App struct {
	MessageRepo   repository.MessageRepo
	SessionRepo   repository.SessionRepo
	SettingsCache cache.SettingsCache
}

// New wires the repositories and caches from live connections.
func New(db *mongo.Database, rdb *redis.Client) *App {
	return &App{
		MessageRepo:   repository.NewMessageRepo(db),
		SessionRepo:   repository.NewSessionRepo(db),
		SettingsCache: cache.NewSettingsCache(rdb),
	}
}
