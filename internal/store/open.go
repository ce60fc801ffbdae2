package store

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ukonnect/internal/config"
)

// Open returns the backend selected by cfg.Driver. db is only used by the
// sqlite backend.
func Open(cfg config.StoreConfig, db *gorm.DB) (KV, error) {
	switch cfg.Driver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisKV(rdb, ""), nil
	case "sqlite", "":
		if db == nil {
			return nil, fmt.Errorf("store: sqlite backend needs a database")
		}
		return NewGormKV(db)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
