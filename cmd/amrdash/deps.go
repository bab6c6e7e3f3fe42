package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/engine"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/livestate"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/messaging"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/store"
)

// deps holds the opened collaborators for one command run.
type deps struct {
	db     *store.DB
	redis  *redis.Client
	msg    *messaging.Client
	engine *engine.Engine
}

// openDeps opens the database, the optional Redis mirror and, when
// withMessaging is set and messaging is enabled, the feed client.
func openDeps(ctx context.Context, withMessaging bool) (*deps, error) {
	d := &deps{}

	db, err := store.Open(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.db = db
	logrus.Infof("amrdash: database open (%s)", cfg.Database.Driver)

	var redisStore *livestate.RedisStore
	if cfg.Redis.Enabled {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisStore = livestate.NewRedisStore(d.redis)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			logrus.Warnf("amrdash: redis not available (%v), reads fall back to SQL", err)
		} else {
			logrus.Infof("amrdash: redis connected (%s)", cfg.Redis.Address)
		}
		cancel()
	}
	live := livestate.NewManager(db, redisStore)

	if withMessaging && cfg.Messaging.Enabled {
		d.msg = messaging.NewClient(&cfg.Messaging)
		if err := d.msg.Connect(); err != nil {
			d.close()
			return nil, fmt.Errorf("messaging connect: %w", err)
		}
		logrus.Infof("amrdash: messaging connected (%s)", cfg.Messaging.Backend)
	}

	d.engine = engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: configPath,
		Live:       live,
		MsgClient:  d.msg,
		LogFunc:    logrus.Infof,
	})
	return d, nil
}

func (d *deps) close() {
	if d.msg != nil {
		d.msg.Close()
	}
	if d.redis != nil {
		d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
