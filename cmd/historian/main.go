// cmd/historian/main.go is an asynchronous historian service that pops
// action records from the Redis journal queue and persists them to
// PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mannasoumyadeep/fadu-backend/internal/cache"
	"github.com/mannasoumyadeep/fadu-backend/internal/database"
)

func main() {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	if err := cache.ConnectRedis(); err != nil {
		logger.Fatalf("historian requires Redis: %v", err)
	}
	if err := database.ConnectDB(); err != nil {
		logger.Fatalf("historian requires Postgres: %v", err)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		cancel()
	}()

	logger.Infof("fadu-historian started, draining queue %q", cache.QueueName())
	drainQueue(ctx, logger)
	logger.Info("fadu-historian shutting down")
}

// drainQueue BLPops records off the journal queue until the context is
// canceled, inserting one row per action.
func drainQueue(ctx context.Context, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// 3-second timeout so context cancellation is picked up promptly.
		res, err := cache.Rdb.BLPop(ctx, 3*time.Second, cache.QueueName()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			logger.WithError(err).Error("BLPop failed")
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var record cache.ActionRecord
		if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
			logger.WithError(err).Warn("invalid action record, skipping")
			continue
		}
		if err := insertAction(ctx, record); err != nil {
			logger.WithError(err).Errorf("failed to persist action %d for room %s", record.ActionIndex, record.RoomCode)
		}
	}
}

func insertAction(ctx context.Context, record cache.ActionRecord) error {
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO room_actions (game_id, room_code, action_index, player_id, action_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, to_timestamp($7 / 1000.0))
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	_, err = database.DB.Exec(ctx, q,
		record.GameID, record.RoomCode, record.ActionIndex,
		record.PlayerID, record.ActionType, payload, record.Timestamp,
	)
	return err
}
