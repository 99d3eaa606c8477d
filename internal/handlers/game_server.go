package handlers

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"

	"github.com/mannasoumyadeep/fadu-backend/internal/database"
	"github.com/mannasoumyadeep/fadu-backend/internal/game"
)

// GameServer is the glue between the transport boundary and the session
// engine: it owns the registry, the connection supervisor and the
// connection table.
type GameServer struct {
	Registry   *game.Registry
	Supervisor *game.Supervisor
	Conns      *ConnManager
	Logger     *logrus.Logger
}

// NewGameServer builds the registry and supervisor on a real clock, with
// the sweep cadence and disconnect timeout overridable through
// SWEEP_INTERVAL_SEC and DISCONNECT_TIMEOUT_SEC.
func NewGameServer(logger *logrus.Logger) *GameServer {
	clock := quartz.NewReal()
	rules := game.DefaultRules()
	if v := envSeconds("SWEEP_INTERVAL_SEC"); v > 0 {
		rules.SweepInterval = v
	}
	if v := envSeconds("DISCONNECT_TIMEOUT_SEC"); v > 0 {
		rules.DisconnectTimeout = v
	}

	registry := game.NewRegistry(logger, clock, rules)
	registry.OnGameEnd = func(gameID, roomCode string, winners []string, scores map[string]int) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := database.RecordGameResults(ctx, gameID, roomCode, scores, winners); err != nil {
				logger.WithError(err).Warnf("failed to record results for room %s", roomCode)
			}
		}()
	}

	return &GameServer{
		Registry:   registry,
		Supervisor: game.NewSupervisor(registry, logger, clock, rules.SweepInterval, rules.DisconnectTimeout),
		Conns:      NewConnManager(logger),
		Logger:     logger,
	}
}

func envSeconds(key string) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0
	}
	return time.Duration(v) * time.Second
}
