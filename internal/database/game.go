package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// RecordGameResults persists the final outcome of a finished game: one row
// in games, one per player in game_results. Live session state is never
// written; this is an outcome archive only. No-ops when Postgres is not
// configured.
func RecordGameResults(ctx context.Context, gameID, roomCode string, scores map[string]int, winners []string) error {
	if DB == nil {
		return nil
	}

	winnerSet := make(map[string]bool, len(winners))
	for _, w := range winners {
		winnerSet[w] = true
	}

	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, room_code, status)
			VALUES ($1, $2, 'completed')
			ON CONFLICT (id) DO UPDATE SET status = 'completed'
		`
		if _, err := tx.Exec(ctx, upsertGame, gameID, roomCode); err != nil {
			return err
		}

		insertResult := `
			INSERT INTO game_results (game_id, player_id, score, did_win)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_id, player_id)
			DO UPDATE SET score = $3, did_win = $4
		`
		for playerID, score := range scores {
			if _, err := tx.Exec(ctx, insertResult, gameID, playerID, score, winnerSet[playerID]); err != nil {
				return err
			}
		}
		return nil
	})
}
