package service

import (
	"context"

	"github.com/ericogr/mtcg/internal/dedupe"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/keys"
)

type ScoreRepo interface {
	TopPlayers(ctx context.Context, limit int) ([]game.User, error)
	PlayerStats(ctx context.Context, username string) (*game.PlayerStats, error)
}

// Scoreboard returns players ordered by rating. Concurrent identical
// requests share one query.
func Scoreboard(ctx context.Context, repo ScoreRepo, limit int) ([]game.User, error) {
	v, err, _ := dedupe.ScoreboardGroup.Do(keys.Scoreboard(limit), func() (interface{}, error) {
		return repo.TopPlayers(ctx, limit)
	})
	if err != nil {
		return nil, storeError("load scoreboard", err)
	}
	return v.([]game.User), nil
}

func Stats(ctx context.Context, repo ScoreRepo, username string) (*game.PlayerStats, error) {
	st, err := repo.PlayerStats(ctx, username)
	if err != nil {
		return nil, storeError("load stats", err)
	}
	return st, nil
}
