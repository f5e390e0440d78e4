package service

import (
	"context"
	"errors"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/storage"
)

type PowerUpRepo interface {
	ClaimPowerUp(ctx context.Context, username string, kind game.PowerUpType) (*game.PowerUp, error)
	ListPowerUps(ctx context.Context, username string) ([]game.PowerUp, error)
}

// ClaimPowerUp grants a double damage power-up. A player holds at most one unused.
func ClaimPowerUp(ctx context.Context, repo PowerUpRepo, username string) (*game.PowerUp, error) {
	p, err := repo.ClaimPowerUp(ctx, username, game.PowerUpDoubleDamage)
	if errors.Is(err, storage.ErrPowerUpExists) {
		return nil, wrapError(CodeConflict, constants.ErrPowerUpClaimed, err)
	}
	if err != nil {
		return nil, storeError("claim power-up", err)
	}
	return p, nil
}

func ListPowerUps(ctx context.Context, repo PowerUpRepo, username string) ([]game.PowerUp, error) {
	out, err := repo.ListPowerUps(ctx, username)
	if err != nil {
		return nil, storeError("list power-ups", err)
	}
	return out, nil
}
