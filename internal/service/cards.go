package service

import (
	"context"
	"errors"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/engine"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/logging"
	"github.com/ericogr/mtcg/internal/storage"
)

type CardRepo interface {
	CardsByOwner(ctx context.Context, username string) ([]game.Card, error)
	BuyPackage(ctx context.Context, username string, cost int, cards []game.Card) error
	GetDeck(ctx context.Context, username string) ([]game.Card, error)
	SetDeck(ctx context.Context, username string, cardIDs []uint) error
}

// BuyPackage charges the package cost and mints PackageSize cards drawn
// uniformly from the catalog templates.
func BuyPackage(ctx context.Context, repo CardRepo, rng engine.Rand, econ Economy, templates []game.CardTemplate, username string) ([]game.Card, error) {
	if len(templates) == 0 {
		return nil, newError(CodeValidation, constants.ErrNoTemplates)
	}
	cards := make([]game.Card, econ.PackageSize)
	for i := range cards {
		cards[i] = templates[rng.Intn(len(templates))].Mint(username)
	}
	if err := repo.BuyPackage(ctx, username, econ.PackageCost, cards); err != nil {
		if errors.Is(err, storage.ErrInsufficientCoins) {
			return nil, wrapError(CodeValidation, constants.ErrNotEnoughCoins, err)
		}
		return nil, storeError("buy package", err)
	}
	logging.Info("package bought", logging.Fields{constants.LogFieldUsername: username, "cards": len(cards)})
	return cards, nil
}

func ListCards(ctx context.Context, repo CardRepo, username string) ([]game.Card, error) {
	cards, err := repo.CardsByOwner(ctx, username)
	if err != nil {
		return nil, storeError("list cards", err)
	}
	return cards, nil
}

func GetDeck(ctx context.Context, repo CardRepo, username string) ([]game.Card, error) {
	deck, err := repo.GetDeck(ctx, username)
	if err != nil {
		return nil, storeError("load deck", err)
	}
	return deck, nil
}

// ConfigureDeck replaces the active deck with exactly DeckSize distinct cards
// owned by username.
func ConfigureDeck(ctx context.Context, repo CardRepo, username string, cardIDs []uint) ([]game.Card, error) {
	if len(cardIDs) != game.DeckSize {
		return nil, newError(CodeValidation, constants.ErrDeckSize)
	}
	seen := make(map[uint]struct{}, len(cardIDs))
	for _, id := range cardIDs {
		if _, dup := seen[id]; dup {
			return nil, newError(CodeValidation, constants.ErrDeckSize)
		}
		seen[id] = struct{}{}
	}
	if err := repo.SetDeck(ctx, username, cardIDs); err != nil {
		if errors.Is(err, storage.ErrNotOwned) {
			return nil, wrapError(CodeValidation, constants.ErrDeckNotOwned, err)
		}
		return nil, storeError("set deck", err)
	}
	return GetDeck(ctx, repo, username)
}
