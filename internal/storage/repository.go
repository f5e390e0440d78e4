package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ericogr/mtcg/internal/game"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrStaleBattle       = errors.New("battle is no longer in progress")
	ErrOwnershipChanged  = errors.New("card owner changed")
	ErrDuplicate         = errors.New("record already exists")
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrNotOwned          = errors.New("card not owned by user")
	ErrPowerUpExists     = errors.New("unused power-up already claimed")
)

type CardCatalog interface {
	GetCard(ctx context.Context, id uint) (*game.Card, error)
}

// CardTransfer moves a card won in a round. It fails with
// ErrOwnershipChanged when the card is no longer owned by From.
type CardTransfer struct {
	CardID uint
	From   string
	To     string
}

// RatingChange is applied to a player's rating when a battle completes.
type RatingChange struct {
	Username string
	Delta    int
}

// BattleStore persists battle aggregates including their log. Every write
// only touches in-progress rows and fails with ErrStaleBattle otherwise.
type BattleStore interface {
	CreateBattle(ctx context.Context, b *game.Battle) error
	GetBattle(ctx context.Context, id string) (*game.Battle, error)
	// UpdateBattle writes the mutable battle columns and inserts log entries
	// that have not been stored yet.
	UpdateBattle(ctx context.Context, b *game.Battle) error
	// SaveRound commits the battle update together with the card transfer
	// of the round, if any. Either both are stored or neither.
	SaveRound(ctx context.Context, b *game.Battle, transfer *CardTransfer) error
	// CompleteBattle stores the terminal battle state and applies the rating
	// changes in one transaction. On failure the battle stays in progress.
	CompleteBattle(ctx context.Context, b *game.Battle, changes []RatingChange) error
	// FindAbandonedBattles returns ids of in-progress battles not touched since before.
	FindAbandonedBattles(ctx context.Context, before time.Time) ([]string, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *game.User) error
	GetUser(ctx context.Context, username string) (*game.User, error)
	EnsureSystemUser(ctx context.Context, username string) error
	TopPlayers(ctx context.Context, limit int) ([]game.User, error)
	PlayerStats(ctx context.Context, username string) (*game.PlayerStats, error)
}

type CardStore interface {
	CardsByOwner(ctx context.Context, username string) ([]game.Card, error)
	CreateCards(ctx context.Context, cards []game.Card) error
	// BuyPackage deducts cost from the user's coins and stores the cards in
	// one transaction.
	BuyPackage(ctx context.Context, username string, cost int, cards []game.Card) error
	GetDeck(ctx context.Context, username string) ([]game.Card, error)
	SetDeck(ctx context.Context, username string, cardIDs []uint) error
}

type PowerUpStore interface {
	ClaimPowerUp(ctx context.Context, username string, kind game.PowerUpType) (*game.PowerUp, error)
	ListPowerUps(ctx context.Context, username string) ([]game.PowerUp, error)
	// ConsumePowerUp marks the user's unused power-up as spent in battleID.
	ConsumePowerUp(ctx context.Context, username, battleID string) error
}

type Repository interface {
	CardCatalog
	BattleStore
	UserStore
	CardStore
	PowerUpStore
}
