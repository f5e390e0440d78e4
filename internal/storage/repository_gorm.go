package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ericogr/mtcg/internal/game"
)

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a Repository backed by a gorm database (sqlite or postgres).
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// forUpdate adds row locking on engines that support it.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == DriverPostgres {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// --- Cards -----------------------------------------------------------------

func (r *gormRepository) GetCard(ctx context.Context, id uint) (*game.Card, error) {
	var c game.Card
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// transferCard moves a card inside tx and drops it from the old owner's deck.
func transferCard(tx *gorm.DB, t CardTransfer) error {
	var c game.Card
	if err := forUpdate(tx).Where("id = ?", t.CardID).First(&c).Error; err != nil {
		return notFound(err)
	}
	if c.Owner != t.From {
		return ErrOwnershipChanged
	}
	res := tx.Model(&game.Card{}).
		Where("id = ? AND owner_username = ?", t.CardID, t.From).
		Update("owner_username", t.To)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOwnershipChanged
	}
	// a card leaving its owner also leaves the owner's deck
	return tx.Where("card_id = ?", t.CardID).Delete(&game.DeckCard{}).Error
}

func (r *gormRepository) CardsByOwner(ctx context.Context, username string) ([]game.Card, error) {
	var cards []game.Card
	if err := r.db.WithContext(ctx).Where("owner_username = ?", username).Order("id").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *gormRepository) CreateCards(ctx context.Context, cards []game.Card) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cards).Error
}

func (r *gormRepository) BuyPackage(ctx context.Context, username string, cost int, cards []game.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&game.User{}).
			Where("username = ? AND coins >= ?", username, cost).
			Update("coins", gorm.Expr("coins - ?", cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&game.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrInsufficientCoins
		}
		if len(cards) == 0 {
			return nil
		}
		return tx.Create(&cards).Error
	})
}

func (r *gormRepository) GetDeck(ctx context.Context, username string) ([]game.Card, error) {
	var cards []game.Card
	err := r.db.WithContext(ctx).
		Joins("JOIN deck_cards ON deck_cards.card_id = cards.id").
		Where("deck_cards.username = ?", username).
		Order("cards.id").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *gormRepository) SetDeck(ctx context.Context, username string, cardIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&game.Card{}).
			Where("id IN ? AND owner_username = ?", cardIDs, username).
			Count(&owned).Error; err != nil {
			return err
		}
		if int(owned) != len(cardIDs) {
			return ErrNotOwned
		}
		if err := tx.Where("username = ?", username).Delete(&game.DeckCard{}).Error; err != nil {
			return err
		}
		slots := make([]game.DeckCard, 0, len(cardIDs))
		for _, id := range cardIDs {
			slots = append(slots, game.DeckCard{Username: username, CardID: id})
		}
		return tx.Create(&slots).Error
	})
}

// --- Battles ---------------------------------------------------------------

func (r *gormRepository) CreateBattle(ctx context.Context, b *game.Battle) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *gormRepository) GetBattle(ctx context.Context, id string) (*game.Battle, error) {
	var b game.Battle
	err := r.db.WithContext(ctx).
		Preload("Log", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *gormRepository) UpdateBattle(ctx context.Context, b *game.Battle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateBattle(tx, b)
	})
}

func (r *gormRepository) SaveRound(ctx context.Context, b *game.Battle, transfer *CardTransfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateBattle(tx, b); err != nil {
			return err
		}
		if transfer == nil {
			return nil
		}
		return transferCard(tx, *transfer)
	})
}

func (r *gormRepository) CompleteBattle(ctx context.Context, b *game.Battle, changes []RatingChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateBattle(tx, b); err != nil {
			return err
		}
		for _, ch := range changes {
			if err := adjustRating(tx, ch); err != nil {
				return err
			}
		}
		return nil
	})
}

// updateBattle is a compare-and-set on status = in_progress followed by the
// insert of unsaved log entries.
func updateBattle(tx *gorm.DB, b *game.Battle) error {
	res := tx.Model(b).
		Where("status = ?", game.StatusInProgress).
		Select("player_card_ids", "opponent_card_ids", "status", "winner", "rounds", "player_power_up", "completed_at", "updated_at").
		Updates(b)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&game.Battle{}).Where("id = ?", b.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStaleBattle
	}
	for i := range b.Log {
		if b.Log[i].ID != 0 {
			continue
		}
		b.Log[i].BattleID = b.ID
		if err := tx.Create(&b.Log[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *gormRepository) FindAbandonedBattles(ctx context.Context, before time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&game.Battle{}).
		Where("status = ? AND updated_at <= ?", game.StatusInProgress, before).
		Order("created_at").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// --- Users and ratings -----------------------------------------------------

func adjustRating(tx *gorm.DB, ch RatingChange) error {
	res := tx.Model(&game.User{}).
		Where("username = ?", ch.Username).
		Update("elo", gorm.Expr("elo + ?", ch.Delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) CreateUser(ctx context.Context, u *game.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&game.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
}

func (r *gormRepository) GetUser(ctx context.Context, username string) (*game.User, error) {
	var u game.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *gormRepository) EnsureSystemUser(ctx context.Context, username string) error {
	u := game.User{Username: username, IsSystem: true}
	return r.db.WithContext(ctx).
		Where(game.User{Username: username}).
		Attrs(u).
		FirstOrCreate(&u).Error
}

// TopPlayers returns top N non-system players ordered by rating.
func (r *gormRepository) TopPlayers(ctx context.Context, limit int) ([]game.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []game.User
	if err := r.db.WithContext(ctx).Model(&game.User{}).
		Where("is_system = ?", false).
		Order("elo DESC").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *gormRepository) PlayerStats(ctx context.Context, username string) (*game.PlayerStats, error) {
	u, err := r.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	stats := &game.PlayerStats{Username: u.Username, Elo: u.Elo}

	completed := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&game.Battle{}).
			Where("status = ? AND (player_username = ? OR opponent_username = ?)", game.StatusCompleted, username, username)
	}
	var total, wins, draws int64
	if err := completed().Count(&total).Error; err != nil {
		return nil, err
	}
	if err := completed().Where("winner = ?", username).Count(&wins).Error; err != nil {
		return nil, err
	}
	if err := completed().Where("winner = ?", "").Count(&draws).Error; err != nil {
		return nil, err
	}
	stats.Wins = int(wins)
	stats.Draws = int(draws)
	stats.Losses = int(total - wins - draws)
	return stats, nil
}

// --- Power-ups -------------------------------------------------------------

func (r *gormRepository) ClaimPowerUp(ctx context.Context, username string, kind game.PowerUpType) (*game.PowerUp, error) {
	p := &game.PowerUp{Username: username, Type: kind}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unused int64
		if err := tx.Model(&game.PowerUp{}).
			Where("username = ? AND used = ?", username, false).
			Count(&unused).Error; err != nil {
			return err
		}
		if unused > 0 {
			return ErrPowerUpExists
		}
		return tx.Create(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *gormRepository) ListPowerUps(ctx context.Context, username string) ([]game.PowerUp, error) {
	var out []game.PowerUp
	if err := r.db.WithContext(ctx).Where("username = ?", username).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormRepository) ConsumePowerUp(ctx context.Context, username, battleID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p game.PowerUp
		if err := forUpdate(tx).
			Where("username = ? AND used = ?", username, false).
			Order("id").
			First(&p).Error; err != nil {
			return notFound(err)
		}
		return tx.Model(&p).Updates(map[string]interface{}{"used": true, "battle_id": battleID}).Error
	})
}
