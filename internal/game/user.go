package game

import "time"

// User stores the player identity, wallet and rating.
type User struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string    `json:"-"`
	Coins        int       `json:"coins"`
	Elo          int       `json:"elo"`
	IsSystem     bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store players in a dedicated table for clarity
func (User) TableName() string { return "players" }

// DeckCard is one slot of a player's active deck.
type DeckCard struct {
	Username string `gorm:"primaryKey;size:64"`
	CardID   uint   `gorm:"primaryKey;uniqueIndex"`
}

func (DeckCard) TableName() string { return "deck_cards" }

// DeckSize is the number of cards an active deck must contain.
const DeckSize = 4

// PowerUpType enumerates claimable power-ups. Only double damage exists.
type PowerUpType string

const PowerUpDoubleDamage PowerUpType = "double_damage"

type PowerUp struct {
	ID        uint        `json:"id" gorm:"primaryKey"`
	Username  string      `json:"username" gorm:"size:64;index;not null"`
	Type      PowerUpType `json:"type" gorm:"size:32;not null"`
	Used      bool        `json:"used"`
	BattleID  string      `json:"battle_id,omitempty" gorm:"size:36"`
	CreatedAt time.Time   `json:"created_at"`
}

func (PowerUp) TableName() string { return "power_ups" }

// PlayerStats aggregates completed battles for one player.
type PlayerStats struct {
	Username string `json:"username"`
	Elo      int    `json:"elo"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}
