package game

import (
	"slices"
	"time"
)

// Status is the lifecycle state of a battle. The only transition is
// StatusInProgress -> StatusCompleted and it happens once.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// AIOpponent is the system account that owns generated opponent pools.
const AIOpponent = "AI"

// Side identifies one half of a battle.
type Side int

const (
	SideNone Side = iota
	SidePlayer
	SideOpponent
)

// Battle is the aggregate mutated by the round orchestrator.
type Battle struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	PlayerUsername   string     `json:"player_username" gorm:"size:64;index;not null"`
	OpponentUsername string     `json:"opponent_username" gorm:"size:64;index;not null"`
	PlayerCardIDs    []uint     `json:"player_card_ids" gorm:"serializer:json"`
	OpponentCardIDs  []uint     `json:"opponent_card_ids" gorm:"serializer:json"`
	Status           Status     `json:"status" gorm:"size:16;index;not null"`
	Winner           string     `json:"winner" gorm:"size:64"`
	Rounds           int        `json:"rounds"`
	PlayerPowerUp    bool       `json:"player_power_up"`
	Log              []LogEntry `json:"log" gorm:"foreignKey:BattleID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// LogEntry is one append-only line of the battle log.
type LogEntry struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	BattleID  string    `json:"-" gorm:"size:36;index;not null"`
	Seq       int       `json:"seq" gorm:"not null"`
	Text      string    `json:"text" gorm:"not null"`
	Timestamp time.Time `json:"timestamp"`
}

// TableName overrides the default GORM table name.
func (LogEntry) TableName() string { return "battle_log_entries" }

func (b *Battle) IsCompleted() bool { return b.Status == StatusCompleted }

// AppendLog adds a log line with the next sequence number.
func (b *Battle) AppendLog(text string, at time.Time) {
	b.Log = append(b.Log, LogEntry{BattleID: b.ID, Seq: len(b.Log), Text: text, Timestamp: at})
}

// Pool returns the card ids currently held by side.
func (b *Battle) Pool(side Side) []uint {
	if side == SidePlayer {
		return b.PlayerCardIDs
	}
	return b.OpponentCardIDs
}

// Username returns the account behind side.
func (b *Battle) Username(side Side) string {
	if side == SidePlayer {
		return b.PlayerUsername
	}
	return b.OpponentUsername
}

// MoveCard moves id from the loser's pool into the winner's pool.
func (b *Battle) MoveCard(id uint, winner Side) {
	if winner == SidePlayer {
		b.OpponentCardIDs = removeID(b.OpponentCardIDs, id)
		b.PlayerCardIDs = append(b.PlayerCardIDs, id)
		return
	}
	b.PlayerCardIDs = removeID(b.PlayerCardIDs, id)
	b.OpponentCardIDs = append(b.OpponentCardIDs, id)
}

// Complete performs the terminal transition. winner is SideNone for a draw.
func (b *Battle) Complete(winner Side, at time.Time) {
	b.Status = StatusCompleted
	b.Winner = ""
	if winner != SideNone {
		b.Winner = b.Username(winner)
	}
	b.PlayerPowerUp = false
	b.CompletedAt = &at
}

// CardCount is the total number of cards in both pools.
func (b *Battle) CardCount() int { return len(b.PlayerCardIDs) + len(b.OpponentCardIDs) }

// PoolsDisjoint reports whether no card id appears in both pools.
func (b *Battle) PoolsDisjoint() bool {
	for _, id := range b.PlayerCardIDs {
		if slices.Contains(b.OpponentCardIDs, id) {
			return false
		}
	}
	return true
}

func removeID(ids []uint, id uint) []uint {
	out := ids[:0:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
