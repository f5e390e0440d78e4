package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ericogr/mtcg/internal/game"
)

// MaxRounds bounds a battle. Reaching it without an empty pool is a draw.
const MaxRounds = 100

// Rand is the random source used to draw cards. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Draw picks one card id uniformly at random from each pool. Both pools
// must be non-empty.
func Draw(b *game.Battle, rng Rand) (playerID, opponentID uint) {
	playerID = b.PlayerCardIDs[rng.Intn(len(b.PlayerCardIDs))]
	opponentID = b.OpponentCardIDs[rng.Intn(len(b.OpponentCardIDs))]
	return playerID, opponentID
}

// Outcome is the result of one resolved round.
type Outcome struct {
	Round          int
	PlayerCard     game.Card
	OpponentCard   game.Card
	PlayerDamage   int
	OpponentDamage int
	Doubled        bool
	Winner         game.Side
}

// ResolveRound resolves damage in both directions. When doubled is set the
// player's damage is multiplied by two after the matchup rules.
func ResolveRound(round int, player, opponent game.Card, doubled bool) Outcome {
	o := Outcome{
		Round:          round,
		PlayerCard:     player,
		OpponentCard:   opponent,
		PlayerDamage:   ResolveDamage(player, opponent),
		OpponentDamage: ResolveDamage(opponent, player),
		Doubled:        doubled,
	}
	if doubled {
		o.PlayerDamage *= 2
	}
	switch {
	case o.PlayerDamage > o.OpponentDamage:
		o.Winner = game.SidePlayer
	case o.OpponentDamage > o.PlayerDamage:
		o.Winner = game.SideOpponent
	default:
		o.Winner = game.SideNone
	}
	return o
}

// LoserCard returns the card that changes hands. ok is false on a drawn round.
func (o Outcome) LoserCard() (card game.Card, ok bool) {
	switch o.Winner {
	case game.SidePlayer:
		return o.OpponentCard, true
	case game.SideOpponent:
		return o.PlayerCard, true
	}
	return game.Card{}, false
}

// CheckTerminal reports the winning side once a pool is empty. The player
// pool is checked first.
func CheckTerminal(b *game.Battle) (game.Side, bool) {
	if len(b.PlayerCardIDs) == 0 {
		return game.SideOpponent, true
	}
	if len(b.OpponentCardIDs) == 0 {
		return game.SidePlayer, true
	}
	return game.SideNone, false
}

// --- Log text -----------------------------------------------------------

// roundContext accumulates the sentences of one round's log line.
type roundContext struct {
	summary []string
}

func newRoundContext() *roundContext {
	return &roundContext{summary: make([]string, 0, 4)}
}

func (rc *roundContext) add(format string, args ...interface{}) {
	rc.summary = append(rc.summary, fmt.Sprintf(format, args...))
}

func (rc *roundContext) joinSummary() string {
	return strings.Join(rc.summary, " ")
}

func describeCard(c game.Card) string {
	title := cases.Title(language.English)
	return fmt.Sprintf("%s (%s %s, %d)", c.Name, title.String(string(c.Element)), title.String(string(c.Kind)), c.Damage)
}

// DescribeStart is the opening log line of a battle.
func DescribeStart(b *game.Battle) string {
	return fmt.Sprintf("Battle started: %s (%d cards) vs %s (%d cards).",
		b.PlayerUsername, len(b.PlayerCardIDs), b.OpponentUsername, len(b.OpponentCardIDs))
}

// DescribeRound names both cards, both damage values and the round outcome.
func DescribeRound(b *game.Battle, o Outcome) string {
	rc := newRoundContext()
	rc.add("Round %d:", o.Round)
	rc.add("%s plays %s,", b.PlayerUsername, describeCard(o.PlayerCard))
	rc.add("%s plays %s.", b.OpponentUsername, describeCard(o.OpponentCard))
	if o.Doubled {
		rc.add("Double damage active for %s.", b.PlayerUsername)
	}
	rc.add("Damage %d vs %d.", o.PlayerDamage, o.OpponentDamage)
	if lost, ok := o.LoserCard(); ok {
		rc.add("%s wins the round and takes %s.", b.Username(o.Winner), lost.Name)
	} else {
		rc.add("Round drawn, no card changes hands.")
	}
	return rc.joinSummary()
}

// DescribeSkip records a round that was skipped because a card was missing.
func DescribeSkip(round int, cardID uint) string {
	return fmt.Sprintf("Round %d skipped: card %d could not be loaded.", round, cardID)
}

// DescribeWin is the terminal log line of a decisive battle.
func DescribeWin(b *game.Battle, winner game.Side) string {
	loser := game.SideOpponent
	if winner == game.SideOpponent {
		loser = game.SidePlayer
	}
	return fmt.Sprintf("%s wins the battle after %d rounds: %s has no cards left.",
		b.Username(winner), b.Rounds, b.Username(loser))
}

// DescribeDraw is the terminal log line when the round ceiling is reached.
func DescribeDraw(b *game.Battle) string {
	return fmt.Sprintf("Battle ended in a draw after %d rounds (%d vs %d cards).",
		b.Rounds, len(b.PlayerCardIDs), len(b.OpponentCardIDs))
}
