package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/mtcg/internal/game"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	db, err := OpenAndMigrate(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewRepository(db)
}

func seedUser(t *testing.T, repo Repository, name string, coins int) {
	t.Helper()
	require.NoError(t, repo.CreateUser(context.Background(), &game.User{Username: name, Coins: coins, Elo: 100}))
}

func seedCards(t *testing.T, repo Repository, owner string, n int) []game.Card {
	t.Helper()
	cards := make([]game.Card, n)
	for i := range cards {
		cards[i] = game.Card{Name: "Card", Kind: game.KindMonster, Element: game.ElementNormal, Damage: 10 + i, Owner: owner}
	}
	require.NoError(t, repo.CreateCards(context.Background(), cards))
	return cards
}

func ids(cards []game.Card) []uint {
	out := make([]uint, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestSystemUserIsSeeded(t *testing.T) {
	repo := newTestRepo(t)
	u, err := repo.GetUser(context.Background(), game.AIOpponent)
	require.NoError(t, err)
	assert.True(t, u.IsSystem)

	_, err = repo.GetUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "alice", 20)
	err := repo.CreateUser(context.Background(), &game.User{Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCardTraitsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cards := []game.Card{{Name: "Knight", Kind: game.KindMonster, Element: game.ElementNormal, Damage: 55,
		Traits: game.NewTraits(game.TraitKnight), Owner: "alice"}}
	require.NoError(t, repo.CreateCards(ctx, cards))

	got, err := repo.GetCard(ctx, cards[0].ID)
	require.NoError(t, err)
	assert.True(t, got.IsMonsterWith(game.TraitKnight))
	assert.False(t, got.Traits.Has(game.TraitKraken))

	_, err = repo.GetCard(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func newBattle(t *testing.T, repo Repository, id string, player, opponent []uint) *game.Battle {
	t.Helper()
	b := &game.Battle{
		ID:               id,
		PlayerUsername:   "alice",
		OpponentUsername: game.AIOpponent,
		PlayerCardIDs:    player,
		OpponentCardIDs:  opponent,
		Status:           game.StatusInProgress,
	}
	b.AppendLog("start", time.Now().UTC())
	require.NoError(t, repo.CreateBattle(context.Background(), b))
	return b
}

func TestSaveRoundMovesCardAndLeavesDeck(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "alice", 20)
	cards := seedCards(t, repo, "alice", 4)
	require.NoError(t, repo.SetDeck(ctx, "alice", ids(cards)))
	b := newBattle(t, repo, "b-1", ids(cards), nil)

	b.MoveCard(cards[0].ID, game.SideOpponent)
	b.Rounds = 1
	b.AppendLog("round 1", time.Now().UTC())
	require.NoError(t, repo.SaveRound(ctx, b, &CardTransfer{CardID: cards[0].ID, From: "alice", To: game.AIOpponent}))

	c, err := repo.GetCard(ctx, cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, game.AIOpponent, c.Owner)

	deck, err := repo.GetDeck(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, deck, 3)

	got, err := repo.GetBattle(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, []uint{cards[0].ID}, got.OpponentCardIDs)
	assert.Len(t, got.Log, 2)

	// a drawn round stores the battle without a transfer
	b.Rounds = 2
	require.NoError(t, repo.SaveRound(ctx, b, nil))
}

func TestSaveRoundRollsBackOnFailedTransfer(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	cards := seedCards(t, repo, "alice", 2)
	b := newBattle(t, repo, "b-1", ids(cards), nil)

	b.MoveCard(cards[0].ID, game.SideOpponent)
	b.Rounds = 1
	b.AppendLog("round 1", time.Now().UTC())
	err := repo.SaveRound(ctx, b, &CardTransfer{CardID: cards[0].ID, From: "bob", To: game.AIOpponent})
	assert.ErrorIs(t, err, ErrOwnershipChanged)

	got, err := repo.GetBattle(ctx, "b-1")
	require.NoError(t, err)
	assert.Zero(t, got.Rounds)
	assert.ElementsMatch(t, ids(cards), got.PlayerCardIDs)
	assert.Len(t, got.Log, 1)

	c, err := repo.GetCard(ctx, cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Owner)

	fresh := newBattle(t, repo, "b-2", ids(cards), nil)
	assert.ErrorIs(t, repo.SaveRound(ctx, fresh, &CardTransfer{CardID: 4242, From: "alice", To: "bob"}), ErrNotFound)
}

func TestCompleteBattleRollsBackOnRatingFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "alice", 20)
	b := newBattle(t, repo, "b-1", []uint{1}, nil)

	b.Complete(game.SidePlayer, time.Now().UTC())
	err := repo.CompleteBattle(ctx, b, []RatingChange{{"alice", 3}, {"ghost", -5}})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetBattle(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusInProgress, got.Status)
	u, err := repo.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 100, u.Elo)

	require.NoError(t, repo.CompleteBattle(ctx, b, []RatingChange{{"alice", 3}, {game.AIOpponent, -5}}))
	u, err = repo.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 103, u.Elo)

	assert.ErrorIs(t, repo.CompleteBattle(ctx, b, []RatingChange{{"alice", 3}}), ErrStaleBattle)
	u, err = repo.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 103, u.Elo)
}

func TestSetDeckRequiresOwnership(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "alice", 20)
	seedUser(t, repo, "bob", 20)
	mine := seedCards(t, repo, "alice", 3)
	theirs := seedCards(t, repo, "bob", 1)

	err := repo.SetDeck(ctx, "alice", append(ids(mine), theirs[0].ID))
	assert.ErrorIs(t, err, ErrNotOwned)

	deck, err := repo.GetDeck(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, deck)
}

func TestBuyPackageDeductsCoins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "alice", 7)
	pkg := []game.Card{{Name: "Fireball", Kind: game.KindSpell, Element: game.ElementFire, Damage: 50, Owner: "alice"}}

	require.NoError(t, repo.BuyPackage(ctx, "alice", 5, pkg))
	u, err := repo.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, u.Coins)

	more := []game.Card{{Name: "Fireball", Kind: game.KindSpell, Element: game.ElementFire, Damage: 50, Owner: "alice"}}
	assert.ErrorIs(t, repo.BuyPackage(ctx, "alice", 5, more), ErrInsufficientCoins)
	assert.ErrorIs(t, repo.BuyPackage(ctx, "ghost", 5, nil), ErrNotFound)

	owned, err := repo.CardsByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestUpdateBattleCompletesOnlyOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := &game.Battle{
		ID:               "b-1",
		PlayerUsername:   "alice",
		OpponentUsername: game.AIOpponent,
		PlayerCardIDs:    []uint{1, 2},
		OpponentCardIDs:  []uint{3},
		Status:           game.StatusInProgress,
	}
	b.AppendLog("start", now)
	require.NoError(t, repo.CreateBattle(ctx, b))

	b.MoveCard(3, game.SidePlayer)
	b.Rounds = 1
	b.AppendLog("round 1", now)
	b.Complete(game.SidePlayer, now)
	b.AppendLog("alice wins", now)
	require.NoError(t, repo.UpdateBattle(ctx, b))

	got, err := repo.GetBattle(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusCompleted, got.Status)
	assert.Equal(t, "alice", got.Winner)
	assert.ElementsMatch(t, []uint{1, 2, 3}, got.PlayerCardIDs)
	assert.Empty(t, got.OpponentCardIDs)
	require.Len(t, got.Log, 3)
	assert.Equal(t, "start", got.Log[0].Text)
	assert.Equal(t, "alice wins", got.Log[2].Text)

	got.AppendLog("again", now)
	assert.ErrorIs(t, repo.UpdateBattle(ctx, got), ErrStaleBattle)

	reloaded, err := repo.GetBattle(ctx, "b-1")
	require.NoError(t, err)
	assert.Len(t, reloaded.Log, 3)

	missing := &game.Battle{ID: "nope", Status: game.StatusInProgress}
	assert.ErrorIs(t, repo.UpdateBattle(ctx, missing), ErrNotFound)
	_, err = repo.GetBattle(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRatingsAndStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "alice", 20)
	seedUser(t, repo, "bob", 20)

	now := time.Now().UTC()
	battles := []*game.Battle{
		{ID: "w", PlayerUsername: "alice", OpponentUsername: "bob", Status: game.StatusInProgress},
		{ID: "d", PlayerUsername: "bob", OpponentUsername: "alice", Status: game.StatusInProgress},
		{ID: "l", PlayerUsername: "alice", OpponentUsername: game.AIOpponent, Status: game.StatusInProgress},
		{ID: "open", PlayerUsername: "alice", OpponentUsername: game.AIOpponent, Status: game.StatusInProgress},
	}
	for _, b := range battles {
		require.NoError(t, repo.CreateBattle(ctx, b))
	}
	battles[0].Complete(game.SidePlayer, now)
	battles[1].Complete(game.SideNone, now)
	battles[2].Complete(game.SideOpponent, now)
	require.NoError(t, repo.CompleteBattle(ctx, battles[0], []RatingChange{{"alice", 3}, {"bob", -5}}))
	require.NoError(t, repo.CompleteBattle(ctx, battles[1], nil))
	require.NoError(t, repo.CompleteBattle(ctx, battles[2], []RatingChange{{game.AIOpponent, 3}, {"alice", -5}}))

	stats, err := repo.PlayerStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, game.PlayerStats{Username: "alice", Elo: 98, Wins: 1, Losses: 1, Draws: 1}, *stats)

	top, err := repo.TopPlayers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "alice", top[0].Username)
	assert.Equal(t, "bob", top[1].Username)

	abandoned, err := repo.FindAbandonedBattles(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"open"}, abandoned)
}

func TestPowerUps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "alice", 20)

	p, err := repo.ClaimPowerUp(ctx, "alice", game.PowerUpDoubleDamage)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	_, err = repo.ClaimPowerUp(ctx, "alice", game.PowerUpDoubleDamage)
	assert.ErrorIs(t, err, ErrPowerUpExists)

	require.NoError(t, repo.ConsumePowerUp(ctx, "alice", "b-9"))
	assert.ErrorIs(t, repo.ConsumePowerUp(ctx, "alice", "b-9"), ErrNotFound)

	list, err := repo.ListPowerUps(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Used)
	assert.Equal(t, "b-9", list[0].BattleID)

	_, err = repo.ClaimPowerUp(ctx, "alice", game.PowerUpDoubleDamage)
	assert.NoError(t, err)
}
