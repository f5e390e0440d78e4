package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/storage"
)

// fakeRepo is an in-memory stand-in for the gorm repository.
type fakeRepo struct {
	mu       sync.Mutex
	nextID   uint
	cards    map[uint]game.Card
	decks    map[string][]uint
	battles  map[string]game.Battle
	users    map[string]*game.User
	powerUps map[string][]game.PowerUp

	ratingCalls []ratingCall
	snapshots   []game.Battle
	ratingErr   error
	// the next failWrites battle writes return writeErr without storing anything
	failWrites int
	writeErr   error
}

type ratingCall struct {
	username string
	delta    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:   1,
		cards:    map[uint]game.Card{},
		decks:    map[string][]uint{},
		battles:  map[string]game.Battle{},
		users:    map[string]*game.User{},
		powerUps: map[string][]game.PowerUp{},
	}
}

func cloneBattle(b game.Battle) game.Battle {
	b.PlayerCardIDs = slices.Clone(b.PlayerCardIDs)
	b.OpponentCardIDs = slices.Clone(b.OpponentCardIDs)
	b.Log = slices.Clone(b.Log)
	return b
}

func (f *fakeRepo) addCard(c game.Card) game.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.nextID
	f.nextID++
	f.cards[c.ID] = c
	return c
}

func (f *fakeRepo) putBattle(b game.Battle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.battles[b.ID] = cloneBattle(b)
}

func (f *fakeRepo) stored(id string) game.Battle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneBattle(f.battles[id])
}

func (f *fakeRepo) owner(id uint) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cards[id].Owner
}

func (f *fakeRepo) failNextWrites(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = n
	f.writeErr = err
}

func (f *fakeRepo) setRatingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratingErr = err
}

func (f *fakeRepo) ratings() []ratingCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ratingCalls)
}

func (f *fakeRepo) GetCard(_ context.Context, id uint) (*game.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cards[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (f *fakeRepo) CreateBattle(_ context.Context, b *game.Battle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range b.Log {
		b.Log[i].ID = uint(i + 1)
	}
	f.battles[b.ID] = cloneBattle(*b)
	return nil
}

func (f *fakeRepo) GetBattle(_ context.Context, id string) (*game.Battle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.battles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := cloneBattle(b)
	return &out, nil
}

// checkBattle mirrors the status guard of the gorm repository. Callers hold mu.
func (f *fakeRepo) checkBattle(b *game.Battle) error {
	if f.failWrites > 0 {
		f.failWrites--
		return f.writeErr
	}
	cur, ok := f.battles[b.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if cur.Status != game.StatusInProgress {
		return storage.ErrStaleBattle
	}
	return nil
}

func (f *fakeRepo) commitBattle(b *game.Battle) {
	for i := range b.Log {
		if b.Log[i].ID == 0 {
			b.Log[i].ID = uint(i + 1)
		}
	}
	f.battles[b.ID] = cloneBattle(*b)
	f.snapshots = append(f.snapshots, cloneBattle(*b))
}

func (f *fakeRepo) UpdateBattle(_ context.Context, b *game.Battle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkBattle(b); err != nil {
		return err
	}
	f.commitBattle(b)
	return nil
}

func (f *fakeRepo) SaveRound(_ context.Context, b *game.Battle, t *storage.CardTransfer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkBattle(b); err != nil {
		return err
	}
	if t != nil {
		c, ok := f.cards[t.CardID]
		if !ok {
			return storage.ErrNotFound
		}
		if c.Owner != t.From {
			return storage.ErrOwnershipChanged
		}
		c.Owner = t.To
		f.cards[t.CardID] = c
		f.decks[t.From] = slices.DeleteFunc(f.decks[t.From], func(x uint) bool { return x == t.CardID })
	}
	f.commitBattle(b)
	return nil
}

func (f *fakeRepo) CompleteBattle(_ context.Context, b *game.Battle, changes []storage.RatingChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkBattle(b); err != nil {
		return err
	}
	if len(changes) > 0 && f.ratingErr != nil {
		return f.ratingErr
	}
	for _, ch := range changes {
		f.ratingCalls = append(f.ratingCalls, ratingCall{ch.Username, ch.Delta})
		if u, ok := f.users[ch.Username]; ok {
			u.Elo += ch.Delta
		}
	}
	f.commitBattle(b)
	return nil
}

func (f *fakeRepo) FindAbandonedBattles(_ context.Context, before time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, b := range f.battles {
		if b.Status == game.StatusInProgress && !b.UpdatedAt.After(before) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *fakeRepo) GetDeck(_ context.Context, username string) ([]game.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []game.Card
	for _, id := range f.decks[username] {
		out = append(out, f.cards[id])
	}
	return out, nil
}

func (f *fakeRepo) SetDeck(_ context.Context, username string, ids []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if f.cards[id].Owner != username {
			return storage.ErrNotOwned
		}
	}
	f.decks[username] = slices.Clone(ids)
	return nil
}

func (f *fakeRepo) CardsByOwner(_ context.Context, username string) ([]game.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []game.Card
	for _, c := range f.cards {
		if c.Owner == username {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b game.Card) int { return int(a.ID) - int(b.ID) })
	return out, nil
}

func (f *fakeRepo) CreateCards(_ context.Context, cards []game.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range cards {
		cards[i].ID = f.nextID
		f.nextID++
		f.cards[cards[i].ID] = cards[i]
	}
	return nil
}

func (f *fakeRepo) BuyPackage(ctx context.Context, username string, cost int, cards []game.Card) error {
	f.mu.Lock()
	u, ok := f.users[username]
	if !ok {
		f.mu.Unlock()
		return storage.ErrNotFound
	}
	if u.Coins < cost {
		f.mu.Unlock()
		return storage.ErrInsufficientCoins
	}
	u.Coins -= cost
	f.mu.Unlock()
	return f.CreateCards(ctx, cards)
}

func (f *fakeRepo) CreateUser(_ context.Context, u *game.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Username]; ok {
		return storage.ErrDuplicate
	}
	cp := *u
	f.users[u.Username] = &cp
	return nil
}

func (f *fakeRepo) GetUser(_ context.Context, username string) (*game.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) ClaimPowerUp(_ context.Context, username string, kind game.PowerUpType) (*game.PowerUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.powerUps[username] {
		if !p.Used {
			return nil, storage.ErrPowerUpExists
		}
	}
	p := game.PowerUp{ID: uint(len(f.powerUps[username]) + 1), Username: username, Type: kind}
	f.powerUps[username] = append(f.powerUps[username], p)
	return &p, nil
}

func (f *fakeRepo) ListPowerUps(_ context.Context, username string) ([]game.PowerUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.powerUps[username]), nil
}

func (f *fakeRepo) ConsumePowerUp(_ context.Context, username, battleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.powerUps[username] {
		if !p.Used {
			f.powerUps[username][i].Used = true
			f.powerUps[username][i].BattleID = battleID
			return nil
		}
	}
	return storage.ErrNotFound
}
