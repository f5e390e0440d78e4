package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/engine"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/logging"
	"github.com/ericogr/mtcg/internal/storage"
)

const (
	// RatingWin and RatingLoss are applied once when a battle has a winner.
	RatingWin  = 3
	RatingLoss = -5
)

// BattleRepo is the subset of storage the battle service needs.
type BattleRepo interface {
	storage.CardCatalog
	storage.BattleStore
	GetDeck(ctx context.Context, username string) ([]game.Card, error)
	CreateCards(ctx context.Context, cards []game.Card) error
	ConsumePowerUp(ctx context.Context, username, battleID string) error
}

// Archiver stores completed battles outside the database.
type Archiver interface {
	ArchiveBattle(ctx context.Context, b *game.Battle) error
}

type BattleOptions struct {
	Clock        game.Clock
	Archiver     Archiver
	StoreTimeout time.Duration
	// Templates are used to mint the AI opponent's cards.
	Templates []game.CardTemplate
}

// BattleService creates battles and drives their rounds. Every call that
// mutates a battle holds that battle's lock for its whole duration.
type BattleService struct {
	repo         BattleRepo
	rng          engine.Rand
	clock        game.Clock
	archiver     Archiver
	storeTimeout time.Duration
	templates    []game.CardTemplate
	locks        *keyedMutex
	newID        func() string
}

func NewBattleService(repo BattleRepo, rng engine.Rand, opts BattleOptions) *BattleService {
	s := &BattleService{
		repo:         repo,
		rng:          rng,
		clock:        opts.Clock,
		archiver:     opts.Archiver,
		storeTimeout: opts.StoreTimeout,
		templates:    opts.Templates,
		locks:        newKeyedMutex(),
		newID:        uuid.NewString,
	}
	if s.clock == nil {
		s.clock = game.RealClock{}
	}
	return s
}

// CreateBattleRequest describes a new battle. CardIDs may be empty, in which
// case the stored deck is used. An empty OpponentUsername means the AI.
type CreateBattleRequest struct {
	PlayerUsername   string
	CardIDs          []uint
	OpponentUsername string
}

func (s *BattleService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// CreateBattle writes a new in-progress battle with an opening log entry.
// No rounds are played.
func (s *BattleService) CreateBattle(ctx context.Context, req CreateBattleRequest) (*game.Battle, error) {
	if req.PlayerUsername == "" {
		return nil, newError(CodeValidation, "player username is required")
	}
	deck, err := s.deckOf(ctx, req.PlayerUsername)
	if err != nil {
		return nil, err
	}
	if len(deck) != game.DeckSize {
		return nil, newError(CodeValidation, constants.ErrDeckIncomplete)
	}
	playerIDs := cardIDs(deck)
	if len(req.CardIDs) > 0 && !sameCards(playerIDs, req.CardIDs) {
		return nil, newError(CodeValidation, constants.ErrDeckMismatch)
	}

	opponent := req.OpponentUsername
	if opponent == "" {
		opponent = game.AIOpponent
	}
	if opponent == req.PlayerUsername {
		return nil, newError(CodeValidation, constants.ErrSelfBattle)
	}
	opponentIDs, err := s.opponentPool(ctx, opponent)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	b := &game.Battle{
		ID:               s.newID(),
		PlayerUsername:   req.PlayerUsername,
		OpponentUsername: opponent,
		PlayerCardIDs:    playerIDs,
		OpponentCardIDs:  opponentIDs,
		Status:           game.StatusInProgress,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	b.AppendLog(engine.DescribeStart(b), now)

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.repo.CreateBattle(sctx, b); err != nil {
		return nil, storeError("create battle", err)
	}
	logging.Info("battle created", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		constants.LogFieldUsername: b.PlayerUsername,
		constants.LogFieldOpponent: b.OpponentUsername,
	})
	return b, nil
}

func (s *BattleService) deckOf(ctx context.Context, username string) ([]game.Card, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	deck, err := s.repo.GetDeck(sctx, username)
	if err != nil {
		return nil, storeError("load deck", err)
	}
	return deck, nil
}

// opponentPool returns the opponent's deck, minting a fresh one for the AI.
func (s *BattleService) opponentPool(ctx context.Context, opponent string) ([]uint, error) {
	if opponent != game.AIOpponent {
		deck, err := s.deckOf(ctx, opponent)
		if err != nil {
			return nil, err
		}
		if len(deck) != game.DeckSize {
			return nil, newError(CodeValidation, constants.ErrOpponentDeck)
		}
		return cardIDs(deck), nil
	}

	if len(s.templates) == 0 {
		return nil, newError(CodeValidation, constants.ErrNoTemplates)
	}
	cards := make([]game.Card, game.DeckSize)
	for i := range cards {
		cards[i] = s.templates[s.rng.Intn(len(s.templates))].Mint(game.AIOpponent)
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.repo.CreateCards(sctx, cards); err != nil {
		return nil, storeError("mint opponent deck", err)
	}
	return cardIDs(cards), nil
}

// GetStatus returns the stored battle without locking or mutating it.
func (s *BattleService) GetStatus(ctx context.Context, battleID string) (*game.Battle, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	b, err := s.repo.GetBattle(sctx, battleID)
	if err != nil {
		return nil, storeError("load battle", err)
	}
	return b, nil
}

// loadActive loads a battle for mutation. A completed battle is returned
// together with ErrConflict.
func (s *BattleService) loadActive(ctx context.Context, battleID string) (*game.Battle, error) {
	b, err := s.GetStatus(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if b.IsCompleted() {
		return b, newError(CodeConflict, constants.ErrBattleCompleted)
	}
	return b, nil
}

// RunBattle plays rounds until a pool is empty or the round ceiling is hit.
func (s *BattleService) RunBattle(ctx context.Context, battleID string) (*game.Battle, error) {
	unlock := s.locks.Lock(battleID)
	defer unlock()

	b, err := s.loadActive(ctx, battleID)
	if err != nil {
		return b, err
	}
	for {
		done, err := s.settle(ctx, b)
		if err != nil || done {
			return b, err
		}
		if err := s.playRound(ctx, b); err != nil {
			return b, err
		}
	}
}

// PlayRound plays exactly one round and completes the battle when that round
// decided it.
func (s *BattleService) PlayRound(ctx context.Context, battleID string) (*game.Battle, error) {
	unlock := s.locks.Lock(battleID)
	defer unlock()

	b, err := s.loadActive(ctx, battleID)
	if err != nil {
		return b, err
	}
	if done, err := s.settle(ctx, b); err != nil || done {
		return b, err
	}
	if err := s.playRound(ctx, b); err != nil {
		return b, err
	}
	_, err = s.settle(ctx, b)
	return b, err
}

// UsePowerUp spends the player's unused power-up on the next round of battleID.
func (s *BattleService) UsePowerUp(ctx context.Context, battleID, username string) (*game.Battle, error) {
	unlock := s.locks.Lock(battleID)
	defer unlock()

	b, err := s.loadActive(ctx, battleID)
	if err != nil {
		return b, err
	}
	if b.PlayerUsername != username {
		return b, newError(CodeValidation, constants.ErrNotBattlePlayer)
	}
	if b.PlayerPowerUp {
		return b, newError(CodeConflict, constants.ErrPowerUpActive)
	}

	sctx, cancel := s.storeCtx(ctx)
	err = s.repo.ConsumePowerUp(sctx, username, b.ID)
	cancel()
	if errors.Is(err, storage.ErrNotFound) {
		return b, newError(CodeValidation, constants.ErrNoPowerUp)
	}
	if err != nil {
		return b, storeError("consume power-up", err)
	}

	b.PlayerPowerUp = true
	b.AppendLog(username+" activates double damage for the next round.", s.clock.Now())
	if err := s.save(ctx, b); err != nil {
		return b, err
	}
	return b, nil
}

// settle completes the battle when a pool is empty or the ceiling is reached.
func (s *BattleService) settle(ctx context.Context, b *game.Battle) (bool, error) {
	if winner, ok := engine.CheckTerminal(b); ok {
		return true, s.complete(ctx, b, winner)
	}
	if b.Rounds >= engine.MaxRounds {
		return true, s.complete(ctx, b, game.SideNone)
	}
	return false, nil
}

func (s *BattleService) playRound(ctx context.Context, b *game.Battle) error {
	round := b.Rounds + 1
	playerID, opponentID := engine.Draw(b, s.rng)

	missing := playerID
	playerCard, err := s.card(ctx, playerID)
	var opponentCard *game.Card
	if err == nil {
		missing = opponentID
		opponentCard, err = s.card(ctx, opponentID)
	}
	if err == nil {
		return s.resolve(ctx, b, round, *playerCard, *opponentCard)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storeError("load card", err)
	}

	// a card missing from the catalog costs the round but nothing else
	b.Rounds = round
	b.AppendLog(engine.DescribeSkip(round, missing), s.clock.Now())
	logging.Warn("round skipped", err, logging.Fields{
		constants.LogFieldBattleID: b.ID,
		constants.LogFieldRound:    round,
		constants.LogFieldCardID:   missing,
	})
	return s.save(ctx, b)
}

func (s *BattleService) card(ctx context.Context, id uint) (*game.Card, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.repo.GetCard(sctx, id)
}

func (s *BattleService) resolve(ctx context.Context, b *game.Battle, round int, playerCard, opponentCard game.Card) error {
	o := engine.ResolveRound(round, playerCard, opponentCard, b.PlayerPowerUp)
	b.PlayerPowerUp = false

	var transfer *storage.CardTransfer
	if lost, ok := o.LoserCard(); ok {
		loser := game.SidePlayer
		if o.Winner == game.SidePlayer {
			loser = game.SideOpponent
		}
		transfer = &storage.CardTransfer{CardID: lost.ID, From: b.Username(loser), To: b.Username(o.Winner)}
		b.MoveCard(lost.ID, o.Winner)
	}

	b.Rounds = round
	b.AppendLog(engine.DescribeRound(b, o), s.clock.Now())
	b.UpdatedAt = s.clock.Now()

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.repo.SaveRound(sctx, b, transfer); err != nil {
		return storeError("save round", err)
	}
	logging.Debug("round resolved", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		constants.LogFieldRound:    round,
		"player_damage":            o.PlayerDamage,
		"opponent_damage":          o.OpponentDamage,
	})
	return nil
}

// complete performs the terminal transition. The completed state and the
// rating changes are stored together, so a failed write leaves the battle in
// progress for a retry and ratings move exactly once.
func (s *BattleService) complete(ctx context.Context, b *game.Battle, winner game.Side) error {
	now := s.clock.Now()
	if winner == game.SideNone {
		b.AppendLog(engine.DescribeDraw(b), now)
	} else {
		b.AppendLog(engine.DescribeWin(b, winner), now)
	}
	b.Complete(winner, now)
	b.UpdatedAt = now

	var changes []storage.RatingChange
	if winner != game.SideNone {
		loser := game.SidePlayer
		if winner == game.SidePlayer {
			loser = game.SideOpponent
		}
		changes = []storage.RatingChange{
			{Username: b.Username(winner), Delta: RatingWin},
			{Username: b.Username(loser), Delta: RatingLoss},
		}
	}

	sctx, cancel := s.storeCtx(ctx)
	err := s.repo.CompleteBattle(sctx, b, changes)
	cancel()
	if err != nil {
		logging.Error("battle completion failed", err, logging.Fields{constants.LogFieldBattleID: b.ID})
		return storeError("complete battle", err)
	}

	logging.Info("battle completed", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		constants.LogFieldWinner:   b.Winner,
		constants.LogFieldRound:    b.Rounds,
	})
	s.archive(ctx, b)
	return nil
}

func (s *BattleService) save(ctx context.Context, b *game.Battle) error {
	b.UpdatedAt = s.clock.Now()
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.repo.UpdateBattle(sctx, b); err != nil {
		return storeError("update battle", err)
	}
	return nil
}

func (s *BattleService) archive(ctx context.Context, b *game.Battle) {
	if s.archiver == nil {
		return
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.archiver.ArchiveBattle(sctx, b); err != nil {
		logging.Warn("battle archive failed", err, logging.Fields{constants.LogFieldBattleID: b.ID})
	}
}

func cardIDs(cards []game.Card) []uint {
	out := make([]uint, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// sameCards reports whether got holds exactly the ids in want.
func sameCards(want, got []uint) bool {
	if len(want) != len(got) {
		return false
	}
	a := slices.Clone(want)
	b := slices.Clone(got)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
