package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/logging"
	"github.com/ericogr/mtcg/internal/storage"
)

// Economy holds the starting balances and package pricing.
type Economy struct {
	StartCoins  int
	StartElo    int
	PackageCost int
	PackageSize int
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *game.User) error
	GetUser(ctx context.Context, username string) (*game.User, error)
}

func validUsername(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	return strings.IndexFunc(name, unicode.IsSpace) < 0
}

// RegisterUser creates a player with the starting coins and rating.
func RegisterUser(ctx context.Context, repo UserRepo, econ Economy, username, password string) (*game.User, error) {
	if !validUsername(username) || strings.EqualFold(username, game.AIOpponent) {
		return nil, newError(CodeValidation, constants.ErrUsernameInvalid)
	}
	if password == "" {
		return nil, newError(CodeValidation, constants.ErrPasswordRequired)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, wrapError(CodePersistence, "hash password", err)
	}
	u := &game.User{
		Username:     username,
		PasswordHash: string(hash),
		Coins:        econ.StartCoins,
		Elo:          econ.StartElo,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, wrapError(CodeConflict, constants.ErrUsernameTaken, err)
		}
		return nil, storeError("create user", err)
	}
	logging.Info("user registered", logging.Fields{constants.LogFieldUsername: username})
	return u, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords produce the same error.
func Authenticate(ctx context.Context, repo UserRepo, username, password string) (*game.User, error) {
	u, err := repo.GetUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newError(CodeUnauthorized, constants.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, storeError("load user", err)
	}
	if u.IsSystem || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, newError(CodeUnauthorized, constants.ErrInvalidCredentials)
	}
	return u, nil
}
