package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/storage"
)

type stubScores struct {
	top   []game.User
	stats map[string]*game.PlayerStats
}

func (s stubScores) TopPlayers(_ context.Context, limit int) ([]game.User, error) {
	if limit < len(s.top) {
		return s.top[:limit], nil
	}
	return s.top, nil
}

func (s stubScores) PlayerStats(_ context.Context, username string) (*game.PlayerStats, error) {
	st, ok := s.stats[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return st, nil
}

func TestScoreboardAndStats(t *testing.T) {
	repo := stubScores{
		top:   []game.User{{Username: "alice", Elo: 103}, {Username: "bob", Elo: 95}},
		stats: map[string]*game.PlayerStats{"alice": {Username: "alice", Elo: 103, Wins: 1}},
	}

	board, err := Scoreboard(context.Background(), repo, 1)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "alice", board[0].Username)

	st, err := Stats(context.Background(), repo, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Wins)

	_, err = Stats(context.Background(), repo, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
}
