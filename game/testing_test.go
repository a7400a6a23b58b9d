package game

import (
	"context"

	"guesser/models"

	"github.com/stretchr/testify/mock"
)

// fixedRandom always draws the same secret and evaluates rules in catalog order
type fixedRandom struct {
	secret int
}

func (r fixedRandom) IntN(n int) int {
	return r.secret - 1
}

func (r fixedRandom) Perm(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// mockRecorder is a mock implementation of Recorder
type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, session Session, won bool, owner models.Owner) error {
	args := m.Called(ctx, session, won, owner)
	return args.Error(0)
}
