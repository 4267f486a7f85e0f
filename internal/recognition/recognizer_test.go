package recognition

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func candidates(n int) []models.Student {
	out := make([]models.Student, n)
	for i := range out {
		out[i] = models.Student{ID: string(rune('a' + i)), FullName: "Student"}
	}
	return out
}

func TestStubAlwaysMatchesAtFullRate(t *testing.T) {
	stub := NewStub(StubConfig{SuccessRate: 1}, rand.NewSource(1))

	for i := 0; i < 20; i++ {
		match, err := stub.Identify(context.Background(), Frame{}, candidates(3))
		require.NoError(t, err)
		require.NotNil(t, match)
	}
}

func TestStubNeverMatchesAtZeroRate(t *testing.T) {
	stub := NewStub(StubConfig{SuccessRate: 0}, rand.NewSource(1))

	for i := 0; i < 20; i++ {
		match, err := stub.Identify(context.Background(), Frame{}, candidates(3))
		require.NoError(t, err)
		assert.Nil(t, match)
	}
}

func TestStubEmptyPool(t *testing.T) {
	stub := NewStub(StubConfig{SuccessRate: 1}, rand.NewSource(1))

	match, err := stub.Identify(context.Background(), Frame{}, nil)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestStubDeterministicWithSeed(t *testing.T) {
	pool := candidates(5)

	first := NewStub(StubConfig{SuccessRate: 0.5}, rand.NewSource(42))
	second := NewStub(StubConfig{SuccessRate: 0.5}, rand.NewSource(42))

	for i := 0; i < 10; i++ {
		a, err := first.Identify(context.Background(), Frame{}, pool)
		require.NoError(t, err)
		b, err := second.Identify(context.Background(), Frame{}, pool)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestStubHonorsContextDuringDelay(t *testing.T) {
	stub := NewStub(StubConfig{Delay: time.Second, SuccessRate: 1}, rand.NewSource(1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := stub.Identify(ctx, Frame{}, candidates(2))
	require.Error(t, err)
}
