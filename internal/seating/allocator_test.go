package seating

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func hall(rows, seatsPerRow int) models.Hall {
	return models.Hall{ID: "hall-1", Name: "Aula Magna", Rows: rows, SeatsPerRow: seatsPerRow}
}

func TestAllocateFillsRowMajor(t *testing.T) {
	plan := Allocate(hall(2, 2), []string{"A", "B", "C"})
	require.Len(t, plan, 4)

	assert.Equal(t, 1, plan[0].Row)
	assert.Equal(t, 1, plan[0].Seat)
	assert.Equal(t, "A", *plan[0].StudentID)
	assert.Equal(t, 1, plan[1].Row)
	assert.Equal(t, 2, plan[1].Seat)
	assert.Equal(t, "B", *plan[1].StudentID)
	assert.Equal(t, 2, plan[2].Row)
	assert.Equal(t, 1, plan[2].Seat)
	assert.Equal(t, "C", *plan[2].StudentID)
	assert.Equal(t, 2, plan[3].Row)
	assert.Equal(t, 2, plan[3].Seat)
	assert.Nil(t, plan[3].StudentID)
}

func TestAllocateNoStudents(t *testing.T) {
	plan := Allocate(hall(2, 2), nil)
	require.Len(t, plan, 4)
	for _, a := range plan {
		assert.Nil(t, a.StudentID)
	}
	assert.Equal(t, 0, Seated(plan))
}

func TestAllocateUnderCapacity(t *testing.T) {
	h := hall(3, 4)
	students := make([]string, 7)
	for i := range students {
		students[i] = fmt.Sprintf("s-%d", i)
	}

	plan := Allocate(h, students)
	require.Len(t, plan, 12)
	assert.Equal(t, 7, Seated(plan))

	// every occupied seat is distinct and the input order is preserved
	seen := make(map[models.SeatRef]string)
	for _, a := range plan {
		ref := models.SeatRef{Row: a.Row, Seat: a.Seat}
		_, dup := seen[ref]
		require.False(t, dup, "duplicate seat %v", ref)
		if a.Occupied() {
			seen[ref] = *a.StudentID
		}
	}
	assert.Equal(t, "s-0", seen[models.SeatRef{Row: 1, Seat: 1}])
	assert.Equal(t, "s-4", seen[models.SeatRef{Row: 2, Seat: 1}])
	assert.Equal(t, "s-6", seen[models.SeatRef{Row: 2, Seat: 3}])
}

func TestAllocateTruncatesOverflow(t *testing.T) {
	students := make([]string, 10)
	for i := range students {
		students[i] = fmt.Sprintf("s-%d", i)
	}

	plan := Allocate(hall(2, 3), students)
	require.Len(t, plan, 6)
	assert.Equal(t, 6, Seated(plan))
	assert.Equal(t, "s-5", *plan[5].StudentID)
}

func TestAllocateDeterministic(t *testing.T) {
	students := []string{"x", "y", "z"}
	first := Allocate(hall(2, 2), students)
	second := Allocate(hall(2, 2), students)
	assert.Equal(t, first, second)
}

func TestAllocateInvalidDimensions(t *testing.T) {
	assert.Nil(t, Allocate(models.Hall{Rows: 0, SeatsPerRow: 5}, []string{"A"}))
	assert.Nil(t, Allocate(models.Hall{Rows: 3, SeatsPerRow: -1}, []string{"A"}))
}

func TestNextFreeEmptyHall(t *testing.T) {
	ref, ok := NextFree(hall(2, 2), nil)
	require.True(t, ok)
	assert.Equal(t, models.SeatRef{Row: 1, Seat: 1}, ref)
}

func TestNextFreeSkipsOccupied(t *testing.T) {
	h := hall(2, 2)
	plan := Allocate(h, []string{"A", "B"})

	ref, ok := NextFree(h, plan)
	require.True(t, ok)
	assert.Equal(t, models.SeatRef{Row: 2, Seat: 1}, ref)
}

func TestNextFreeReturnsFirstGap(t *testing.T) {
	h := hall(2, 2)
	plan := Allocate(h, []string{"A", "B", "C", "D"})

	// free up only (1,1); the scan must land there, not on a later seat
	plan[0].StudentID = nil

	ref, ok := NextFree(h, plan)
	require.True(t, ok)
	assert.Equal(t, models.SeatRef{Row: 1, Seat: 1}, ref)
}

func TestNextFreeFullHall(t *testing.T) {
	h := hall(2, 2)
	plan := Allocate(h, []string{"A", "B", "C", "D"})

	_, ok := NextFree(h, plan)
	assert.False(t, ok)
}

func TestNextFreeIgnoresEmptyEntries(t *testing.T) {
	h := hall(1, 3)
	// a wholesale plan carries empty entries; they must not count as taken
	plan := Allocate(h, []string{"A"})

	ref, ok := NextFree(h, plan)
	require.True(t, ok)
	assert.Equal(t, models.SeatRef{Row: 1, Seat: 2}, ref)
}
