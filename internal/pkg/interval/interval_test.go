package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	a := Span{From: day(2024, 1, 1), To: day(2024, 6, 30)}

	assert.True(t, a.Overlaps(Span{From: day(2024, 3, 1), To: day(2024, 4, 1)}))
	assert.True(t, a.Overlaps(Span{From: day(2023, 12, 1), To: day(2024, 1, 1)}), "shared endpoint counts")
	assert.True(t, a.Overlaps(Span{From: day(2024, 6, 30), To: FarFuture}), "shared endpoint counts")
	assert.False(t, a.Overlaps(Span{From: day(2024, 7, 1), To: day(2024, 8, 1)}))
	assert.False(t, a.Overlaps(Span{From: day(2023, 1, 1), To: day(2023, 12, 31)}))
}

func TestOverlapsIsSymmetric(t *testing.T) {
	a := Span{From: day(2024, 1, 1), To: day(2024, 6, 30)}
	b := Span{From: day(2024, 5, 1), To: FarFuture}
	assert.Equal(t, a.Overlaps(b), b.Overlaps(a))
}

func TestContains(t *testing.T) {
	s := Span{From: day(2024, 1, 1), To: day(2024, 6, 30)}
	assert.True(t, s.Contains(day(2024, 1, 1)))
	assert.True(t, s.Contains(day(2024, 6, 30)))
	assert.True(t, s.Contains(day(2024, 3, 15)))
	assert.False(t, s.Contains(day(2023, 12, 31)))
	assert.False(t, s.Contains(day(2024, 7, 1)))
}

func TestNormalize(t *testing.T) {
	open := Normalize(day(2024, 1, 1), nil)
	assert.Equal(t, FarFuture, open.To)
	assert.True(t, open.OpenEnded())

	end := day(2024, 6, 30)
	closed := Normalize(day(2024, 1, 1), &end)
	assert.Equal(t, end, closed.To)
	assert.False(t, closed.OpenEnded())
}
