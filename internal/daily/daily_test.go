package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2025-03-02 05:00 at +10 is still 2025-03-01 in UTC
	assert.Equal(t, "2025-03-01", DateKey(time.Date(2025, 3, 2, 5, 0, 0, 0, loc)))
	assert.Equal(t, "2024-12-31", DateKey(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)))
}

func TestParseDateKey(t *testing.T) {
	d, err := ParseDateKey("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", DateKey(d))

	for _, bad := range []string{"", "yesterday", "2025-13-01", "01-06-2025"} {
		_, err := ParseDateKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchedule_Index(t *testing.T) {
	day := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSchedule("salt")

	tests := []struct {
		name string
		n    int
	}{
		{name: "single", n: 1},
		{name: "small", n: 7},
		{name: "large", n: 2315},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := s.Index(day, tt.n)
			assert.GreaterOrEqual(t, i, 0)
			assert.Less(t, i, tt.n)
			// same UTC day, different hour
			assert.Equal(t, i, s.Index(day.Add(-11*time.Hour), tt.n))
		})
	}

	assert.Equal(t, 0, s.Index(day, 0))
}

func TestSchedule_SaltMatters(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	base := NewSchedule("base").Index(day, 1000)
	differs := false
	for _, salt := range []string{"a", "b", "c", "d", "e", "f"} {
		if NewSchedule(salt).Index(day, 1000) != base {
			differs = true
		}
	}
	assert.True(t, differs)
}

func TestSchedule_Word(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s := NewSchedule("salt")
	list := []string{"crane", "slate", "lunch"}

	w, err := s.Word(list, day)
	require.NoError(t, err)
	assert.Equal(t, list[s.Index(day, 3)], w)

	_, err = s.Word(nil, day)
	assert.ErrorIs(t, err, ErrNoWords)
}
