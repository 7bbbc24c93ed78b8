package listen

import (
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2025-01-15", true},
		{"2024-02-29", true},
		{"2025-12-31", true},
		{"2025-1-15", false},
		{"2025-01-32", false},
		{"2025-02-29", false},
		{"2025-13-01", false},
		{"2025-00-10", false},
		{"25-01-15", false},
		{"2025/01/15", false},
		{"2025-01-15T00:00:00Z", false},
		{" 2025-01-15", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateDate(tt.input))
		})
	}
}

func TestValidateRating(t *testing.T) {
	for _, r := range []float64{0, 10, 7.5, 0.1, 9.99} {
		assert.True(t, ValidateRating(r), "%v", r)
	}
	for _, r := range []float64{-1, 11, -0.01, 10.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.False(t, ValidateRating(r), "%v", r)
	}
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry(" user-1 ", "2025-01-15", "r1", 8.5, "  side two is perfect ")
	require.NoError(t, err)

	id, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, "user-1", e.UserID)
	assert.Equal(t, "side two is perfect", e.Notes)

	other, err := NewEntry("user-1", "2025-01-16", "r2", 6, "")
	require.NoError(t, err)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestNewEntry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		date    string
		albumID string
		rating  float64
		notes   string
		errMsg  string
	}{
		{"missing user", "", "2025-01-15", "r1", 5, "", "user id"},
		{"bad date", "u1", "2025-01-32", "r1", 5, "", "invalid date"},
		{"missing album", "u1", "2025-01-15", " ", 5, "", "album id"},
		{"rating too high", "u1", "2025-01-15", "r1", 11, "", "rating"},
		{"rating not a number", "u1", "2025-01-15", "r1", math.NaN(), "", "rating"},
		{"notes too long", "u1", "2025-01-15", "r1", 5, strings.Repeat("x", MaxNotesLength+1), "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEntry(tt.userID, tt.date, tt.albumID, tt.rating, tt.notes)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEntry_ValidateRejectsBadID(t *testing.T) {
	e := Entry{ID: "not-a-uuid", UserID: "u1", Date: "2025-01-15", AlbumID: "r1", Rating: 5}
	assert.Error(t, e.Validate())

	e.ID = uuid.NewString()
	assert.NoError(t, e.Validate())
}
