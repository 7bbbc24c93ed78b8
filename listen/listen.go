// Package listen validates entries of the daily listening log: one album per
// user per calendar day, with a rating and free-form notes.
package listen

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the only accepted date format
const DateLayout = "2006-01-02"

// Rating bounds, inclusive
const (
	MinRating = 0
	MaxRating = 10
)

// MaxNotesLength bounds the notes attached to an entry, in bytes
const MaxNotesLength = 2000

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate reports whether s is a real calendar date written as
// YYYY-MM-DD with zero padding.
func ValidateDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidateRating reports whether r is a finite rating within bounds
func ValidateRating(r float64) bool {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return false
	}
	return r >= MinRating && r <= MaxRating
}

// Entry is one logged listen
type Entry struct {
	ID      string  `json:"id"`
	UserID  string  `json:"userId"`
	Date    string  `json:"date"`
	AlbumID string  `json:"albumId"`
	Rating  float64 `json:"rating"`
	Notes   string  `json:"notes,omitempty"`
}

// NewEntry creates a validated entry with a fresh time-ordered id
func NewEntry(userID, date, albumID string, rating float64, notes string) (*Entry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate entry id: %w", err)
	}

	e := &Entry{
		ID:      id.String(),
		UserID:  strings.TrimSpace(userID),
		Date:    date,
		AlbumID: strings.TrimSpace(albumID),
		Rating:  rating,
		Notes:   strings.TrimSpace(notes),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks every field of the entry
func (e *Entry) Validate() error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return fmt.Errorf("invalid entry id %q: %w", e.ID, err)
	}
	if e.UserID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if !ValidateDate(e.Date) {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", e.Date)
	}
	if e.AlbumID == "" {
		return fmt.Errorf("album id cannot be empty")
	}
	if !ValidateRating(e.Rating) {
		return fmt.Errorf("rating must be between %d and %d, got %v", MinRating, MaxRating, e.Rating)
	}
	if len(e.Notes) > MaxNotesLength {
		return fmt.Errorf("notes exceed %d bytes", MaxNotesLength)
	}
	return nil
}
