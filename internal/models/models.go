package models

import (
	"fmt"
	"strings"
)

// Release-group primary types the album log cares about.
const (
	ReleaseGroupTypeAlbum = "Album"
	ReleaseGroupTypeEP    = "EP"
)

// Album is a single release the user can log a listen against.
type Album struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	ArtistName     string  `json:"artistName"`
	ArtistID       string  `json:"artistId"`
	ReleaseDate    string  `json:"releaseDate,omitempty"`
	CoverArtURL    string  `json:"coverArtUrl,omitempty"`
	Tracks         []Track `json:"tracks,omitempty"`
	ReleaseGroupID string  `json:"releaseGroupId,omitempty"`
}

// Track is one entry of an album's track list
type Track struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	LengthMs int    `json:"lengthMs,omitempty"`
	Position int    `json:"position"`
}

// Artist is a performer as described by the metadata provider
type Artist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Country        string `json:"country,omitempty"`
	Disambiguation string `json:"disambiguation,omitempty"`
}

// ReleaseGroup groups the pressings and editions of one conceptual album
type ReleaseGroup struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ArtistName       string `json:"artistName"`
	ArtistID         string `json:"artistId"`
	Type             string `json:"type,omitempty"`
	FirstReleaseDate string `json:"firstReleaseDate,omitempty"`
}

// SearchResult is the aggregate returned for one query. It is cached whole and
// never updated when the underlying entities change.
type SearchResult struct {
	Albums  []Album  `json:"albums"`
	Artists []Artist `json:"artists"`
	Total   int      `json:"total"`
}

// Validate validates the Album data integrity
func (a *Album) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("album ID cannot be empty")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("album title cannot be empty")
	}
	for i, track := range a.Tracks {
		if track.Title == "" {
			return fmt.Errorf("track %d of album %s has no title", i, a.ID)
		}
	}
	return nil
}

// Validate validates the Artist data integrity
func (a *Artist) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("artist ID cannot be empty")
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("artist name cannot be empty")
	}
	return nil
}

// Validate validates the ReleaseGroup data integrity
func (rg *ReleaseGroup) Validate() error {
	if strings.TrimSpace(rg.ID) == "" {
		return fmt.Errorf("release group ID cannot be empty")
	}
	if strings.TrimSpace(rg.Title) == "" {
		return fmt.Errorf("release group title cannot be empty")
	}
	return nil
}

// IsAlbumOrEP reports whether the group's type is relevant to the album log.
// Groups without a type are kept since the provider leaves it unset for many
// older entries.
func (rg *ReleaseGroup) IsAlbumOrEP() bool {
	switch rg.Type {
	case "", ReleaseGroupTypeAlbum, ReleaseGroupTypeEP:
		return true
	default:
		return false
	}
}

// AlbumFromReleaseGroup synthesizes a degraded Album for a group whose
// releases could not be resolved. The group's first release date is used and
// no cover art is attached.
func AlbumFromReleaseGroup(rg ReleaseGroup) Album {
	return Album{
		ID:             rg.ID,
		Title:          rg.Title,
		ArtistName:     rg.ArtistName,
		ArtistID:       rg.ArtistID,
		ReleaseDate:    rg.FirstReleaseDate,
		ReleaseGroupID: rg.ID,
	}
}

// IsEmpty reports whether the result holds neither albums nor artists
func (sr *SearchResult) IsEmpty() bool {
	return sr == nil || (len(sr.Albums) == 0 && len(sr.Artists) == 0)
}
