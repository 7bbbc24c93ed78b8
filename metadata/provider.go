package metadata

import (
	"sort"
	"strings"

	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// Wire shapes of the metadata provider's JSON API. Only the fields the
// cache keeps are decoded.

type mbArtist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Country        string `json:"country"`
	Disambiguation string `json:"disambiguation"`
}

type mbArtistCredit struct {
	Name       string   `json:"name"`
	JoinPhrase string   `json:"joinphrase"`
	Artist     mbArtist `json:"artist"`
}

type mbReleaseGroup struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	PrimaryType      string           `json:"primary-type"`
	FirstReleaseDate string           `json:"first-release-date"`
	ArtistCredit     []mbArtistCredit `json:"artist-credit"`
}

type mbReleaseGroupSearch struct {
	Count         int              `json:"count"`
	ReleaseGroups []mbReleaseGroup `json:"release-groups"`
}

type mbTrack struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	Length   int    `json:"length"`
	Position int    `json:"position"`
}

type mbMedium struct {
	Position int       `json:"position"`
	Tracks   []mbTrack `json:"tracks"`
}

type mbRelease struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Date         string           `json:"date"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
	ReleaseGroup *mbReleaseGroup  `json:"release-group"`
	Media        []mbMedium       `json:"media"`
}

type mbReleaseList struct {
	Count    int         `json:"release-count"`
	Releases []mbRelease `json:"releases"`
}

type caaThumbnails map[string]string

type caaImage struct {
	Front      bool          `json:"front"`
	Image      string        `json:"image"`
	Thumbnails caaThumbnails `json:"thumbnails"`
}

type caaImageList struct {
	Images []caaImage `json:"images"`
}

// creditName renders an artist credit the way the provider displays it
func creditName(credits []mbArtistCredit) string {
	var b strings.Builder
	for _, c := range credits {
		name := c.Name
		if name == "" {
			name = c.Artist.Name
		}
		b.WriteString(name)
		b.WriteString(c.JoinPhrase)
	}
	return strings.TrimSpace(b.String())
}

func creditArtistID(credits []mbArtistCredit) string {
	if len(credits) == 0 {
		return ""
	}
	return credits[0].Artist.ID
}

func (a mbArtist) toModel() models.Artist {
	return models.Artist{
		ID:             a.ID,
		Name:           a.Name,
		Country:        a.Country,
		Disambiguation: a.Disambiguation,
	}
}

func (rg mbReleaseGroup) toModel() models.ReleaseGroup {
	return models.ReleaseGroup{
		ID:               rg.ID,
		Title:            rg.Title,
		ArtistName:       creditName(rg.ArtistCredit),
		ArtistID:         creditArtistID(rg.ArtistCredit),
		Type:             rg.PrimaryType,
		FirstReleaseDate: rg.FirstReleaseDate,
	}
}

func (r mbRelease) toModel() models.Album {
	album := models.Album{
		ID:          r.ID,
		Title:       r.Title,
		ArtistName:  creditName(r.ArtistCredit),
		ArtistID:    creditArtistID(r.ArtistCredit),
		ReleaseDate: r.Date,
	}
	if r.ReleaseGroup != nil {
		album.ReleaseGroupID = r.ReleaseGroup.ID
	}

	position := 0
	for _, medium := range r.Media {
		for _, track := range medium.Tracks {
			position++
			album.Tracks = append(album.Tracks, models.Track{
				ID:       track.ID,
				Number:   track.Number,
				Title:    track.Title,
				LengthMs: track.Length,
				Position: position,
			})
		}
	}
	return album
}

// earliestRelease picks the release with the earliest date. Releases without
// a date sort after every dated release.
func earliestRelease(releases []mbRelease) (mbRelease, bool) {
	if len(releases) == 0 {
		return mbRelease{}, false
	}
	sorted := make([]mbRelease, len(releases))
	copy(sorted, releases)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Date, sorted[j].Date
		switch {
		case a == "":
			return false
		case b == "":
			return true
		default:
			return a < b
		}
	})
	return sorted[0], true
}

// pick chooses the front image, else the first one, and prefers the mid-size
// thumbnail over the original.
func (l caaImageList) pick() (string, bool) {
	if len(l.Images) == 0 {
		return "", false
	}
	chosen := l.Images[0]
	for _, img := range l.Images {
		if img.Front {
			chosen = img
			break
		}
	}
	for _, size := range []string{"500", "large"} {
		if u := chosen.Thumbnails[size]; u != "" {
			return u, true
		}
	}
	if chosen.Image != "" {
		return chosen.Image, true
	}
	return "", false
}
