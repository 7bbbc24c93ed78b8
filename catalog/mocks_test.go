package catalog

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kengibson1111/go-album-metadata-cache/internal/models"
)

// MockUpstream is a mock implementation of Upstream
type MockUpstream struct {
	mock.Mock
}

var _ Upstream = (*MockUpstream)(nil)

func (m *MockUpstream) SearchDetailed(ctx context.Context, query string, limit int) (*models.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	result, _ := args.Get(0).(*models.SearchResult)
	return result, args.Error(1)
}

func (m *MockUpstream) GetRelease(ctx context.Context, externalID string) (*models.Album, bool, error) {
	args := m.Called(ctx, externalID)
	album, _ := args.Get(0).(*models.Album)
	return album, args.Bool(1), args.Error(2)
}

func (m *MockUpstream) GetArtist(ctx context.Context, externalID string) (*models.Artist, bool, error) {
	args := m.Called(ctx, externalID)
	artist, _ := args.Get(0).(*models.Artist)
	return artist, args.Bool(1), args.Error(2)
}

func (m *MockUpstream) GetArtistReleases(ctx context.Context, externalID string, limit int) ([]models.Album, error) {
	args := m.Called(ctx, externalID, limit)
	albums, _ := args.Get(0).([]models.Album)
	return albums, args.Error(1)
}

func (m *MockUpstream) GetReleaseGroup(ctx context.Context, externalID string) (*models.ReleaseGroup, bool, error) {
	args := m.Called(ctx, externalID)
	group, _ := args.Get(0).(*models.ReleaseGroup)
	return group, args.Bool(1), args.Error(2)
}

func (m *MockUpstream) GetReleaseGroupReleases(ctx context.Context, groupID string, limit int) ([]models.Album, error) {
	args := m.Called(ctx, groupID, limit)
	albums, _ := args.Get(0).([]models.Album)
	return albums, args.Error(1)
}
