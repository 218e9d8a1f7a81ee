package lists

import (
	"fmt"
	"os"
	"testing"

	"github.com/cliptide/backend/internal/database"
	apierrors "github.com/cliptide/backend/internal/errors"
	"github.com/cliptide/backend/internal/metrics"
	"github.com/cliptide/backend/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ListServiceSuite exercises watch history, watch later and playlist
// contents against Postgres
type ListServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	user    *models.User
	videos  []*models.Video
}

func (suite *ListServiceSuite) SetupSuite() {
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "cliptide_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		dsn += " password=" + password
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		suite.T().Skipf("Skipping list tests: database not available (%v)", err)
		return
	}

	require.NoError(suite.T(), database.Migrate(db))
	suite.db = db
	suite.service = NewService(db)
}

func (suite *ListServiceSuite) SetupTest() {
	if suite.db == nil {
		suite.T().Skip("database not available")
	}
	suite.db.Exec("DELETE FROM watch_history")
	suite.db.Exec("DELETE FROM watch_later")
	suite.db.Exec("DELETE FROM playlist_videos")
	suite.db.Exec("DELETE FROM playlists")
	suite.db.Exec("DELETE FROM videos")
	suite.db.Exec("DELETE FROM users")

	suite.user = &models.User{Email: "viewer@test.com", Username: "viewer", FullName: "Viewer"}
	require.NoError(suite.T(), suite.db.Create(suite.user).Error)

	suite.videos = nil
	for i := 0; i < 55; i++ {
		v := &models.Video{
			OwnerID:     suite.user.ID,
			Title:       fmt.Sprintf("Video %d", i),
			VideoURL:    fmt.Sprintf("https://cdn.test/v%d.mp4", i),
			IsPublished: true,
		}
		require.NoError(suite.T(), suite.db.Create(v).Error)
		suite.videos = append(suite.videos, v)
	}
}

func (suite *ListServiceSuite) historyVideoIDs() []string {
	entries, err := suite.service.WatchHistory(suite.user.ID, 0)
	require.NoError(suite.T(), err)
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.VideoID
	}
	return ids
}

func (suite *ListServiceSuite) TestRecordWatchHeadInsert() {
	for i := 0; i < 3; i++ {
		require.NoError(suite.T(), suite.service.RecordWatch(suite.user.ID, suite.videos[i].ID))
	}

	ids := suite.historyVideoIDs()
	require.Len(suite.T(), ids, 3)
	assert.Equal(suite.T(), suite.videos[2].ID, ids[0])
	assert.Equal(suite.T(), suite.videos[1].ID, ids[1])
	assert.Equal(suite.T(), suite.videos[0].ID, ids[2])
}

func (suite *ListServiceSuite) TestRecordWatchPromotesRewatch() {
	for i := 0; i < 3; i++ {
		require.NoError(suite.T(), suite.service.RecordWatch(suite.user.ID, suite.videos[i].ID))
	}

	// Rewatch the oldest video; it should move to the head without
	// growing the list
	require.NoError(suite.T(), suite.service.RecordWatch(suite.user.ID, suite.videos[0].ID))

	ids := suite.historyVideoIDs()
	require.Len(suite.T(), ids, 3)
	assert.Equal(suite.T(), suite.videos[0].ID, ids[0])
	assert.Equal(suite.T(), suite.videos[2].ID, ids[1])
	assert.Equal(suite.T(), suite.videos[1].ID, ids[2])
}

func (suite *ListServiceSuite) TestRecordWatchCountsRewatchSeparately() {
	watchCounter := metrics.Get().WatchEventsTotal.WithLabelValues("watch")
	rewatchCounter := metrics.Get().WatchEventsTotal.WithLabelValues("rewatch")
	watchBefore := testutil.ToFloat64(watchCounter)
	rewatchBefore := testutil.ToFloat64(rewatchCounter)

	require.NoError(suite.T(), suite.service.RecordWatch(suite.user.ID, suite.videos[0].ID))
	require.NoError(suite.T(), suite.service.RecordWatch(suite.user.ID, suite.videos[0].ID))

	assert.Equal(suite.T(), watchBefore+1, testutil.ToFloat64(watchCounter))
	assert.Equal(suite.T(), rewatchBefore+1, testutil.ToFloat64(rewatchCounter))
}

func (suite *ListServiceSuite) TestHistoryCappedAtLimit() {
	for _, v := range suite.videos {
		require.NoError(suite.T(), suite.service.RecordWatch(suite.user.ID, v.ID))
	}

	ids := suite.historyVideoIDs()
	require.Len(suite.T(), ids, models.WatchHistoryLimit)

	// Newest watch is at the head; the 5 oldest fell off the tail
	assert.Equal(suite.T(), suite.videos[54].ID, ids[0])
	assert.Equal(suite.T(), suite.videos[5].ID, ids[models.WatchHistoryLimit-1])
	assert.NotContains(suite.T(), ids, suite.videos[0].ID)
	assert.NotContains(suite.T(), ids, suite.videos[4].ID)
}

func (suite *ListServiceSuite) TestRecordWatchUnknownVideo() {
	err := suite.service.RecordWatch(suite.user.ID, "11111111-1111-1111-1111-111111111111")
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrNotFound, apiErr.Code)
}

func (suite *ListServiceSuite) TestClearWatchHistory() {
	require.NoError(suite.T(), suite.service.RecordWatch(suite.user.ID, suite.videos[0].ID))
	require.NoError(suite.T(), suite.service.ClearWatchHistory(suite.user.ID))
	assert.Empty(suite.T(), suite.historyVideoIDs())
}

func (suite *ListServiceSuite) TestWatchLaterDuplicateConflicts() {
	require.NoError(suite.T(), suite.service.AddToWatchLater(suite.user.ID, suite.videos[0].ID))

	err := suite.service.AddToWatchLater(suite.user.ID, suite.videos[0].ID)
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrConflict, apiErr.Code)
}

func (suite *ListServiceSuite) TestWatchLaterRemoveIsIdempotent() {
	require.NoError(suite.T(), suite.service.AddToWatchLater(suite.user.ID, suite.videos[0].ID))
	require.NoError(suite.T(), suite.service.RemoveFromWatchLater(suite.user.ID, suite.videos[0].ID))

	// Removing again succeeds quietly
	require.NoError(suite.T(), suite.service.RemoveFromWatchLater(suite.user.ID, suite.videos[0].ID))

	entries, err := suite.service.WatchLater(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), entries)
}

func (suite *ListServiceSuite) TestWatchLaterNewestFirst() {
	for i := 0; i < 3; i++ {
		require.NoError(suite.T(), suite.service.AddToWatchLater(suite.user.ID, suite.videos[i].ID))
	}

	entries, err := suite.service.WatchLater(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), entries, 3)
	assert.Equal(suite.T(), suite.videos[2].ID, entries[0].VideoID)
}

func (suite *ListServiceSuite) createPlaylist(name string) *models.Playlist {
	playlist := &models.Playlist{Name: name, OwnerID: suite.user.ID}
	require.NoError(suite.T(), suite.db.Create(playlist).Error)
	return playlist
}

func (suite *ListServiceSuite) TestPlaylistPreservesInsertionOrder() {
	playlist := suite.createPlaylist("Favorites")

	order := []int{2, 0, 1}
	for _, i := range order {
		require.NoError(suite.T(), suite.service.AddToPlaylist(playlist.ID, suite.user.ID, suite.videos[i].ID))
	}

	entries, err := suite.service.PlaylistVideos(playlist.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), entries, 3)
	assert.Equal(suite.T(), suite.videos[2].ID, entries[0].VideoID)
	assert.Equal(suite.T(), suite.videos[0].ID, entries[1].VideoID)
	assert.Equal(suite.T(), suite.videos[1].ID, entries[2].VideoID)
}

func (suite *ListServiceSuite) TestPlaylistDuplicateConflicts() {
	playlist := suite.createPlaylist("Favorites")
	require.NoError(suite.T(), suite.service.AddToPlaylist(playlist.ID, suite.user.ID, suite.videos[0].ID))

	err := suite.service.AddToPlaylist(playlist.ID, suite.user.ID, suite.videos[0].ID)
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrConflict, apiErr.Code)
}

func (suite *ListServiceSuite) TestPlaylistRemoveAbsentVideo() {
	playlist := suite.createPlaylist("Favorites")

	err := suite.service.RemoveFromPlaylist(playlist.ID, suite.user.ID, suite.videos[0].ID)
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrNotFound, apiErr.Code)
}

func (suite *ListServiceSuite) TestPlaylistOwnershipEnforced() {
	playlist := suite.createPlaylist("Favorites")

	other := &models.User{Email: "other@test.com", Username: "other", FullName: "Other"}
	require.NoError(suite.T(), suite.db.Create(other).Error)

	err := suite.service.AddToPlaylist(playlist.ID, other.ID, suite.videos[0].ID)
	apiErr := apierrors.As(err)
	require.NotNil(suite.T(), apiErr)
	assert.Equal(suite.T(), apierrors.ErrForbidden, apiErr.Code)
}

func TestListServiceSuite(t *testing.T) {
	suite.Run(t, new(ListServiceSuite))
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
