package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/cliptide/backend/internal/community"
	"github.com/cliptide/backend/internal/database"
	"github.com/cliptide/backend/internal/lists"
	"github.com/cliptide/backend/internal/metrics"
	"github.com/cliptide/backend/internal/middleware"
	"github.com/cliptide/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// HandlersTestSuite exercises the HTTP layer against Postgres
type HandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	handlers *Handlers
	owner    *models.User
	member   *models.User
}

func (suite *HandlersTestSuite) SetupSuite() {
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
		suite.T().Skipf("Skipping handler tests: database not available (%v)", err)
		return
	}

	require.NoError(suite.T(), database.Migrate(db))

	suite.db = db
	suite.handlers = NewHandlers(db, community.NewService(db), lists.NewService(db))

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.setupRoutes()
}

// setupRoutes configures the test router with header-based test auth
func (suite *HandlersTestSuite) setupRoutes() {
	authMiddleware := func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Set("user_id", userID)

		var user models.User
		if err := suite.db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
			c.Abort()
			return
		}
		c.Set("user", &user)
		c.Next()
	}

	suite.router.GET("/api/v1/communities/:communityID", suite.handlers.GetCommunity)
	suite.router.GET("/api/v1/videos", suite.handlers.ListVideos)

	api := suite.router.Group("/api/v1")
	api.Use(authMiddleware)

	api.POST("/communities", suite.handlers.CreateCommunity)
	api.POST("/communities/:communityID/join", suite.handlers.JoinCommunity)
	api.POST("/communities/:communityID/leave", suite.handlers.LeaveCommunity)

	members := api.Group("/communities/:communityID")
	members.Use(middleware.RequireMembership(suite.db))
	members.GET("/members", suite.handlers.ListMembers)

	owner := api.Group("/communities/:communityID")
	owner.Use(middleware.RequireMembership(suite.db, models.RoleOwner))
	owner.GET("/requests", suite.handlers.ListPendingRequests)
	owner.POST("/requests/:membershipID/approve", suite.handlers.ApproveMembership)
	owner.POST("/requests/:membershipID/reject", suite.handlers.RejectMembership)
	owner.POST("/members/:membershipID/remove", suite.handlers.RemoveMember)

	api.POST("/videos/:videoID/watch", suite.handlers.RecordWatch)
	api.GET("/users/me/history", suite.handlers.GetWatchHistory)
	api.POST("/videos/:videoID/watch-later", suite.handlers.AddWatchLater)
	api.DELETE("/videos/:videoID/watch-later", suite.handlers.RemoveWatchLater)
	api.GET("/users/me/watch-later", suite.handlers.GetWatchLater)

	api.POST("/users/:userID/subscribe", suite.handlers.ToggleSubscription)
	api.POST("/videos/:videoID/like", suite.handlers.ToggleLike)
	api.GET("/users/me/likes", suite.handlers.ListLikedVideos)

	api.POST("/playlists", suite.handlers.CreatePlaylist)
	api.GET("/playlists/:playlistID", suite.handlers.GetPlaylist)
	api.POST("/playlists/:playlistID/videos/:videoID", suite.handlers.AddVideoToPlaylist)
	api.DELETE("/playlists/:playlistID/videos/:videoID", suite.handlers.RemoveVideoFromPlaylist)
}

func (suite *HandlersTestSuite) SetupTest() {
	if suite.db == nil {
		suite.T().Skip("database not available")
	}
	for _, table := range []string{
		"watch_history", "watch_later", "playlist_videos", "playlists",
		"likes", "subscriptions", "memberships", "communities", "videos", "users",
	} {
		suite.db.Exec("DELETE FROM " + table)
	}

	suite.owner = &models.User{Email: "owner@test.com", Username: "owner", FullName: "Owner"}
	suite.member = &models.User{Email: "member@test.com", Username: "member", FullName: "Member"}
	require.NoError(suite.T(), suite.db.Create(suite.owner).Error)
	require.NoError(suite.T(), suite.db.Create(suite.member).Error)
}

// request performs a JSON request as the given user and decodes the envelope
func (suite *HandlersTestSuite) request(method, path, userID string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &response)
	return w, response
}

func (suite *HandlersTestSuite) createCommunity(name string) string {
	w, resp := suite.request("POST", "/api/v1/communities", suite.owner.ID, gin.H{
		"name":       name,
		"visibility": "public",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func (suite *HandlersTestSuite) joinAs(communityID, userID string) string {
	w, resp := suite.request("POST", "/api/v1/communities/"+communityID+"/join", userID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func (suite *HandlersTestSuite) TestCreateCommunity() {
	w, resp := suite.request("POST", "/api/v1/communities", suite.owner.ID, gin.H{
		"name": "Night Owls",
	})

	require.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.Equal(suite.T(), true, resp["success"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(suite.T(), "night-owls", data["normalized_name"])
	assert.Equal(suite.T(), suite.owner.ID, data["owner_id"])
}

func (suite *HandlersTestSuite) TestCreateCommunityDuplicateName() {
	suite.createCommunity("Night Owls")

	w, resp := suite.request("POST", "/api/v1/communities", suite.member.ID, gin.H{
		"name": "NIGHT owls!!",
	})

	require.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", resp["code"])
}

func (suite *HandlersTestSuite) TestErrorResponsesCounted() {
	counter := metrics.Get().ErrorsTotal.WithLabelValues("CONFLICT", "/api/v1/communities")
	before := testutil.ToFloat64(counter)

	suite.createCommunity("Night Owls")
	w, _ := suite.request("POST", "/api/v1/communities", suite.member.ID, gin.H{
		"name": "Night Owls",
	})
	require.Equal(suite.T(), http.StatusConflict, w.Code)

	assert.Equal(suite.T(), before+1, testutil.ToFloat64(counter))
}

func (suite *HandlersTestSuite) TestJoinRequiresAuth() {
	communityID := suite.createCommunity("Night Owls")

	w, _ := suite.request("POST", "/api/v1/communities/"+communityID+"/join", "", nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestApproveFlow() {
	communityID := suite.createCommunity("Night Owls")
	membershipID := suite.joinAs(communityID, suite.member.ID)

	w, resp := suite.request("POST",
		"/api/v1/communities/"+communityID+"/requests/"+membershipID+"/approve",
		suite.owner.ID, nil)

	require.Equal(suite.T(), http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(suite.T(), "APPROVED", data["status"])
	assert.NotNil(suite.T(), data["joined_at"])
}

func (suite *HandlersTestSuite) TestNonOwnerCannotApprove() {
	communityID := suite.createCommunity("Night Owls")
	membershipID := suite.joinAs(communityID, suite.member.ID)

	// The requester is not even an approved member yet
	w, _ := suite.request("POST",
		"/api/v1/communities/"+communityID+"/requests/"+membershipID+"/approve",
		suite.member.ID, nil)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestApprovedMemberStillCannotReview() {
	communityID := suite.createCommunity("Night Owls")
	membershipID := suite.joinAs(communityID, suite.member.ID)

	w, _ := suite.request("POST",
		"/api/v1/communities/"+communityID+"/requests/"+membershipID+"/approve",
		suite.owner.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	// A plain member hits the owner-only guard
	third := &models.User{Email: "third@test.com", Username: "third", FullName: "Third"}
	require.NoError(suite.T(), suite.db.Create(third).Error)
	thirdMembership := suite.joinAs(communityID, third.ID)

	w, _ = suite.request("POST",
		"/api/v1/communities/"+communityID+"/requests/"+thirdMembership+"/approve",
		suite.member.ID, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestRejectedCannotRejoin() {
	communityID := suite.createCommunity("Night Owls")
	membershipID := suite.joinAs(communityID, suite.member.ID)

	w, _ := suite.request("POST",
		"/api/v1/communities/"+communityID+"/requests/"+membershipID+"/reject",
		suite.owner.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w, resp := suite.request("POST", "/api/v1/communities/"+communityID+"/join", suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", resp["code"])
}

func (suite *HandlersTestSuite) TestMembersListRequiresMembership() {
	communityID := suite.createCommunity("Night Owls")

	w, _ := suite.request("GET", "/api/v1/communities/"+communityID+"/members", suite.member.ID, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w, _ = suite.request("GET", "/api/v1/communities/"+communityID+"/members", suite.owner.ID, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestOwnerCannotLeave() {
	communityID := suite.createCommunity("Night Owls")

	w, resp := suite.request("POST", "/api/v1/communities/"+communityID+"/leave", suite.owner.ID, nil)
	require.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), "FORBIDDEN", resp["code"])
}

func (suite *HandlersTestSuite) createVideo(title string) string {
	video := &models.Video{
		OwnerID:     suite.owner.ID,
		Title:       title,
		VideoURL:    "https://cdn.test/" + title + ".mp4",
		IsPublished: true,
	}
	require.NoError(suite.T(), suite.db.Create(video).Error)
	return video.ID
}

func (suite *HandlersTestSuite) TestWatchHistoryEndpoint() {
	first := suite.createVideo("first")
	second := suite.createVideo("second")

	w, _ := suite.request("POST", "/api/v1/videos/"+first+"/watch", suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	w, _ = suite.request("POST", "/api/v1/videos/"+second+"/watch", suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	w, resp := suite.request("GET", "/api/v1/users/me/history", suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	entries := resp["data"].([]interface{})
	require.Len(suite.T(), entries, 2)
	head := entries[0].(map[string]interface{})
	assert.Equal(suite.T(), second, head["video_id"])
}

func (suite *HandlersTestSuite) TestWatchLaterDuplicate() {
	videoID := suite.createVideo("later")

	w, _ := suite.request("POST", "/api/v1/videos/"+videoID+"/watch-later", suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w, resp := suite.request("POST", "/api/v1/videos/"+videoID+"/watch-later", suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", resp["code"])

	// Removal is idempotent
	w, _ = suite.request("DELETE", "/api/v1/videos/"+videoID+"/watch-later", suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	w, _ = suite.request("DELETE", "/api/v1/videos/"+videoID+"/watch-later", suite.member.ID, nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestResubscribeAfterUnsubscribe() {
	path := "/api/v1/users/" + suite.owner.ID + "/subscribe"

	w, resp := suite.request("POST", path, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.Equal(suite.T(), true, resp["data"].(map[string]interface{})["subscribed"])

	w, resp = suite.request("POST", path, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), false, resp["data"].(map[string]interface{})["subscribed"])

	// Subscribing again after toggling off must succeed, not conflict
	w, resp = suite.request("POST", path, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.Equal(suite.T(), true, resp["data"].(map[string]interface{})["subscribed"])

	var channel models.User
	require.NoError(suite.T(), suite.db.First(&channel, "id = ?", suite.owner.ID).Error)
	assert.EqualValues(suite.T(), 1, channel.SubscriberCount)
}

func (suite *HandlersTestSuite) TestLikeToggleCycle() {
	videoID := suite.createVideo("liked")
	path := "/api/v1/videos/" + videoID + "/like"

	w, resp := suite.request("POST", path, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.Equal(suite.T(), true, resp["data"].(map[string]interface{})["liked"])

	w, resp = suite.request("POST", path, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), false, resp["data"].(map[string]interface{})["liked"])

	w, resp = suite.request("POST", path, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.Equal(suite.T(), true, resp["data"].(map[string]interface{})["liked"])

	var video models.Video
	require.NoError(suite.T(), suite.db.First(&video, "id = ?", videoID).Error)
	assert.EqualValues(suite.T(), 1, video.LikeCount)

	w, resp = suite.request("GET", "/api/v1/users/me/likes", suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	likes := resp["data"].([]interface{})
	require.Len(suite.T(), likes, 1)
}

func (suite *HandlersTestSuite) TestPlaylistEndpointFlow() {
	videoID := suite.createVideo("clip")

	w, resp := suite.request("POST", "/api/v1/playlists", suite.member.ID, gin.H{"name": "Favorites"})
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	playlistID := resp["data"].(map[string]interface{})["id"].(string)

	w, _ = suite.request("POST", "/api/v1/playlists/"+playlistID+"/videos/"+videoID, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	w, resp = suite.request("POST", "/api/v1/playlists/"+playlistID+"/videos/"+videoID, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "CONFLICT", resp["code"])

	// Another user cannot mutate the playlist
	w, _ = suite.request("DELETE", "/api/v1/playlists/"+playlistID+"/videos/"+videoID, suite.owner.ID, nil)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w, resp = suite.request("GET", "/api/v1/playlists/"+playlistID, suite.member.ID, nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	videos := resp["data"].(map[string]interface{})["videos"].([]interface{})
	assert.Len(suite.T(), videos, 1)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
