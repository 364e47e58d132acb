package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crestapp/crest/backend/internal/auth"
	"github.com/crestapp/crest/backend/internal/database"
	"github.com/crestapp/crest/backend/internal/engagement"
	"github.com/crestapp/crest/backend/internal/feed"
	"github.com/crestapp/crest/backend/internal/models"
	"github.com/crestapp/crest/backend/internal/notify"
	"github.com/crestapp/crest/backend/internal/trending"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// HandlersTestSuite runs the HTTP API against an in-memory database with a
// header-based stand-in for the JWT middleware.
type HandlersTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	h      *Handlers

	alice *models.User
	bob   *models.User
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:handlerstest?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(suite.T(), err)

	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Share{},
		&models.Follow{},
		&models.Notification{},
	))

	suite.db = db
	database.DB = db

	authService := auth.NewService(db, []byte("test-secret"))
	engagementService := engagement.NewService(db)
	feedService := feed.NewService(db, nil, time.Minute)
	trendingService := trending.NewService(db, 72*time.Hour)
	notifier := notify.NewNotifier(db, nil)

	suite.h = NewHandlers(authService, engagementService, feedService, trendingService, notifier)
	suite.router = suite.setupRouter()
}

func (suite *HandlersTestSuite) TearDownSuite() {
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

// testAuthMiddleware reads X-User-ID instead of validating a JWT so each
// request can act as any seeded user.
func (suite *HandlersTestSuite) testAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized"}})
			c.Abort()
			return
		}
		var user models.User
		if err := suite.db.First(&user, "id = ?", userID).Error; err == nil {
			c.Set("user", &user)
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

func (suite *HandlersTestSuite) setupRouter() *gin.Engine {
	router := gin.New()
	h := suite.h

	api := router.Group("/api/v1")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
	}

	protected := api.Group("")
	protected.Use(suite.testAuthMiddleware())
	{
		protected.GET("/auth/me", h.Me)

		feedRoutes := protected.Group("/feed")
		{
			feedRoutes.GET("", h.GetFeed)
			feedRoutes.GET("/following", h.GetFollowingFeed)
		}
		protected.GET("/trending", h.GetTrending)

		posts := protected.Group("/posts")
		{
			posts.POST("", h.CreatePost)
			posts.GET("/:id", h.GetPost)
			posts.DELETE("/:id", h.DeletePost)
			posts.POST("/:id/view", h.RecordView)
			posts.GET("/:id/comments", h.GetComments)
			posts.POST("/:id/comments", h.CreateComment)
			posts.POST("/:id/share", h.SharePost)
			posts.DELETE("/:id/share", h.UnsharePost)
		}
		protected.DELETE("/comments/:id", h.DeleteComment)
		protected.POST("/likes/toggle", h.ToggleLike)

		users := protected.Group("/users")
		{
			users.PATCH("/me", h.UpdateProfile)
			users.GET("/:id", h.GetUser)
			users.GET("/:id/posts", h.GetUserPosts)
			users.POST("/:id/follow", h.FollowUser)
			users.DELETE("/:id/follow", h.UnfollowUser)
		}

		follows := protected.Group("/follows")
		{
			follows.GET("/requests", h.GetFollowRequests)
			follows.POST("/requests/:id/approve", h.ApproveFollowRequest)
			follows.POST("/requests/:id/reject", h.RejectFollowRequest)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.GetNotifications)
			notifications.GET("/counts", h.GetNotificationCounts)
			notifications.POST("/:id/read", h.MarkNotificationRead)
			notifications.POST("/read-all", h.MarkAllNotificationsRead)
		}
	}

	return router
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM notifications")
	suite.db.Exec("DELETE FROM likes")
	suite.db.Exec("DELETE FROM shares")
	suite.db.Exec("DELETE FROM comments")
	suite.db.Exec("DELETE FROM follows")
	suite.db.Exec("DELETE FROM posts")
	suite.db.Exec("DELETE FROM users")

	suite.alice = suite.createUser("alice", false)
	suite.bob = suite.createUser("bob", false)
}

func (suite *HandlersTestSuite) createUser(name string, private bool) *models.User {
	user := &models.User{
		Email:       fmt.Sprintf("%s@test.com", name),
		Username:    name,
		DisplayName: name,
		IsPrivate:   private,
	}
	require.NoError(suite.T(), user.SetPassword("password123"))
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *HandlersTestSuite) createPost(author *models.User, body string, public bool) *models.Post {
	post := &models.Post{UserID: author.ID, Body: body, IsPublic: public}
	require.NoError(suite.T(), suite.db.Create(post).Error)
	return post
}

func (suite *HandlersTestSuite) request(method, path string, body interface{}, asUser *models.User) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if asUser != nil {
		req.Header.Set("X-User-ID", asUser.ID)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (suite *HandlersTestSuite) TestRegisterAndLogin() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":        "newuser@test.com",
		"username":     "newuser",
		"password":     "password123",
		"display_name": "New User",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := suite.decode(w)
	assert.NotEmpty(t, body["token"])

	w = suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "newuser@test.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "newuser@test.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestRegisterDuplicateEmail() {
	w := suite.request(http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":        "alice@test.com",
		"username":     "alice2",
		"password":     "password123",
		"display_name": "Alice Again",
	}, nil)
	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestUnauthenticatedRequestRejected() {
	w := suite.request(http.MethodGet, "/api/v1/feed", nil, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestCreateAndGetPost() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/v1/posts", gin.H{"body": "hello world"}, suite.alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	post := suite.decode(w)["post"].(map[string]interface{})
	assert.Equal(t, "hello world", post["body"])
	assert.Equal(t, suite.alice.ID, post["user_id"])
	assert.Equal(t, true, post["is_public"])

	w = suite.request(http.MethodGet, "/api/v1/posts/"+post["id"].(string), nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, suite.decode(w)["is_liked"])
}

func (suite *HandlersTestSuite) TestCreatePrivatePostStaysPrivate() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/v1/posts", gin.H{"body": "just for me", "is_public": false}, suite.alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	post := suite.decode(w)["post"].(map[string]interface{})
	assert.Equal(t, false, post["is_public"])

	// The stored row must be private too, not just the response.
	var stored models.Post
	require.NoError(t, suite.db.First(&stored, "id = ?", post["id"]).Error)
	assert.False(t, stored.IsPublic)
}

func (suite *HandlersTestSuite) TestDeletePostRequiresOwnership() {
	t := suite.T()
	post := suite.createPost(suite.alice, "mine", true)

	w := suite.request(http.MethodDelete, "/api/v1/posts/"+post.ID, nil, suite.bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, "/api/v1/posts/"+post.ID, nil, suite.alice)
	assert.Equal(t, http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestLikeToggleEndpoint() {
	t := suite.T()
	post := suite.createPost(suite.alice, "likeable", true)

	toggle := gin.H{"target_id": post.ID, "target_kind": "post"}

	w := suite.request(http.MethodPost, "/api/v1/likes/toggle", toggle, suite.bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := suite.decode(w)
	assert.Equal(t, true, body["is_liked"])
	assert.Equal(t, float64(1), body["likes_count"])

	w = suite.request(http.MethodPost, "/api/v1/likes/toggle", toggle, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	body = suite.decode(w)
	assert.Equal(t, false, body["is_liked"])
	assert.Equal(t, float64(0), body["likes_count"])
}

func (suite *HandlersTestSuite) TestLikeToggleValidation() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/v1/likes/toggle",
		gin.H{"target_id": "x", "target_kind": "story"}, suite.bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/likes/toggle",
		gin.H{"target_id": "missing", "target_kind": "post"}, suite.bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestCommentFlow() {
	t := suite.T()
	post := suite.createPost(suite.alice, "discuss", true)

	w := suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments",
		gin.H{"content": "first!"}, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := suite.decode(w)["comment"].(map[string]interface{})

	// A reply to a reply attaches to the root comment.
	w = suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments",
		gin.H{"content": "reply", "parent_id": comment["id"]}, suite.alice)
	require.Equal(t, http.StatusCreated, w.Code)
	reply := suite.decode(w)["comment"].(map[string]interface{})

	w = suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments",
		gin.H{"content": "nested reply", "parent_id": reply["id"]}, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)
	nested := suite.decode(w)["comment"].(map[string]interface{})
	assert.Equal(t, comment["id"], nested["parent_id"])

	var reloaded models.Post
	require.NoError(t, suite.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(t, int64(3), reloaded.CommentsCount)

	w = suite.request(http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	comments := suite.decode(w)["comments"].([]interface{})
	assert.Len(t, comments, 3)
}

func (suite *HandlersTestSuite) TestDeleteCommentRecounts() {
	t := suite.T()
	post := suite.createPost(suite.alice, "discuss", true)

	w := suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/comments",
		gin.H{"content": "short lived"}, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)
	comment := suite.decode(w)["comment"].(map[string]interface{})

	w = suite.request(http.MethodDelete, "/api/v1/comments/"+comment["id"].(string), nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Post
	require.NoError(t, suite.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(t, int64(0), reloaded.CommentsCount)
}

func (suite *HandlersTestSuite) TestShareFlow() {
	t := suite.T()
	post := suite.createPost(suite.alice, "shareable", true)

	w := suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/share",
		gin.H{"quote": "look at this"}, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Sharing twice conflicts.
	w = suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/share", gin.H{}, suite.bob)
	assert.Equal(t, http.StatusConflict, w.Code)

	var reloaded models.Post
	require.NoError(t, suite.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(t, int64(1), reloaded.SharesCount)

	w = suite.request(http.MethodDelete, "/api/v1/posts/"+post.ID+"/share", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, "/api/v1/posts/"+post.ID+"/share", nil, suite.bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestRecordView() {
	t := suite.T()
	post := suite.createPost(suite.alice, "watched", true)

	for i := 0; i < 2; i++ {
		w := suite.request(http.MethodPost, "/api/v1/posts/"+post.ID+"/view", nil, suite.bob)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var reloaded models.Post
	require.NoError(t, suite.db.First(&reloaded, "id = ?", post.ID).Error)
	assert.Equal(t, int64(2), reloaded.ViewsCount)
}

func (suite *HandlersTestSuite) TestFollowPublicUser() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/v1/users/"+suite.alice.ID+"/follow", nil, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "accepted", suite.decode(w)["status"])

	var alice models.User
	require.NoError(t, suite.db.First(&alice, "id = ?", suite.alice.ID).Error)
	assert.Equal(t, 1, alice.FollowerCount)

	// Duplicate follow conflicts.
	w = suite.request(http.MethodPost, "/api/v1/users/"+suite.alice.ID+"/follow", nil, suite.bob)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestSelfFollowRejected() {
	w := suite.request(http.MethodPost, "/api/v1/users/"+suite.bob.ID+"/follow", nil, suite.bob)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestPrivateAccountFollowApproval() {
	t := suite.T()
	carol := suite.createUser("carol", true)

	w := suite.request(http.MethodPost, "/api/v1/users/"+carol.ID+"/follow", nil, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pending", suite.decode(w)["status"])

	// Pending edges do not move counters.
	var reloaded models.User
	require.NoError(t, suite.db.First(&reloaded, "id = ?", carol.ID).Error)
	assert.Equal(t, 0, reloaded.FollowerCount)

	w = suite.request(http.MethodGet, "/api/v1/follows/requests", nil, carol)
	require.Equal(t, http.StatusOK, w.Code)
	requests := suite.decode(w)["requests"].([]interface{})
	require.Len(t, requests, 1)

	w = suite.request(http.MethodPost, "/api/v1/follows/requests/"+suite.bob.ID+"/approve", nil, carol)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, suite.db.First(&reloaded, "id = ?", carol.ID).Error)
	assert.Equal(t, 1, reloaded.FollowerCount)

	var follow models.Follow
	require.NoError(t, suite.db.
		Where("follower_id = ? AND following_id = ?", suite.bob.ID, carol.ID).
		First(&follow).Error)
	assert.Equal(t, models.FollowStatusAccepted, follow.Status)
}

func (suite *HandlersTestSuite) TestPendingFollowRequestIsSilent() {
	t := suite.T()
	carol := suite.createUser("carol", true)

	w := suite.request(http.MethodPost, "/api/v1/users/"+carol.ID+"/follow", nil, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "pending", suite.decode(w)["status"])

	// An accepted follow does notify; wait for its async delivery so any
	// stray notification for carol would have landed too.
	w = suite.request(http.MethodPost, "/api/v1/users/"+suite.alice.ID+"/follow", nil, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Eventually(t, func() bool {
		var count int64
		suite.db.Model(&models.Notification{}).
			Where("recipient_id = ?", suite.alice.ID).
			Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	var carolCount int64
	suite.db.Model(&models.Notification{}).
		Where("recipient_id = ?", carol.ID).
		Count(&carolCount)
	assert.Equal(t, int64(0), carolCount, "pending requests must not notify the followee")
}

func (suite *HandlersTestSuite) TestRejectFollowRequest() {
	t := suite.T()
	carol := suite.createUser("carol", true)

	w := suite.request(http.MethodPost, "/api/v1/users/"+carol.ID+"/follow", nil, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/api/v1/follows/requests/"+suite.bob.ID+"/reject", nil, carol)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", suite.bob.ID, carol.ID).
		Count(&count)
	assert.Equal(t, int64(0), count)
}

func (suite *HandlersTestSuite) TestUnfollowAdjustsCounters() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/v1/users/"+suite.alice.ID+"/follow", nil, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)

	w = suite.request(http.MethodDelete, "/api/v1/users/"+suite.alice.ID+"/follow", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)

	var alice models.User
	require.NoError(t, suite.db.First(&alice, "id = ?", suite.alice.ID).Error)
	assert.Equal(t, 0, alice.FollowerCount)
}

func (suite *HandlersTestSuite) TestFeedEndpoint() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/api/v1/users/"+suite.alice.ID+"/follow", nil, suite.bob)
	require.Equal(t, http.StatusCreated, w.Code)

	suite.createPost(suite.alice, "from alice", true)
	suite.createPost(suite.bob, "from bob himself", true)

	w = suite.request(http.MethodGet, "/api/v1/feed", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	posts := suite.decode(w)["posts"].([]interface{})
	assert.Len(t, posts, 2)

	w = suite.request(http.MethodGet, "/api/v1/feed/following", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	posts = suite.decode(w)["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "from alice", posts[0].(map[string]interface{})["body"])
}

func (suite *HandlersTestSuite) TestTrendingEndpoint() {
	t := suite.T()

	post := suite.createPost(suite.alice, "popular", true)
	require.NoError(t, suite.db.Model(post).UpdateColumn("likes_count", 5).Error)
	suite.createPost(suite.alice, "ignored", true)

	w := suite.request(http.MethodGet, "/api/v1/trending", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	posts := suite.decode(w)["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "popular", posts[0].(map[string]interface{})["body"])
}

func (suite *HandlersTestSuite) TestNotificationFlow() {
	t := suite.T()

	for i := 0; i < 2; i++ {
		require.NoError(t, suite.db.Create(&models.Notification{
			RecipientID: suite.bob.ID,
			SenderID:    suite.alice.ID,
			Type:        models.NotificationNewFollow,
			Title:       "New follower",
			Message:     "alice started following you",
		}).Error)
	}

	w := suite.request(http.MethodGet, "/api/v1/notifications", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	rows := suite.decode(w)["notifications"].([]interface{})
	require.Len(t, rows, 2)
	first := rows[0].(map[string]interface{})

	w = suite.request(http.MethodGet, "/api/v1/notifications/counts", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	counts := suite.decode(w)
	assert.Equal(t, float64(2), counts["total"])
	assert.Equal(t, float64(2), counts["unread"])

	w = suite.request(http.MethodPost, "/api/v1/notifications/"+first["id"].(string)+"/read", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/notifications/counts", nil, suite.bob)
	counts = suite.decode(w)
	assert.Equal(t, float64(1), counts["unread"])

	w = suite.request(http.MethodPost, "/api/v1/notifications/read-all", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/v1/notifications/counts", nil, suite.bob)
	counts = suite.decode(w)
	assert.Equal(t, float64(0), counts["unread"])
}

func (suite *HandlersTestSuite) TestNotificationsAreScopedToRecipient() {
	t := suite.T()

	require.NoError(t, suite.db.Create(&models.Notification{
		RecipientID: suite.bob.ID,
		SenderID:    suite.alice.ID,
		Type:        models.NotificationNewFollow,
		Title:       "New follower",
	}).Error)

	w := suite.request(http.MethodGet, "/api/v1/notifications", nil, suite.alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, suite.decode(w)["notifications"])
}

func (suite *HandlersTestSuite) TestUpdateProfile() {
	t := suite.T()

	w := suite.request(http.MethodPatch, "/api/v1/users/me",
		gin.H{"bio": "building things", "is_private": true}, suite.alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, suite.db.First(&reloaded, "id = ?", suite.alice.ID).Error)
	assert.Equal(t, "building things", reloaded.Bio)
	assert.True(t, reloaded.IsPrivate)

	w = suite.request(http.MethodPatch, "/api/v1/users/me", gin.H{}, suite.alice)
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty update is rejected")
}

func (suite *HandlersTestSuite) TestGetUserPostsVisibility() {
	t := suite.T()

	suite.createPost(suite.alice, "public one", true)
	suite.createPost(suite.alice, "private one", false)

	w := suite.request(http.MethodGet, "/api/v1/users/"+suite.alice.ID+"/posts", nil, suite.bob)
	require.Equal(t, http.StatusOK, w.Code)
	posts := suite.decode(w)["posts"].([]interface{})
	assert.Len(t, posts, 1)

	w = suite.request(http.MethodGet, "/api/v1/users/"+suite.alice.ID+"/posts", nil, suite.alice)
	require.Equal(t, http.StatusOK, w.Code)
	posts = suite.decode(w)["posts"].([]interface{})
	assert.Len(t, posts, 2, "owners see their private posts")
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
