package router

import (
	"net/http"
	"time"

	"YourTube/internal/handler"
	"YourTube/internal/middleware"
	"YourTube/pkg/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 所有资源的handler，由main统一组装
type Handlers struct {
	User           handler.UserHandler
	Video          handler.VideoHandler
	Recommendation handler.RecommendationHandler
	Comment        handler.CommentHandler
	Like           handler.LikeHandler
	Subscription   handler.SubscriptionHandler
	Playlist       handler.PlaylistHandler
	Tweet          handler.TweetHandler
	Dashboard      handler.DashboardHandler
}

type Options struct {
	Tokens      *token.Manager
	CORSOrigins []string
	// 登录、注册、刷新令牌三个接口共用的按IP限流器
	AuthLimiter    *middleware.IPRateLimiter
	UploadDir      string
	UploadMaxBytes int64
}

func SetupRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pang",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.AuthMiddleware(opts.Tokens)
	optional := middleware.OptionalAuth(opts.Tokens)
	limit := middleware.RateLimitMiddleware(opts.AuthLimiter)
	upload := func(fields ...string) gin.HandlerFunc {
		return middleware.UploadMiddleware(opts.UploadDir, opts.UploadMaxBytes, fields...)
	}

	apiV1 := r.Group("/api/v1")
	{
		users := apiV1.Group("/users")
		{
			users.POST("/register", limit, upload("avatar", "coverImage"), h.User.Register)
			users.POST("/login", limit, h.User.Login)
			users.POST("/refresh-token", limit, h.User.RefreshToken)

			users.POST("/logout", auth, h.User.Logout)
			users.POST("/change-password", auth, h.User.ChangePassword)
			users.GET("/current-user", auth, h.User.GetCurrentUser)
			users.PATCH("/update-account", auth, h.User.UpdateAccount)
			users.PATCH("/avatar", auth, upload("avatar"), h.User.UpdateAvatar)
			users.PATCH("/cover-image", auth, upload("coverImage"), h.User.UpdateCoverImage)
			users.GET("/c/:username", auth, h.User.GetChannelProfile)
			users.GET("/history", auth, h.User.GetWatchHistory)
			users.DELETE("/history/:video_id", auth, h.User.RemoveFromHistory)
			users.DELETE("/history", auth, h.User.ClearHistory)
		}

		videos := apiV1.Group("/videos")
		{
			// 静态路径要在 /:video_id 之前注册
			videos.GET("/recommended", optional, h.Recommendation.GetFeed)
			videos.PATCH("/watch-update", auth, h.Video.UpdateWatchProgress)
			videos.PATCH("/toggle/publish/:video_id", auth, h.Video.TogglePublish)

			videos.GET("", optional, h.Video.ListVideos)
			videos.POST("", auth, upload("videoFile", "thumbnail"), h.Video.PublishVideo)
			videos.GET("/:video_id", optional, h.Video.GetVideoByID)
			videos.PATCH("/:video_id", auth, upload("thumbnail"), h.Video.UpdateVideo)
			videos.DELETE("/:video_id", auth, h.Video.DeleteVideo)
		}

		recommendations := apiV1.Group("/recommendations")
		{
			recommendations.GET("/feed", optional, h.Recommendation.GetFeed)
			recommendations.GET("/personalized", auth, h.Recommendation.GetFeed)
			recommendations.GET("/tags", h.Recommendation.GetTags)
			recommendations.GET("/trending", h.Recommendation.GetTrending)
			recommendations.POST("/preferences", auth, h.Recommendation.SavePreferences)
		}

		comments := apiV1.Group("/comments")
		{
			comments.GET("/:video_id", optional, h.Comment.GetVideoComments)
			comments.POST("/:video_id", auth, h.Comment.AddComment)
			comments.PATCH("/c/:comment_id", auth, h.Comment.UpdateComment)
			comments.DELETE("/c/:comment_id", auth, h.Comment.DeleteComment)
		}

		likes := apiV1.Group("/likes", auth)
		{
			likes.POST("/toggle/v/:video_id", h.Like.ToggleVideoLike)
			likes.POST("/toggle/c/:comment_id", h.Like.ToggleCommentLike)
			likes.POST("/toggle/t/:tweet_id", h.Like.ToggleTweetLike)
			likes.GET("/status/v/:video_id", h.Like.GetVideoLikeStatus)
			likes.GET("/videos", h.Like.GetLikedVideos)
		}

		subscriptions := apiV1.Group("/subscriptions", auth)
		{
			subscriptions.POST("/c/:channel_id", h.Subscription.ToggleSubscription)
			subscriptions.GET("/c/:channel_id", h.Subscription.GetChannelSubscribers)
			subscriptions.GET("/u/:subscriber_id", h.Subscription.GetSubscribedChannels)
			subscriptions.GET("/status/c/:channel_id", h.Subscription.GetSubscriptionStatus)
		}

		playlists := apiV1.Group("/playlists", auth)
		{
			playlists.POST("", h.Playlist.CreatePlaylist)
			playlists.GET("/user/:user_id", h.Playlist.GetUserPlaylists)
			playlists.PATCH("/add/:video_id/:playlist_id", h.Playlist.AddVideo)
			playlists.PATCH("/remove/:video_id/:playlist_id", h.Playlist.RemoveVideo)
			playlists.GET("/:playlist_id", h.Playlist.GetPlaylistByID)
			playlists.PATCH("/:playlist_id", h.Playlist.UpdatePlaylist)
			playlists.DELETE("/:playlist_id", h.Playlist.DeletePlaylist)
		}

		tweets := apiV1.Group("/tweets", auth)
		{
			tweets.POST("", h.Tweet.CreateTweet)
			tweets.GET("/user/:user_id", h.Tweet.GetUserTweets)
			tweets.PATCH("/:tweet_id", h.Tweet.UpdateTweet)
			tweets.DELETE("/:tweet_id", h.Tweet.DeleteTweet)
		}

		dashboard := apiV1.Group("/dashboard", auth)
		{
			dashboard.GET("/stats", h.Dashboard.GetChannelStats)
			dashboard.GET("/videos", h.Dashboard.GetChannelVideos)
		}
	}

	return r
}
