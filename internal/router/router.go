package router

import (
	"net/http"

	"Lee_Microblog/internal/handler"
	"Lee_Microblog/internal/metrics"
	"Lee_Microblog/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps 路由依赖，由容器统一注入
type Deps struct {
	Auth     middleware.Authenticator
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	User   *handler.UserHandler
	Follow *handler.FollowHandler
	Tweet  *handler.TweetHandler
	Like   *handler.LikeHandler
	Media  *handler.MediaHandler

	MediaDir     string
	MediaBaseURL string
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(d.Metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"result": true})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.MediaDir != "" && d.MediaBaseURL != "" {
		r.Static(d.MediaBaseURL, d.MediaDir)
	}

	auth := middleware.AuthMiddleware(d.Auth)
	api := r.Group("/api")

	// 公开接口
	api.POST("/users", d.User.Register)
	api.POST("/token/refresh", d.User.TokenRefresh)

	authed := api.Group("")
	authed.Use(auth)

	// token相关接口
	authed.POST("/token", d.User.IssueToken)

	// 用户相关接口
	userGroup := authed.Group("/users")
	{
		userGroup.GET("", d.User.List)
		userGroup.GET("/me", d.User.Me)
		userGroup.GET("/:id", d.User.Get)
		userGroup.GET("/:id/followers", d.Follow.ListFollowers)
		userGroup.GET("/:id/followings", d.Follow.ListFollowings)
		userGroup.GET("/:id/tweets", d.Tweet.ListByAuthor)
		userGroup.POST("/:id/follow", d.Follow.Follow)
		userGroup.DELETE("/:id/follow", d.Follow.Unfollow)
	}

	// 推文相关接口
	tweetGroup := authed.Group("/tweets")
	{
		tweetGroup.POST("", d.Tweet.Create)
		tweetGroup.GET("", d.Tweet.Feed)
		tweetGroup.GET("/:id", d.Tweet.Get)
		tweetGroup.DELETE("/:id", d.Tweet.Delete)
		tweetGroup.POST("/:id/likes", d.Like.Like)
		tweetGroup.DELETE("/:id/likes", d.Like.Unlike)
		tweetGroup.GET("/:id/likes", d.Like.Likers)
	}

	authed.POST("/medias", d.Media.Upload)

	return r
}
