package api

import (
	"github.com/gin-gonic/gin"

	"github.com/studyhive/study_go_server/config"
	"github.com/studyhive/study_go_server/internal/api/handler"
	"github.com/studyhive/study_go_server/internal/api/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	postHandler      *handler.PostHandler
	commentHandler   *handler.CommentHandler
	messageHandler   *handler.MessageHandler
	notifHandler     *handler.NotificationHandler
	websocketHandler *handler.WebSocketHandler
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
	messageHandler *handler.MessageHandler,
	notifHandler *handler.NotificationHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		postHandler:      postHandler,
		commentHandler:   commentHandler,
		messageHandler:   messageHandler,
		notifHandler:     notifHandler,
		websocketHandler: websocketHandler,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubLogin)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 帖子与评论 - 公开读取（可选认证，登录后附带点赞状态）
		public := api.Group("")
		public.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			public.GET("/posts", r.postHandler.List)
			public.GET("/posts/:id", r.postHandler.Get)
			public.GET("/posts/:id/comments", r.commentHandler.List)
			public.GET("/posts/:id/comments/:commentId/replies", r.commentHandler.Replies)
			public.GET("/comments/:id", r.commentHandler.Get)
			public.GET("/users/:id", r.userHandler.GetUser)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
			}

			// 帖子
			authenticated.POST("/posts", r.postHandler.Create)
			authenticated.PUT("/posts/:id", r.postHandler.Update)
			authenticated.DELETE("/posts/:id", r.postHandler.Delete)
			authenticated.POST("/posts/:id/like", r.postHandler.Like)
			authenticated.DELETE("/posts/:id/like", r.postHandler.Unlike)

			// 评论
			authenticated.POST("/posts/:id/comments", r.commentHandler.Create)
			authenticated.PUT("/comments/:id", r.commentHandler.Update)
			authenticated.DELETE("/comments/:id", r.commentHandler.Delete)
			authenticated.POST("/comments/:id/like", r.commentHandler.Like)
			authenticated.DELETE("/comments/:id/like", r.commentHandler.Unlike)
			authenticated.POST("/comments/:id/pin", r.commentHandler.Pin)
			authenticated.DELETE("/comments/:id/pin", r.commentHandler.Unpin)

			// 私信
			authenticated.POST("/messages", r.messageHandler.Send)
			authenticated.GET("/messages/unread-count", r.messageHandler.UnreadCount)
			authenticated.GET("/conversations", r.messageHandler.ListConversations)
			authenticated.GET("/conversations/:id/messages", r.messageHandler.ListMessages)
			authenticated.PUT("/conversations/:id/read", r.messageHandler.MarkRead)

			// 通知
			authenticated.GET("/notifications", r.notifHandler.List)
			authenticated.GET("/notifications/unread-count", r.notifHandler.UnreadCount)
			authenticated.PUT("/notifications/:id/read", r.notifHandler.MarkRead)
			authenticated.PUT("/notifications/read-all", r.notifHandler.MarkAllRead)
		}
	}

	return engine
}
