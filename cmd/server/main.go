package main

import (
	"context"
	"fmt"
	"log"

	"github.com/studyhive/study_go_server/config"
	"github.com/studyhive/study_go_server/internal/api"
	"github.com/studyhive/study_go_server/internal/api/handler"
	"github.com/studyhive/study_go_server/internal/database"
	"github.com/studyhive/study_go_server/internal/pkg/cron"
	"github.com/studyhive/study_go_server/internal/pkg/email"
	"github.com/studyhive/study_go_server/internal/pkg/oauth"
	"github.com/studyhive/study_go_server/internal/pkg/oss"
	"github.com/studyhive/study_go_server/internal/pkg/presence"
	"github.com/studyhive/study_go_server/internal/pkg/pubsub"
	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/pkg/ws"
	"github.com/studyhive/study_go_server/internal/repository"
	"github.com/studyhive/study_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化邮件服务（可选）
	var emailSvc *email.Service
	if cfg.Email.SMTPHost != "" {
		emailSvc = email.NewService(&cfg.Email)
		log.Println("Email service initialized")
	}

	// 初始化队列：通知事件和资料变更 fanout 事件都由 worker 进程消费
	notifQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	fanoutQueue := queue.NewQueue(rdb, cfg.Queue.FanoutQueue)

	// 初始化 WebSocket Hub 与在线状态
	wsHub := ws.NewHub()
	tracker := presence.NewTracker(rdb)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// 初始化 Service
	notifier := service.NewNotifier(notifQueue)
	authService := service.NewAuthService(userRepo, emailSvc, cfg)
	userService := service.NewUserService(userRepo, ossClient, fanoutQueue, cfg)
	postService := service.NewPostService(postRepo, userRepo, notifier)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, notifier)
	messageService := service.NewMessageService(messageRepo, userRepo, notifier)
	notifService := service.NewNotificationService(notifRepo)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, oauth.NewStateStore(rdb))
	userHandler := handler.NewUserHandler(userService)
	postHandler := handler.NewPostHandler(postService)
	commentHandler := handler.NewCommentHandler(commentService)
	messageHandler := handler.NewMessageHandler(messageService)
	notifHandler := handler.NewNotificationHandler(notifService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, tracker, cfg.JWT.Secret)

	// 订阅 worker 发布的推送，转发给本进程内的 WebSocket 连接
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(ctx, func(msg *pubsub.PushMessage) {
			if err := wsHub.SendToUser(msg.UserID, &ws.Message{
				Type: msg.Type,
				Data: msg.Data,
			}); err != nil {
				log.Printf("Failed to push to user %d: %v", msg.UserID, err)
			}
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("Pubsub subscriber stopped: %v", err)
		}
	}()
	log.Println("Notification subscriber started")

	// 已读通知定期清理
	cronService := cron.NewService(notifRepo, cfg.Notification.RetentionDays)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		postHandler,
		commentHandler,
		messageHandler,
		notifHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
