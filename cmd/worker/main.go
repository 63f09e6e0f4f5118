package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/studyhive/study_go_server/config"
	"github.com/studyhive/study_go_server/internal/database"
	"github.com/studyhive/study_go_server/internal/pkg/email"
	"github.com/studyhive/study_go_server/internal/pkg/presence"
	"github.com/studyhive/study_go_server/internal/pkg/pubsub"
	"github.com/studyhive/study_go_server/internal/pkg/queue"
	"github.com/studyhive/study_go_server/internal/repository"
	"github.com/studyhive/study_go_server/internal/worker"
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

	// 初始化邮件服务（可选，未配置 SMTP 时离线补发被跳过）
	var emailSvc *email.Service
	if cfg.Email.SMTPHost != "" {
		emailSvc = email.NewService(&cfg.Email)
		log.Println("Email service initialized")
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// 通知 worker：消费通知事件，落库并推送
	notifier := worker.NewNotifier(
		queue.NewQueue(rdb, cfg.Queue.NotificationQueue),
		notifRepo,
		userRepo,
		pubsub.NewPublisher(rdb),
		presence.NewTracker(rdb),
		emailSvc,
		cfg,
	)

	// Fanout worker：消费资料变更事件，刷新各集合里的身份快照
	fanout := worker.NewFanout(
		queue.NewQueue(rdb, cfg.Queue.FanoutQueue),
		commentRepo,
		postRepo,
		messageRepo,
		notifRepo,
	)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	maxWorkers := cfg.Queue.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	log.Printf("Worker started, max workers: %d", maxWorkers)

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			notifier.Run(ctx)
		}()
	}

	// 快照刷新串行消费即可，单个 goroutine 足够
	wg.Add(1)
	go func() {
		defer wg.Done()
		fanout.Run(ctx)
	}()

	wg.Wait()
	log.Println("Worker shutdown complete")
}
