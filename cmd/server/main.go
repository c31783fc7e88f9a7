package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"YourTube/internal/data"
	"YourTube/internal/handler"
	"YourTube/internal/middleware"
	"YourTube/internal/model"
	"YourTube/internal/repository"
	"YourTube/internal/router"
	"YourTube/internal/service"
	"YourTube/pkg/config"
	"YourTube/pkg/logger"
	"YourTube/pkg/rabbitmq"
	"YourTube/pkg/redis"
	"YourTube/pkg/storage"
	"YourTube/pkg/token"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("配置加载失败: %v", err)
	}
	// 初始化logger
	logger.InitLogger(cfg.Log.Level, cfg.Log.File)

	// 初始化Redis
	redisClient, err := redis.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Log.Fatalf("无法连接到Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Log.Info("Redis连接成功")

	// 初始化RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Log.Fatalf("无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close() // 确保程序退出时关闭连接
	if err := rabbitmq.DeclareQueues(rabbitMQConn); err != nil {
		logger.Log.Fatalf("队列声明失败: %v", err)
	}
	logger.Log.Info("RabbitMQ连接成功")

	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), &gorm.Config{})
	if err != nil {
		logger.Log.Fatalf("无法连接到数据库: %v", err)
	}
	logger.Log.Info("数据库连接成功")
	// db.AutoMigrate(),没有这个表就创建,没有属性列则创建列,没有约束则增加约束;不会主动删除和修改
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}
	logger.Log.Info("数据库迁移成功")

	mediaHost, err := storage.NewMinioHost(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
		cfg.MinIO.UseSSL, cfg.MinIO.Bucket, cfg.MinIO.PublicBaseURL)
	if err != nil {
		logger.Log.Fatalf("无法初始化对象存储: %v", err)
	}
	if err := os.MkdirAll(cfg.Upload.TempDir, 0o755); err != nil {
		logger.Log.Fatalf("无法创建上传临时目录: %v", err)
	}

	tokens := token.NewManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	publisher := rabbitmq.NewPublisher(rabbitMQConn)

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db, redisClient)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	watchRepo := repository.NewWatchHistoryRepository(db)
	tweetRepo := repository.NewTweetRepository(db)

	uow := data.NewUnitOfWork(db, data.TransactionalRepositories{
		VideoRepo:        videoRepo,
		CommentRepo:      commentRepo,
		LikeRepo:         likeRepo,
		WatchHistoryRepo: watchRepo,
		TweetRepo:        tweetRepo,
	})

	userService := service.NewUserService(userRepo, subRepo, watchRepo, mediaHost, tokens)
	videoService := service.NewVideoService(videoRepo, likeRepo, uow, mediaHost, publisher)
	recommendationService := service.NewRecommendationService(videoRepo, watchRepo, userRepo, cfg.Recommend.HistoryWindow)
	commentService := service.NewCommentService(commentRepo, videoRepo, likeRepo, uow)
	likeService := service.NewLikeService(likeRepo, videoRepo, commentRepo, tweetRepo)
	subscriptionService := service.NewSubscriptionService(subRepo, userRepo)
	playlistService := service.NewPlaylistService(playlistRepo, videoRepo, userRepo)
	tweetService := service.NewTweetService(tweetRepo, userRepo, likeRepo, uow)
	dashboardService := service.NewDashboardService(videoRepo, likeRepo, commentRepo, subRepo)

	cookies := handler.CookieOptions{
		Secure:        cfg.IsProduction(),
		AccessMaxAge:  int(tokens.AccessTTL().Seconds()),
		RefreshMaxAge: int(tokens.RefreshTTL().Seconds()),
	}
	handlers := router.Handlers{
		User:           handler.NewUserHandler(userService, cookies),
		Video:          handler.NewVideoHandler(videoService),
		Recommendation: handler.NewRecommendationHandler(recommendationService),
		Comment:        handler.NewCommentHandler(commentService),
		Like:           handler.NewLikeHandler(likeService),
		Subscription:   handler.NewSubscriptionHandler(subscriptionService),
		Playlist:       handler.NewPlaylistHandler(playlistService),
		Tweet:          handler.NewTweetHandler(tweetService),
		Dashboard:      handler.NewDashboardHandler(dashboardService),
	}

	// 限流器里的IP记录需要定期清理，否则map只增不减
	authLimiter := middleware.NewIPRateLimiter(cfg.Server.AuthRateLimit, time.Minute)
	stopCleanup := make(chan struct{})
	go authLimiter.RunCleanup(5*time.Minute, stopCleanup)
	defer close(stopCleanup)

	r := router.SetupRouter(handlers, router.Options{
		Tokens:         tokens,
		CORSOrigins:    cfg.Server.CORSOrigins,
		AuthLimiter:    authLimiter,
		UploadDir:      cfg.Upload.TempDir,
		UploadMaxBytes: cfg.Upload.MaxBytes,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		logger.Log.Printf("服务器将在: %s端口启动", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 优雅退出：收到信号后最多等10秒让处理中的请求结束
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("服务器关闭超时")
	}
	logger.Log.Info("服务器已退出")
}
