package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"YourTube/internal/repository"
	"YourTube/pkg/config"
	"YourTube/pkg/logger"
	"YourTube/pkg/rabbitmq"
	"YourTube/pkg/storage"

	"github.com/streadway/amqp"
	gorm_mysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// 消费者进程：连接mysql、rabbitMQ、对象存储，把观看进度落库，把删除视频后遗留的媒体对象清理掉
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("配置加载失败: %v", err)
	}
	logger.InitLogger(cfg.Log.Level, cfg.Log.File)

	// 连接数据库
	db, err := gorm.Open(gorm_mysql.Open(cfg.MySQL.DSN()), &gorm.Config{})
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到数据库: %v", err)
	}
	// 连接RabbitMQ
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()
	if err := rabbitmq.DeclareQueues(rabbitMQConn); err != nil {
		logger.Log.Fatalf("队列声明失败: %v", err)
	}

	mediaHost, err := storage.NewMinioHost(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
		cfg.MinIO.UseSSL, cfg.MinIO.Bucket, cfg.MinIO.PublicBaseURL)
	if err != nil {
		logger.Log.Fatalf("消费者无法初始化对象存储: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchRepo := repository.NewWatchHistoryRepository(db)
	go consume(ctx, rabbitMQConn, rabbitmq.QueueWatchProgress, func(ctx context.Context, body []byte) outcome {
		return handleWatchProgress(ctx, watchRepo, body)
	})
	go consume(ctx, rabbitMQConn, rabbitmq.QueueMediaCleanup, func(ctx context.Context, body []byte) outcome {
		return handleMediaCleanup(ctx, mediaHost, body)
	})

	logger.Log.Info(" [*] 等待观看进度和媒体清理消息中. 按 CTRL+C 退出")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("消费者退出")
}

// consume 1、通过mq的TCP连接创建channel 2、注册手动确认的消费者 3、持续读取消息交给handle处理 4、按处理结果Ack/Nack
func consume(ctx context.Context, conn *amqp.Connection, queue string, handle func(context.Context, []byte) outcome) {
	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Fatalf("无法打开Channel: %v", err)
	}
	defer ch.Close()

	// 一次只取一条，处理完再取下一条
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Log.Fatalf("无法设置Qos: %v", err)
	}

	msgs, err := ch.Consume(
		queue, // queue
		"",    // consumer
		false, // auto-ack: 手动确认
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		logger.Log.Fatalf("无法注册消费者 %s: %v", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				logger.Log.WithField("queue", queue).Warn("消息通道已关闭")
				return
			}
			logger.Log.WithField("queue", queue).
				WithField("redelivered", d.Redelivered).
				Debug("收到一条消息")
			settle(d, handle(ctx, d.Body))
		}
	}
}
