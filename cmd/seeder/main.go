// cmd/seeder/main.go

package main

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"YourTube/internal/model"
	"YourTube/internal/recommend"
	"YourTube/pkg/config"

	"github.com/go-faker/faker/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	userCount         = 100
	videoCount        = 500
	likeCount         = 2000
	subscriptionCount = 600
	historyCount      = 3000
)

func main() {
	fmt.Println("🚀 开始填充测试数据...")

	// --- 1. 连接数据库 ---
	// 和server、consumer读同一份配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ 无法连接到数据库: %v", err)
	}
	fmt.Println("✅ 数据库连接成功!")

	// --- 2. 清理旧数据 ---
	// 注意：这将删除所有数据！
	fmt.Println("🧹 正在清理旧数据...")
	if err := db.Migrator().DropTable(model.AllModels()...); err != nil {
		log.Fatalf("❌ 旧表删除失败: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		log.Fatalf("❌ 数据库迁移失败: %v", err)
	}
	fmt.Println("✅ 数据库迁移成功!")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- 3. 创建用户 ---
	// 所有用户的密码都是 "password"，只哈希一次
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ 密码加密失败: %v", err)
	}
	fmt.Println("👥 正在创建用户...")
	for i := 0; i < userCount; i++ {
		// 加上序号，避免faker生成重复的用户名/邮箱撞唯一索引
		username := strings.ToLower(fmt.Sprintf("%s%d", faker.Username(), i))
		prefs := pickTags(rng, 3)
		user := model.User{
			Username:               username,
			Email:                  fmt.Sprintf("%s@example.com", username),
			FullName:               faker.Name(),
			Avatar:                 "https://test.com/avatar.png",
			Password:               string(hashedPassword),
			PreferredTags:          prefs,
			HasCompletedOnboarding: len(prefs) > 0,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("❌ 创建用户失败: %v", err)
		}
	}
	fmt.Printf("✅ 成功创建 %d 个用户!\n", userCount)

	// --- 4. 创建视频 ---
	fmt.Println("🎬 正在创建视频...")
	now := time.Now()
	for i := 0; i < videoCount; i++ {
		video := model.Video{
			// rand.Intn(userCount) 会生成 [0, 99] 之间的随机数, +1 后变为 [1, 100]
			OwnerID:     uint64(rng.Intn(userCount) + 1),
			Title:       faker.Sentence(),
			Description: faker.Paragraph(),
			VideoFile:   "https://test.com/video.mp4",
			Thumbnail:   "https://test.com/cover.jpg",
			Duration:    float64(30 + rng.Intn(1200)),
			Views:       uint64(rng.Intn(10000)),
			IsPublished: true,
			Tags:        pickTags(rng, 4),
		}
		// 创建时间分散在最近60天内，趋势和仪表盘的“最近30天”才有数据可看
		video.CreatedAt = now.Add(-time.Duration(rng.Intn(60*24)) * time.Hour)
		if err := db.Create(&video).Error; err != nil {
			log.Fatalf("❌ 创建视频失败: %v", err)
		}
		// is_published带default:true，false是零值会被Create忽略，只能创建后再改
		if rng.Intn(10) == 0 {
			db.Model(&video).Update("is_published", false)
		}
	}
	fmt.Printf("✅ 成功创建 %d 个视频!\n", videoCount)

	// --- 5. 创建随机点赞、订阅、观看记录 ---
	// 使用GORM的 OnConflict 来避免因为重复而报错：如果因为唯一键冲突失败，就什么都不做
	fmt.Println("👍 正在创建随机点赞...")
	for i := 0; i < likeCount; i++ {
		like := model.Like{
			LikedBy:    uint64(rng.Intn(userCount) + 1),
			TargetType: model.TargetVideo,
			TargetID:   uint64(rng.Intn(videoCount) + 1),
		}
		db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	}

	fmt.Println("🔔 正在创建随机订阅...")
	for i := 0; i < subscriptionCount; i++ {
		subscriber := uint64(rng.Intn(userCount) + 1)
		channel := uint64(rng.Intn(userCount) + 1)
		if subscriber == channel {
			continue
		}
		sub := model.Subscription{SubscriberID: subscriber, ChannelID: channel}
		db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub)
	}

	fmt.Println("📺 正在创建观看记录...")
	for i := 0; i < historyCount; i++ {
		duration := float64(30 + rng.Intn(1200))
		history := model.WatchHistory{
			UserID:        uint64(rng.Intn(userCount) + 1),
			VideoID:       uint64(rng.Intn(videoCount) + 1),
			WatchDuration: duration * rng.Float64(),
			IsCompleted:   rng.Intn(3) == 0,
			LastWatchedAt: now.Add(-time.Duration(rng.Intn(30*24)) * time.Hour),
		}
		db.Clauses(clause.OnConflict{DoNothing: true}).Create(&history)
	}
	fmt.Printf("✅ 成功创建(或尝试创建) %d 个点赞、%d 个订阅、%d 条观看记录!\n", likeCount, subscriptionCount, historyCount)

	fmt.Println("🎉🎉🎉 所有测试数据填充完毕! 🎉🎉🎉")
}

// pickTags 从预定义标签里随机挑最多n个
func pickTags(rng *rand.Rand, n int) []string {
	k := rng.Intn(n + 1)
	tags := make([]string, 0, k)
	for _, i := range rng.Perm(len(recommend.AvailableTags))[:k] {
		tags = append(tags, recommend.AvailableTags[i])
	}
	return tags
}
