package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"pregchat/config"
	"pregchat/controllers"
	"pregchat/routes"
	"pregchat/services"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gin.SetMode(gin.ReleaseMode)

	// Redis接続。疎通できなければトラフィックを受けずに落とす。
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	sessions := services.NewSessionStore(rdb)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sessions.Ping(pingCtx); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Info("Connected to Redis")

	// Postgres接続（こちらも起動時必須）
	records, err := services.NewRecordStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Postgres connection failed: %v", err)
	}
	defer records.Close()
	if err := records.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}
	log.Info("Connected to Postgres")

	genai := buildGenerator(cfg)
	chat := services.NewChatService(records, sessions, genai, cfg.GenAITimeout)

	router := routes.SetupRouter(log, routes.Controllers{
		Auth:     controllers.NewAuthController(records),
		Chat:     controllers.NewChatController(chat),
		Medical:  controllers.NewMedicalController(records),
		Medicine: controllers.NewMedicineController(records),
		Feedback: controllers.NewFeedbackController(records),
		Session:  controllers.NewSessionController(sessions),
		Wellness: controllers.NewWellnessController(chat),
	})

	addr := ":" + cfg.Port
	log.Infof("Server starting on port %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// buildGenerator は設定に応じた文章生成プロバイダーを返します
func buildGenerator(cfg *config.Config) services.Generator {
	if cfg.GenAIProvider == "openai" {
		return services.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, services.PrenatalSystemInstruction)
	}
	return services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, services.PrenatalSystemInstruction)
}
