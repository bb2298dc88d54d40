package main

import (
	"votebox/internal/auth"
	"votebox/internal/config"
	"votebox/internal/db"
	"votebox/internal/event"
	"votebox/internal/ledger"
	"votebox/internal/router"
	"votebox/internal/store"
	"votebox/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	users := store.NewGormUserStore(conn)
	options := store.NewGormOptionStore(conn)
	tokens := token.NewService(cfg.SecretKey, cfg.TokenTTL)

	var events event.Publisher = event.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		events = kp
		logrus.WithField("topic", cfg.KafkaTopic).Info("Kafka event publishing enabled")
	}

	authService := auth.NewService(users, tokens)
	voteLedger := ledger.New(users, options, events)

	r := gin.Default()
	router.RegisterRoutes(r, authService, voteLedger, tokens)

	logrus.Infof("votebox server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatal(err)
	}
}
