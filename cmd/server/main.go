package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examify/auth-service/internal/config"
	api "github.com/examify/auth-service/internal/http"
	"github.com/examify/auth-service/internal/log"
	"github.com/examify/auth-service/internal/mail"
	"github.com/examify/auth-service/internal/metrics"
	"github.com/examify/auth-service/internal/oauth"
	"github.com/examify/auth-service/internal/queue"
	"github.com/examify/auth-service/internal/repo"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "production")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect: " + err.Error())
	}
	defer store.Close(context.Background())
	if err := store.EnsureUserIndexes(ctx); err != nil {
		logger.Fatal("mongo indexes: " + err.Error())
	}

	var rds *repo.Redis
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		if err := rds.Ping(ctx); err != nil {
			logger.Fatal("redis connect: " + err.Error())
		}
		defer rds.Close()
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		pub, err = queue.NewRabbit(cfg.RabbitURL, "auth.events")
		if err != nil {
			logger.Fatal("rabbit connect: " + err.Error())
		}
	}
	defer pub.Close()

	var mailer mail.Sender = mail.LogSender{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}

	google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.PublicBaseURL+"/auth/google/callback")
	facebook := oauth.NewFacebook(cfg.FacebookAppID, cfg.FacebookAppSecret, cfg.PublicBaseURL+"/auth/facebook/callback")

	h := api.NewHandler(cfg, store, mailer, pub, rds, google, facebook)
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	log.Infof("examify auth-service listening on :%s", cfg.Port)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Infof("signal: %s, shutting down", s)
	case err := <-srvErr:
		log.Errorf("server error: %v", err)
	}
}
