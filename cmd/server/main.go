package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/vidtube/internal/config"
	"github.com/Skotchmaster/vidtube/internal/events"
	"github.com/Skotchmaster/vidtube/internal/httpserver"
	"github.com/Skotchmaster/vidtube/internal/repo"
	"github.com/Skotchmaster/vidtube/internal/search"
	"github.com/Skotchmaster/vidtube/internal/service"
	"github.com/Skotchmaster/vidtube/internal/storage"
	"github.com/Skotchmaster/vidtube/pkg/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	media, err := storage.NewMediaStore(initCtx,
		cfg.MINIO_ENDPOINT, cfg.MINIO_ACCESS_KEY, cfg.MINIO_SECRET_KEY,
		cfg.MINIO_BUCKET, cfg.MINIO_USE_SSL == "true")
	if err != nil {
		log.Fatalf("media store init error: %v", err)
	}

	var producer *events.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer = events.NewProducer(strings.Split(cfg.KAFKA_ADDRESS, ","), cfg.KAFKA_TOPIC)
		defer producer.Close()
	} else {
		logger.Warn("kafka disabled, KAFKA_ADDRESS is empty")
	}

	var channels *search.Channels
	if cfg.ES_URL != "" {
		es, err := search.NewClient(cfg.ES_URL, cfg.ES_USER, cfg.ES_PASSWORD)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		channels = &search.Channels{ES: es, Index: cfg.ES_INDEX}
	} else {
		logger.Warn("channel search disabled, ES_URL is empty")
	}

	gormRepo := repo.GormRepo{
		DB:            db,
		AccessSecret:  []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}

	authHTTP := httpserver.AuthHTTP{
		Svc: &service.AuthService{
			Repo:   gormRepo,
			Media:  media,
			Events: producer,
			Search: channels,
		},
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &authHTTP,
		AccessSecret: []byte(cfg.JWT_SECRET),
	})

	go func() {
		if err := e.Start(cfg.SERVER_ADDRESS); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
