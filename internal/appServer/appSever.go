// launching the server, analyzer, kafka producer
package appServer

import (
	"context"
	"crypto/tls"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/electrorescue/config"
	"github.com/ds124wfegd/electrorescue/internal/database"
	"github.com/ds124wfegd/electrorescue/internal/pkg/gemini"
	"github.com/ds124wfegd/electrorescue/internal/pkg/kafka"
	"github.com/ds124wfegd/electrorescue/internal/pkg/logger"
	"github.com/ds124wfegd/electrorescue/internal/pkg/markdown"
	"github.com/ds124wfegd/electrorescue/internal/pkg/processor"
	"github.com/ds124wfegd/electrorescue/internal/service"
	"github.com/ds124wfegd/electrorescue/internal/transport"
	"github.com/ds124wfegd/electrorescue/internal/web"
	"github.com/gin-gonic/gin"

	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logger.Init(cfg.Logging, os.Stdout)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	analyzer, err := gemini.NewAnalyzer(ctx, gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
	})
	if err != nil {
		logrus.Fatalf("failed to initialize analyzer: %s", err.Error())
	}
	if closer, ok := analyzer.(io.Closer); ok {
		defer closer.Close()
	}

	var producer kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		producer = kafka.NewProducer(nil, cfg.Kafka.Topic)
	}
	defer producer.Close()

	templates, err := web.LoadTemplates()
	if err != nil {
		logrus.Fatalf("failed to parse templates: %s", err.Error())
	}

	sessionRepo := database.NewSessionRepository(cfg.App.SessionTTL)
	imgProcessor := processor.NewImageProcessor(cfg.App.MaxUploadBytes, cfg.App.PreviewWidth, cfg.App.PreviewHeight)
	analysisService := service.NewAnalysisService(sessionRepo, analyzer, imgProcessor, producer, service.Options{
		AnalysisTimeout: cfg.App.AnalysisTimeout,
		EventTopic:      cfg.Kafka.Topic,
	})
	analysisService.StartSweeper(ctx, cfg.App.SweepInterval)

	handler := transport.NewAnalysisHandler(analysisService, markdown.NewRenderer(), cfg.App.MaxUploadBytes)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := transport.InitRoutes(handler, transport.RouterOptions{
		Templates: templates,
		// base64 form fields are a third larger than the file, plus multipart overhead
		BodyLimit:     cfg.App.MaxUploadBytes*4/3 + 1<<20,
		SecureCookies: cfg.App.SecureCookies,
	})

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("port", cfg.Server.Port).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.AnalysisTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	// let in-flight analyses finish so their events are published
	done := make(chan struct{})
	go func() {
		analysisService.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logrus.Warn("Gave up waiting for in-flight analyses")
	}
}
