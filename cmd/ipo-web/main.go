package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ipopredict/internal/config"
	"ipopredict/internal/dashboard"
	"ipopredict/internal/util"
	"ipopredict/internal/web"
	"ipopredict/pkg/predictor"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("loading .env: %v", err)
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging. Stdout always, plus the log file when one is configured.
	var w io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		logFile, err := util.OpenLogFile(cfg.Logging.File, "ipo-web", time.Now())
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer logFile.Close()
		w = io.MultiWriter(os.Stdout, logFile)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, w)
	util.SetDefault(logger)

	formatter, err := dashboard.NewFormatter(cfg.Display.Locale, cfg.Display.Currency)
	if err != nil {
		log.Fatalf("display settings: %v", err)
	}

	client := predictor.NewClient(cfg.Predictor.BaseURL,
		predictor.WithPaths(predictor.Paths{
			Predict: cfg.Predictor.PredictPath,
			History: cfg.Predictor.HistoryPath,
			Update:  cfg.Predictor.UpdatePath,
		}),
		predictor.WithTimeout(cfg.Predictor.Timeout),
		predictor.WithLogger(logger),
	)

	srv := web.NewServer(web.Options{
		Service:        client,
		Formatter:      formatter,
		Theme:          cfg.Theme,
		NoticeDuration: cfg.Display.NoticeDuration,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("web front end listening", "addr", httpServer.Addr, "predictor", client.BaseURL())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down web front end")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
