package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ipopredict/internal/config"
	"ipopredict/internal/dashboard"
	"ipopredict/internal/tui"
	"ipopredict/internal/util"
	"ipopredict/pkg/predictor"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "loading .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs only go to the file.
	logFile, err := util.OpenLogFile(cfg.Logging.File, "ipo-client", time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logFile)
	util.SetDefault(logger)

	formatter, err := dashboard.NewFormatter(cfg.Display.Locale, cfg.Display.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "display settings: %v\n", err)
		os.Exit(1)
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
	logger.Info("starting client", "predictor", client.BaseURL())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	m := tui.New(tui.Options{
		Context:        ctx,
		Service:        client,
		Formatter:      formatter,
		Theme:          tui.NewTheme(cfg.Theme),
		NoticeDuration: cfg.Display.NoticeDuration,
		Logger:         logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
