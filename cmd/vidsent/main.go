package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/vidsent/vidsent/internal/app"
	"github.com/vidsent/vidsent/internal/config"
	"github.com/vidsent/vidsent/internal/core/domain"
	db "github.com/vidsent/vidsent/internal/storage"
)

type runOptions struct {
	mode        string
	url         string
	requestedBy string
	sentiment   string
	limit       int
}

func main() {
	opts := runOptions{}

	flag.StringVar(&opts.mode, "mode", "analyze", "Run mode (analyze, history, serve-health)")
	flag.StringVar(&opts.url, "url", "", "YouTube video URL")
	flag.StringVar(&opts.requestedBy, "requested-by", "", "Requester ID to attach to the analysis (optional)")
	flag.StringVar(&opts.sentiment, "sentiment", "", "Filter history comments by sentiment (positive, negative, neutral)")
	flag.IntVar(&opts.limit, "limit", 10, "Max rows to list in history mode")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolOpts := db.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}

	database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, poolOpts, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err = database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application := app.New(cfg, database, &logger)

	if err = runMode(ctx, application, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func runMode(ctx context.Context, application *app.App, opts runOptions) error {
	switch opts.mode {
	case "analyze":
		if opts.url == "" {
			return errors.New("mode analyze requires -url")
		}

		summary, err := application.Analyze(ctx, opts.url, opts.requestedBy)
		if err != nil {
			return err
		}

		printSummary(summary)

		return nil
	case "history":
		if opts.url == "" {
			return errors.New("mode history requires -url")
		}

		sentiment := domain.Sentiment(opts.sentiment)
		if opts.sentiment != "" && !sentiment.Valid() {
			return fmt.Errorf("invalid sentiment %q, want positive, negative or neutral", opts.sentiment)
		}

		history, err := application.History(ctx, opts.url, opts.requestedBy, opts.limit)
		if err != nil {
			return err
		}

		printHistory(history)

		if len(history.Analyses) == 0 {
			return nil
		}

		page, err := application.CommentPage(ctx, history.Analyses[0].ID, sentiment, opts.limit, 0)
		if err != nil {
			return err
		}

		printCommentPage(page)

		return nil
	case "serve-health":
		return application.StartHealthServer(ctx)
	default:
		return fmt.Errorf("unknown mode %q, want analyze, history or serve-health", opts.mode)
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func printSummary(s *domain.Summary) {
	bold := color.New(color.Bold)

	bold.Printf("\n%s\n", s.Video.Title)
	fmt.Printf("Channel:  %s\n", s.Video.Channel)
	fmt.Printf("Analysis: %s\n\n", s.AnalysisID)

	total := s.TotalComments
	if total == 0 {
		total = 1
	}

	color.Green("  positive  %5d  (%.1f%%)", s.Distribution.Positive, percent(s.Distribution.Positive, total))
	color.Red("  negative  %5d  (%.1f%%)", s.Distribution.Negative, percent(s.Distribution.Negative, total))
	color.Yellow("  neutral   %5d  (%.1f%%)", s.Distribution.Neutral, percent(s.Distribution.Neutral, total))

	bold.Printf("  total     %5d\n", s.TotalComments)
}

func printHistory(h *domain.VideoHistory) {
	bold := color.New(color.Bold)

	bold.Printf("\n%s\n", h.Video.Title)
	fmt.Printf("Channel:  %s\n\n", h.Video.Channel)

	if len(h.Analyses) == 0 {
		fmt.Println("No stored analyses for this video.")
		return
	}

	for _, a := range h.Analyses {
		fmt.Printf("  %s  %s", a.CreatedAt.Format(time.RFC3339), a.ID)

		if a.TotalComments == nil {
			color.Yellow("  (incomplete)")
			continue
		}

		fmt.Printf("  total %d  +%d/-%d/~%d\n",
			countOrZero(a.TotalComments),
			countOrZero(a.PositiveCount),
			countOrZero(a.NegativeCount),
			countOrZero(a.NeutralCount))
	}
}

func printCommentPage(p *domain.CommentPage) {
	if len(p.Comments) == 0 {
		return
	}

	fmt.Printf("\nComments (%d of %d):\n", len(p.Comments), p.Total)

	for _, c := range p.Comments {
		label := color.YellowString("%s", c.Sentiment)

		switch c.Sentiment {
		case domain.SentimentPositive:
			label = color.GreenString("%s", c.Sentiment)
		case domain.SentimentNegative:
			label = color.RedString("%s", c.Sentiment)
		}

		fmt.Printf("  [%s] %s: %s\n", label, c.Author, truncateText(c.Text, 100))
	}
}

func countOrZero(n *int) int {
	if n == nil {
		return 0
	}

	return *n
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "..."
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
