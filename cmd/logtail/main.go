// logtail streams a game server log file to stdout over the admin
// API's WebSocket endpoint, reconnecting automatically on transient
// failures.
//
// Usage: logtail --config configs/logtail.yaml --file server-main.log
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/craquehouse/vintagestory-server-sub000/internal/api"
	"github.com/craquehouse/vintagestory-server-sub000/internal/config"
	"github.com/craquehouse/vintagestory-server-sub000/internal/linebuf"
	"github.com/craquehouse/vintagestory-server-sub000/internal/stream"
	"github.com/craquehouse/vintagestory-server-sub000/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/logtail.yaml", "path to config file")
	file := flag.String("file", "server-main.log", "log file to stream")
	history := flag.Int("history", -1, "history lines to request (0 = none, default from config)")
	list := flag.Bool("list", false, "list available log files and exit")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Log records go to stderr; stdout carries only the streamed lines.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting logtail",
		"version", version.Version,
		"commit", version.Commit,
		"server", cfg.Server.BaseURL,
		"file", *file,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiClient := api.NewClient(
		cfg.Server.BaseURL,
		cfg.Server.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Server.Timeout),
		api.WithRetries(cfg.Server.MaxRetries, time.Second),
	)

	if *list {
		if err := listFiles(ctx, apiClient); err != nil {
			logger.Error("list log files failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if status, err := apiClient.GetStatus(ctx); err != nil {
		logger.Warn("server status unavailable", "error", err)
	} else {
		logger.Info("server status",
			"state", status.State,
			"server_version", status.Version,
			"players", status.Players,
		)
	}

	base, err := url.Parse(cfg.Server.BaseURL)
	if err != nil {
		logger.Error("parse base url", "error", err)
		os.Exit(1)
	}

	streamCfg := stream.Config{
		BaseURL:            base,
		HistoryLines:       cfg.Stream.HistoryLines,
		ReconnectBaseDelay: cfg.Stream.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Stream.ReconnectMaxDelay,
		MaxRetries:         cfg.Stream.MaxRetries,
		HandshakeTimeout:   cfg.Stream.HandshakeTimeout,
	}
	switch {
	case *history == 0:
		streamCfg.HistoryLines = -1 // explicit zero, not "use the default"
	case *history > 0:
		streamCfg.HistoryLines = *history
	}

	tokens := stream.TokenFunc(func(ctx context.Context) (stream.Token, error) {
		tok, err := apiClient.RequestStreamToken(ctx)
		if err != nil {
			return stream.Token{}, err
		}
		return stream.Token{Value: tok.Value, ExpiresAt: tok.ExpiresAt, TTL: tok.TTL}, nil
	})

	buf := linebuf.New(256)
	streamer := stream.New(streamCfg, tokens, logger)

	streamer.SetCallbacks(stream.Callbacks{
		OnState: func(st stream.ConnState) {
			logger.Info("stream state changed", "state", st.String())
			if st.Terminal() {
				// Nothing to wait for: the streamer will not recover on
				// its own from this state.
				stop()
			}
		},
		OnMessage: func(data []byte) {
			line := linebuf.Line{
				Data:       append([]byte(nil), data...),
				ReceivedAt: time.Now(),
			}
			buf.Append(line)
		},
		OnClose: func(ev stream.CloseEvent) {
			logger.Debug("stream closed",
				"code", ev.Code,
				"reason", ev.Reason,
				"attempt_id", ev.AttemptID,
			)
		},
	})
	streamer.SetTarget(*file, true)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			line, ok := buf.Next()
			if !ok {
				return nil
			}
			fmt.Println(string(line.Data))
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		streamer.Close()
		buf.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("logtail failed", "error", err)
		os.Exit(1)
	}

	stats := buf.Stats()
	logger.Info("logtail stopped", "lines", stats.TotalDrained)
}

func listFiles(ctx context.Context, client *api.Client) error {
	files, err := client.ListLogFiles(ctx)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("%-30s %10d bytes  %s\n", f.Name, f.SizeBytes, f.ModifiedAt)
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
