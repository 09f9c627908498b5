package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	commenthttp "github.com/levelupgamer/commenttree/internal/comment/handler/http"
	"github.com/levelupgamer/commenttree/internal/comment/model"
	"github.com/levelupgamer/commenttree/internal/comment/notify"
	"github.com/levelupgamer/commenttree/internal/comment/render"
	"github.com/levelupgamer/commenttree/internal/comment/service"
	"github.com/levelupgamer/commenttree/internal/comment/thread"
	"github.com/levelupgamer/commenttree/internal/config"
	"github.com/levelupgamer/commenttree/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(cfg, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, closeLog := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	defer closeLog()

	if err := serve(cfg, log); err != nil {
		log.Error().Err(err).Msg("commenttree stopped")
		closeLog()
		os.Exit(1)
	}
}

func serve(cfg config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn().Err(err).Msg("storage close")
		}
	}()

	notifier := notify.Multi{notify.NewLog(log)}
	if cfg.NotifyChannel != "" {
		client, err := st.redisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("notify channel: %w", err)
		}
		notifier = append(notifier, notify.NewRedis(client, cfg.NotifyChannel, log))
	}

	opts := []service.Option{
		service.WithEngine(thread.New(thread.WithLeafTombstones(cfg.LeafTombstones))),
		service.WithNotifier(notifier),
		service.WithLogger(log),
		service.WithLegacyKeys(cfg.Legacy),
		service.WithPageSize(cfg.ReplyPageSize),
		service.WithMaxSessions(cfg.MaxSessions),
	}
	if cfg.RenderMarkdown {
		opts = append(opts, service.WithRenderer(render.Markdown))
	}
	if cfg.SessionTTL > 0 {
		opts = append(opts, service.WithSessionTTL(cfg.SessionTTL))
	}
	svc := service.New(st.kv, opts...)

	h := commenthttp.New(svc, []byte(cfg.JWTSecret), log)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("storage", cfg.StorageDriver).Msg("commenttree listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-sigCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}
	return nil
}

// issueToken prints a signed session token for local testing of the
// storefront without the identity provider.
func issueToken(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email (required)")
	role := fs.String("role", string(model.RoleUser), "user or admin")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime, 0 for none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	tok, err := commenthttp.IssueToken([]byte(cfg.JWTSecret), model.Actor{
		Name:  *name,
		Email: *email,
		Role:  model.NormalizeRole(*role),
	}, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
