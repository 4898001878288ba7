package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"room-client/internal/api"
	"room-client/internal/auth"
	"room-client/internal/config"
	"room-client/internal/database"
	"room-client/internal/gateway"
	"room-client/internal/handlers"
	"room-client/internal/metrics"
	"room-client/internal/services"
	"room-client/internal/websocket"
	"room-client/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration: %v", err)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("%v", err)
	}
	logger.Info("Client stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Identify the viewer from the session token
	authService := auth.NewService(cfg.Auth.JWTSecret)
	viewer, err := authService.GetUserFromToken(cfg.Auth.Token)
	if err != nil {
		return err
	}
	logger.Info("Signed in as %s (%s)", viewer.Username, viewer.ID)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	gw := gateway.NewClient(cfg.Server.APIURL, cfg.Auth.Token, cfg.Server.HTTPTimeout)
	session := services.NewSession(services.Options{
		Gateway: gw,
		Metrics: m,
		Viewer:  viewer,
		Token:   cfg.Auth.Token,
	})
	defer session.Close()

	g, ctx := errgroup.WithContext(ctx)

	if err := session.Bootstrap(ctx); err != nil {
		return err
	}

	// Transcript archive, when a database is configured. Restored after the
	// bootstrap so mentions are checked against the viewer.
	if cfg.Database.URL != "" {
		db, err := database.NewPostgresDB(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		if err := database.Restore(ctx, db, session.Chat, cfg.Chat.HistorySize); err != nil {
			logger.Error("Error loading recent messages: %v", err)
		}
		archiver := database.NewArchiver(db, m)
		session.Store.Observe(archiver.Observe)
		g.Go(func() error {
			archiver.Run(ctx)
			return nil
		})
	}

	// Push channel
	conn, err := websocket.Dial(ctx, cfg.Server.SocketURL, cfg.Auth.Token, session.Push.HandleEvent)
	if err != nil {
		return err
	}
	session.AttachSender(conn)
	g.Go(func() error {
		defer session.AttachSender(nil)
		err := conn.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("push channel closed by server")
		}
		return err
	})

	// Local status API
	server := &http.Server{
		Addr:              cfg.Status.Addr,
		Handler:           api.NewRouter(handlers.NewStatusHandlers(session.Store, session.Selectors, session), reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logger.Info("Status API listening on http://%s", cfg.Status.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// Chat input; the scanner cannot be interrupted, so it is left out of the group
	go readInput(ctx, session)

	err = g.Wait()
	logger.Info("Client shutting down...")
	return err
}

func readInput(ctx context.Context, session *services.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := session.Execute(ctx, line); err != nil {
			logger.Warn("%v", err)
		}
	}
}
