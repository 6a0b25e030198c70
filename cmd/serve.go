package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	grpchandler "github.com/dtroode/postit-wall/internal/api/grpc/handler"
	grpcrouter "github.com/dtroode/postit-wall/internal/api/grpc/router"
	grpcserver "github.com/dtroode/postit-wall/internal/api/grpc/server"
	httprouter "github.com/dtroode/postit-wall/internal/api/http/router"
	httpserver "github.com/dtroode/postit-wall/internal/api/http/server"
	"github.com/dtroode/postit-wall/internal/config"
	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/model"
	"github.com/dtroode/postit-wall/internal/provider"
	"github.com/dtroode/postit-wall/internal/repository/memory"
	"github.com/dtroode/postit-wall/internal/repository/postgres"
	"github.com/dtroode/postit-wall/internal/server"
	"github.com/dtroode/postit-wall/internal/service"
	storage "github.com/dtroode/postit-wall/internal/storage/minio"
	"github.com/dtroode/postit-wall/internal/token"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wall over HTTP and the health check over gRPC",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
		defer stop()

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		return serve(ctx, cfg, logger.New(cfg.LogLevel))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// stores groups the persistence backends selected by STORE_DRIVER.
type stores struct {
	notes    model.NoteStore
	feed     model.ChangeFeed
	users    model.UserStore
	sessions model.SessionStore
	links    model.LinkStore
	// run blocks feeding change signals until ctx is done; nil when the note store publishes its own.
	run   func(ctx context.Context) error
	close func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		notes := memory.NewNoteStore()
		logger.Warn("using in-memory store, notes are lost on restart")
		return &stores{
			notes:    notes,
			feed:     notes,
			users:    memory.NewUserStore(),
			sessions: memory.NewSessionStore(),
			links:    memory.NewLinkStore(),
			close:    func() {},
		}, nil
	default:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		listener := postgres.NewListener(db, logger)
		return &stores{
			notes:    postgres.NewNoteRepository(db),
			feed:     listener,
			users:    postgres.NewUserRepository(db),
			sessions: postgres.NewSessionRepository(db),
			links:    postgres.NewLinkRepository(db),
			run:      listener.Run,
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("failed to close database", "error", err)
				}
			},
		}, nil
	}
}

func newSnapshotCache(cfg config.Storage) (*storage.Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return storage.NewClient(minioClient, cfg.Bucket), nil
}

func serve(ctx context.Context, cfg *config.Config, logger *logger.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var wg sync.WaitGroup

	if st.run != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := st.run(ctx); err != nil {
				logger.Error("change feed stopped, live walls no longer update", "error", err)
			}
		}()
	}

	var cache model.SnapshotCache
	if storageClient, err := newSnapshotCache(cfg.Storage); err != nil {
		logger.Warn("offline snapshot cache unavailable", "error", err)
	} else {
		cache = storageClient
	}

	notes := service.NewNotes(st.notes, st.feed, cache, logger)
	if err := notes.EnablePersistence(ctx); err != nil {
		logger.Debug("running without offline snapshot cache", "error", err)
	}

	var federated model.FederatedProvider
	if cfg.OAuth.Enabled() {
		federated = provider.NewOAuth2(cfg.OAuth)
	} else {
		logger.Info("federated sign-in disabled, OAUTH_CLIENT_ID is empty")
	}

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	identity := service.NewIdentity(st.users, st.sessions, st.links, tokenManager, federated, logger)

	engine, err := httprouter.New(identity, notes, st.notes, httprouter.Options{
		CookieMaxAge:  cfg.JWT.TTL,
		SecureCookies: cfg.HTTP.SecureCookies || cfg.HTTP.EnableHTTPS,
	}, logger).Register()
	if err != nil {
		return fmt.Errorf("failed to build http router: %w", err)
	}
	httpServer := httpserver.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port))
	httpSL := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName, "http/1.1")

	health := grpchandler.NewHealth(st.notes, cfg.GRPC.HealthInterval, logger)
	grpcServer := grpcserver.NewGRPCServer(grpcrouter.New(health, logger).Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))
	grpcSL := server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName, "h2")

	wg.Add(1)
	go func() {
		defer wg.Done()
		health.Run(ctx)
	}()

	servers := []struct {
		s  model.Server
		sl model.SecurityLayer
	}{
		{httpServer, httpSL},
		{grpcServer, grpcSL},
	}
	for _, srv := range servers {
		wg.Add(1)
		go func(s model.Server, sl model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
			}
		}(srv.s, srv.sl)
	}

	logger.Info("postit started", "version", buildVersion, "commit", buildCommit, "driver", cfg.StoreDriver)

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, srv := range servers {
		if err := srv.s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", srv.s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")

	return nil
}
