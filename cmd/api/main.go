package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"

	"olleblog/api/internal/app"
	"olleblog/api/internal/blob"
	"olleblog/api/internal/config"
	"olleblog/api/internal/content"
	"olleblog/api/internal/docstore"
	"olleblog/api/internal/identity"
	"olleblog/api/internal/tokenstore"
	"olleblog/api/internal/upload"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	store, cleanup, err := openDocstore(ctx, cfg)
	if err != nil {
		log.Fatalf("docstore connection failed: %v", err)
	}
	defer cleanup()

	var tokens tokenstore.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for upload token storage")
		redisTokens, err := tokenstore.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisTokens.Close()
		tokens = redisTokens
	} else {
		log.Printf("Using in-memory upload token storage")
		tokens = tokenstore.NewMemoryStore()
	}

	uploader, err := openUploader(ctx, cfg, tokens)
	if err != nil {
		log.Fatalf("blob backend failed: %v", err)
	}

	var verifier identity.Verifier
	if cfg.NoAuth {
		log.Printf("WARNING: NO_AUTH=1, every caller is the admin")
		verifier = identity.StaticVerifier{UID: "dev", Email: cfg.AdminEmail}
	} else {
		fb, err := identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID)
		if err != nil {
			log.Fatalf("firebase init failed: %v", err)
		}
		verifier = fb
	}
	gate := identity.NewGate(verifier, cfg.AdminEmail)

	orchestrator := upload.NewOrchestrator(uploader, cfg.ImageBasePath, upload.Options{
		Attempts:       cfg.UploadAttempts,
		AttemptTimeout: cfg.UploadTimeout,
		ResolveTimeout: cfg.ResolveTimeout,
	})

	service := app.NewService(content.NewService(store), gate, tokens, orchestrator)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second, // travel uploads retry inside the request
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("olleblog API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openDocstore(ctx context.Context, cfg config.Config) (docstore.Store, func(), error) {
	switch cfg.DocstoreBackend {
	case "postgres":
		pg, err := docstore.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case "memory":
		return docstore.NewMemory(), func() {}, nil
	default:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID)
		if err != nil {
			return nil, nil, err
		}
		return docstore.NewFirestore(client), func() { _ = client.Close() }, nil
	}
}

func openUploader(ctx context.Context, cfg config.Config, tokens tokenstore.Store) (blob.Uploader, error) {
	requestTokens := app.RequestTokens{Fixed: cfg.GitHubToken, Store: tokens}

	switch cfg.BlobBackend {
	case "github":
		return blob.NewGitHubUploader(blob.GitHubConfig{
			Owner:  cfg.GitHubOwner,
			Repo:   cfg.GitHubRepo,
			Branch: cfg.GitHubBranch,
		}, requestTokens, nil), nil
	case "gitpages":
		return blob.NewGitPagesUploader(blob.GitPagesConfig{
			Dir:          cfg.PagesDir,
			RemoteURL:    cfg.PagesRemoteURL,
			PagesBaseURL: "https://" + cfg.GitHubOwner + ".github.io/" + cfg.GitHubRepo,
		}, requestTokens)
	default:
		return blob.NewMinioUploader(ctx, blob.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			Bucket:        cfg.MinioBucket,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.MinioPublicBaseURL,
		})
	}
}
