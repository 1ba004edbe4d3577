// Command ingest-server is the entry point for the ingest service: it loads
// configuration, opens the Postgres pool, applies embedded migrations, and
// binds the HTTP server (TLS if a cert/key pair is configured, plaintext
// otherwise).
package main

import (
	"context"
	"crypto/tls"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nucleus/ingest-core/internal/config"
	"github.com/nucleus/ingest-core/internal/database"
	"github.com/nucleus/ingest-core/internal/httpapi"
	"github.com/nucleus/ingest-core/internal/reqgate"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	gate := reqgate.New(cfg.BearerToken, cfg.RateLimitPerSecond, cfg.RateLimitBurst, cfg.MaxUncompressedBytes)

	mux := httpapi.NewMux(&httpapi.Deps{
		DB:              db.DB(),
		Gate:            gate,
		ChannelCapacity: cfg.ChannelCapacity,
		BatchLimit:      cfg.BatchLimit,
	})

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down server: %v", err)
		}
	}()

	if cfg.TLSEnabled() {
		tlsConfig, err := loadTLSConfig(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			log.Fatalf("failed to load TLS config: %v", err)
		}
		server.TLSConfig = tlsConfig

		log.Printf("ingest-server listening on %s (tls)", addr)
		if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	log.Printf("ingest-server listening on %s (plaintext)", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// loadTLSConfig reads a single certificate/key pair at startup. Unlike the
// teacher's keypairReloader (server/tlsconfig.go in the pack), this service
// does not watch for SIGHUP-triggered rotation — the deployment model here
// is short-lived pods recreated on cert rotation, not long-lived processes
// reloading in place.
func loadTLSConfig(certPath, keyPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}
