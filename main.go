package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/evidenceledger/credstore/internal/attest"
	"github.com/evidenceledger/credstore/internal/config"
	"github.com/evidenceledger/credstore/internal/integrity"
	"github.com/evidenceledger/credstore/internal/server"
	"github.com/google/uuid"
)

var (
	envFile     string
	dbDriver    string
	databaseURL string
	logLevel    string
	keygen      bool
	qrCertID    string
	qrOut       string
)

func main() {
	flag.StringVar(&envFile, "env", ".env", "Environment file to load before reading the environment")

	// Database selection. Flags take priority over the environment.
	flag.StringVar(&dbDriver, "db-driver", "", "Database driver (postgres or sqlite3)")
	flag.StringVar(&databaseURL, "database-url", "", "Connection string, overrides the discrete connection variables")

	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Utilities
	flag.BoolVar(&keygen, "keygen", false, "Print a new university key pair and its public JWK, then exit")
	flag.StringVar(&qrCertID, "qr", "", "Render the QR code of the given certificate id and exit")
	flag.StringVar(&qrOut, "qr-out", "qr.png", "Output file for -qr")

	flag.Parse()

	if keygen {
		if err := printKeyPair(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if dbDriver != "" {
		cfg.Database.Driver = dbDriver
	}
	if databaseURL != "" {
		cfg.Database.DSN = databaseURL
	}
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	// Initialize logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received")
		cancel()
	}()

	srv, err := server.New(ctx, cfg, nil)
	if err != nil {
		slog.Error("Failed to connect to the database", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	if err := srv.Start(ctx); err != nil {
		slog.Error("Startup failed", "error", err)
		os.Exit(1)
	}

	if qrCertID != "" {
		if err := writeQR(ctx, srv, qrCertID, qrOut); err != nil {
			slog.Error("Failed to render QR code", "cert_id", qrCertID, "error", err)
			os.Exit(1)
		}
	}
}

func printKeyPair() error {
	privatePEM, publicPEM, err := attest.GenerateKeyPair()
	if err != nil {
		return err
	}

	key, err := attest.PublicJWK(publicPEM, uuid.NewString())
	if err != nil {
		return err
	}
	jwkJSON, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return err
	}

	fmt.Print(privatePEM)
	fmt.Print(publicPEM)
	fmt.Println(string(jwkJSON))
	return nil
}

func writeQR(ctx context.Context, srv *server.Server, certID, out string) error {
	cert, err := srv.Database().Certificates().Fetch(ctx, certID)
	if err != nil {
		return err
	}

	png, err := integrity.RenderQR(cert, integrity.DefaultQRSize)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return err
	}

	slog.Info("QR code written", "cert_id", certID, "file", out)
	return nil
}
