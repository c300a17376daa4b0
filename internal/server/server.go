package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evidenceledger/credstore/internal/auth"
	"github.com/evidenceledger/credstore/internal/config"
	"github.com/evidenceledger/credstore/internal/database"
	"github.com/evidenceledger/credstore/internal/integrity"
	"github.com/evidenceledger/credstore/internal/secret"
)

// Server wires the store and the services built on it.
type Server struct {
	cfg      config.Config
	db       *database.Database
	auth     *auth.Service
	issuer   *integrity.Issuer
	verifier *integrity.Verifier
}

// Stats holds the row counts reported at startup.
type Stats struct {
	Admins       int
	Students     int
	Universities int
	Certificates int
}

// New connects to the configured store and creates the services. A nil
// matcher compares embeddings byte for byte.
func New(ctx context.Context, cfg config.Config, matcher integrity.EmbeddingMatcher) (*Server, error) {
	hasher := secret.New(cfg.BcryptCost)

	db, err := database.Open(ctx, cfg.Database, hasher)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:      cfg,
		db:       db,
		auth:     auth.New(hasher, db.Admins(), db.Students()),
		issuer:   integrity.NewIssuer(db),
		verifier: integrity.NewVerifier(db, matcher),
	}, nil
}

// Start creates the schema and reports what the store holds.
func (s *Server) Start(ctx context.Context) error {
	if err := s.db.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}

	slog.Info("Store ready",
		"driver", s.cfg.Database.Driver,
		"admins", stats.Admins,
		"students", stats.Students,
		"universities", stats.Universities,
		"certificates", stats.Certificates)
	return nil
}

// Stats counts the rows of each table. The counts run concurrently over the
// connection pool.
func (s *Server) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		wg    sync.WaitGroup
	)
	errChan := make(chan error, 4)

	count := func(dst *int, fn func(context.Context) (int, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := fn(ctx)
			if err != nil {
				errChan <- err
				return
			}
			*dst = n
		}()
	}

	count(&stats.Admins, s.db.Admins().Count)
	count(&stats.Students, s.db.Students().Count)
	count(&stats.Universities, s.db.Universities().Count)
	count(&stats.Certificates, s.db.Certificates().Count)

	wg.Wait()
	close(errChan)
	if err := <-errChan; err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Database returns the underlying store.
func (s *Server) Database() *database.Database {
	return s.db
}

// Auth returns the authentication service.
func (s *Server) Auth() *auth.Service {
	return s.auth
}

// Issuer returns the certificate issuer.
func (s *Server) Issuer() *integrity.Issuer {
	return s.issuer
}

// Verifier returns the certificate verifier.
func (s *Server) Verifier() *integrity.Verifier {
	return s.verifier
}

// Close releases the connection pool.
func (s *Server) Close() error {
	return s.db.Close()
}
