package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
	"github.com/evidenceledger/credstore/internal/validate"
)

// Universities stores issuing universities, their key pairs and their
// reference embeddings.
type Universities struct {
	conn
}

// Create inserts a new university.
func (u *Universities) Create(ctx context.Context, in models.NewUniversity) (models.University, error) {
	if err := validate.Required("name", in.Name); err != nil {
		return models.University{}, err
	}
	for field, e := range map[string]models.Embedding{
		"signature_embeddings": in.SignatureEmbedding,
		"logo_embeddings":      in.LogoEmbedding,
		"stamp_embeddings":     in.StampEmbedding,
	} {
		if err := e.Validate(); err != nil {
			return models.University{}, errl.Validation("%s: %v", field, err)
		}
	}

	id, err := newID()
	if err != nil {
		return models.University{}, err
	}

	univ := models.University{
		ID:                 id,
		Name:               in.Name,
		Address:            in.Address,
		PublicKey:          in.PublicKey,
		SignatureEmbedding: in.SignatureEmbedding,
		LogoEmbedding:      in.LogoEmbedding,
		StampEmbedding:     in.StampEmbedding,
		CreatedAt:          now(),
	}

	query := `
		INSERT INTO universities (
			univ_id, name, address, private_key, public_key,
			signature_embeddings, logo_embeddings, stamp_embeddings, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = u.exec(ctx, query,
		univ.ID, univ.Name, univ.Address, in.PrivateKey, univ.PublicKey,
		univ.SignatureEmbedding, univ.LogoEmbedding, univ.StampEmbedding, univ.CreatedAt,
	)
	if err != nil {
		return models.University{}, classify("create university", in.Name, err, u.dialect)
	}

	slog.Info("Created university", "univ_id", univ.ID, "name", univ.Name)
	return univ, nil
}

// Get retrieves the public view of a university.
func (u *Universities) Get(ctx context.Context, id string) (models.University, error) {
	if !normalizeID(&id) {
		return models.University{}, errl.NotFound("university", id)
	}

	query := `
		SELECT univ_id, name, address, public_key,
		       signature_embeddings, logo_embeddings, stamp_embeddings, created_at
		FROM universities
		WHERE univ_id = ?
	`

	var univ models.University
	err := u.get(ctx, query, []any{id},
		&univ.ID, &univ.Name, &univ.Address, &univ.PublicKey,
		&univ.SignatureEmbedding, &univ.LogoEmbedding, &univ.StampEmbedding, &univ.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.University{}, errl.NotFound("university", id)
		}
		return models.University{}, classify("get university", id, err, u.dialect)
	}

	univ.CreatedAt = univ.CreatedAt.UTC()
	return univ, nil
}

// PrivateKey returns the PEM private key used to sign certificates issued by
// the university. It is empty when the key is held outside the store.
func (u *Universities) PrivateKey(ctx context.Context, id string) (string, error) {
	if !normalizeID(&id) {
		return "", errl.NotFound("university", id)
	}

	var key string
	err := u.get(ctx, "SELECT private_key FROM universities WHERE univ_id = ?", []any{id}, &key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errl.NotFound("university", id)
		}
		return "", classify("get university key", id, err, u.dialect)
	}
	return key, nil
}

// Count returns the number of universities.
func (u *Universities) Count(ctx context.Context) (int, error) {
	var n int
	if err := u.get(ctx, "SELECT COUNT(*) FROM universities", nil, &n); err != nil {
		return 0, classify("count universities", "", err, u.dialect)
	}
	return n, nil
}
