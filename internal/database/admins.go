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

// Admins stores administrator credentials, keyed by email.
type Admins struct {
	principals
}

// Create validates the input, hashes the secret and inserts a new admin.
// A taken email fails with errl.ErrDuplicateIdentity.
func (a *Admins) Create(ctx context.Context, name, email, secret, role string) (models.AdminView, error) {
	if err := validate.First(
		validate.Required("name", name),
		validate.Email(email),
		validate.Required("secret", secret),
		validate.Required("role", role),
	); err != nil {
		return models.AdminView{}, a.logMutation("create", err)
	}

	hashed, err := a.hasher.Hash(secret)
	if err != nil {
		return models.AdminView{}, a.logMutation("create", err)
	}

	id, err := newID()
	if err != nil {
		return models.AdminView{}, a.logMutation("create", err)
	}

	admin := models.AdminView{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now(),
	}

	query := `
		INSERT INTO admins (admin_id, name, email, password, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = a.exec(ctx, query, admin.ID, admin.Name, admin.Email, hashed, admin.Role, admin.CreatedAt)
	if err != nil {
		return models.AdminView{}, a.logMutation("create", classify("create admin", email, err, a.dialect))
	}

	slog.Info("Created admin", "admin_id", admin.ID, "role", admin.Role)
	return admin, nil
}

// Delete removes the admin with the given email.
func (a *Admins) Delete(ctx context.Context, email string) error {
	return a.delete(ctx, email)
}

// DeleteByID removes the admin with the given id.
func (a *Admins) DeleteByID(ctx context.Context, id string) error {
	return a.deleteByID(ctx, id)
}

// UpdateEmail changes the email of the admin with the given id.
func (a *Admins) UpdateEmail(ctx context.Context, id, newEmail string) error {
	return a.updateEmail(ctx, id, newEmail)
}

// UpdateSecret re-hashes and stores a new secret for the admin with the given email.
func (a *Admins) UpdateSecret(ctx context.Context, email, newSecret string) error {
	return a.updateSecret(ctx, email, newSecret)
}

// Exists reports whether an admin with the given email exists.
func (a *Admins) Exists(ctx context.Context, email string) (bool, error) {
	return a.exists(ctx, email)
}

// Count returns the number of admins.
func (a *Admins) Count(ctx context.Context) (int, error) {
	return a.count(ctx)
}

// Verifier returns the stored secret verifier for the admin with the given email.
func (a *Admins) Verifier(ctx context.Context, email string) (string, error) {
	return a.verifier(ctx, email)
}

// GetByIdentity retrieves an admin by email
func (a *Admins) GetByIdentity(ctx context.Context, email string) (models.AdminView, error) {
	query := `
		SELECT admin_id, name, email, role, created_at
		FROM admins
		WHERE email = ?
	`

	var admin models.AdminView
	err := a.get(ctx, query, []any{email},
		&admin.ID, &admin.Name, &admin.Email, &admin.Role, &admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AdminView{}, errl.NotFound("admin", email)
		}
		return models.AdminView{}, classify("get admin", email, err, a.dialect)
	}

	admin.CreatedAt = admin.CreatedAt.UTC()
	return admin, nil
}

// ListAll retrieves all admins in creation order
func (a *Admins) ListAll(ctx context.Context) ([]models.AdminView, error) {
	query := `
		SELECT admin_id, name, email, role, created_at
		FROM admins
		ORDER BY created_at, admin_id
	`

	var admins []models.AdminView
	err := a.each(ctx, query, nil, func(rows *sql.Rows) error {
		var admin models.AdminView
		if err := rows.Scan(&admin.ID, &admin.Name, &admin.Email, &admin.Role, &admin.CreatedAt); err != nil {
			return err
		}
		admin.CreatedAt = admin.CreatedAt.UTC()
		admins = append(admins, admin)
		return nil
	})
	if err != nil {
		return nil, classify("list admins", "", err, a.dialect)
	}

	return admins, nil
}
