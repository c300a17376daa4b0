package database

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
)

// VerificationLogs is the append-only record of verification attempts.
// It has no update or delete operation.
type VerificationLogs struct {
	conn
}

// Record appends the outcome of one verification attempt. It fails only when
// the certificate does not exist (errl.ErrNotFound) or the store is unavailable.
// verifiedBy must be the id of the verifying principal.
func (v *VerificationLogs) Record(ctx context.Context, certID, verifiedBy string, status bool, reason string) (models.VerificationLogEntry, error) {
	if !normalizeID(&certID) {
		return models.VerificationLogEntry{}, errl.NotFound("certificate", certID)
	}
	if !normalizeID(&verifiedBy) {
		return models.VerificationLogEntry{}, errl.Validation("verified_by %q is not a principal id", verifiedBy)
	}

	exists, err := (&Certificates{conn: v.conn}).Exists(ctx, certID)
	if err != nil {
		return models.VerificationLogEntry{}, err
	}
	if !exists {
		return models.VerificationLogEntry{}, errl.NotFound("certificate", certID)
	}

	id, err := newID()
	if err != nil {
		return models.VerificationLogEntry{}, err
	}

	entry := models.VerificationLogEntry{
		ID:         id,
		CertID:     certID,
		VerifiedBy: verifiedBy,
		Status:     status,
		Reason:     reason,
		VerifiedAt: now(),
	}

	query := `
		INSERT INTO verification_logs (log_id, cert_id, verified_by, status, reason, verified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = v.exec(ctx, query, entry.ID, entry.CertID, entry.VerifiedBy, entry.Status, entry.Reason, entry.VerifiedAt)
	if err != nil {
		return models.VerificationLogEntry{}, classify("record verification", certID, err, v.dialect)
	}

	slog.Info("Recorded verification", "cert_id", certID, "log_id", entry.ID, "status", status)
	return entry, nil
}

// History returns every verification attempt for a certificate ordered by
// verified_at ascending. An unknown certificate fails with errl.ErrNotFound.
func (v *VerificationLogs) History(ctx context.Context, certID string) ([]models.VerificationLogEntry, error) {
	if !normalizeID(&certID) {
		return nil, errl.NotFound("certificate", certID)
	}
	exists, err := (&Certificates{conn: v.conn}).Exists(ctx, certID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errl.NotFound("certificate", certID)
	}

	query := `
		SELECT log_id, cert_id, verified_by, status, reason, verified_at
		FROM verification_logs
		WHERE cert_id = ?
		ORDER BY verified_at ASC, log_id ASC
	`

	var entries []models.VerificationLogEntry
	err = v.each(ctx, query, []any{certID}, func(rows *sql.Rows) error {
		var e models.VerificationLogEntry
		if err := rows.Scan(&e.ID, &e.CertID, &e.VerifiedBy, &e.Status, &e.Reason, &e.VerifiedAt); err != nil {
			return err
		}
		e.VerifiedAt = e.VerifiedAt.UTC()
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, classify("fetch verification history", certID, err, v.dialect)
	}

	return entries, nil
}
