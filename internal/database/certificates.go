package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
)

// Certificates stores certificate integrity records. Records are written
// once and never updated.
type Certificates struct {
	conn
}

const certificateColumns = `
	cert_id, student_id, univ_id, roll_no,
	student_name_hash, dob_hash, gpa_hash, batch_year, issued_date, file_url, image_hash,
	signature_embeddings, photo_embeddings, logo_embeddings, qr_code_cipher, created_at`

// Insert persists a new integrity record. ID and CreatedAt are assigned here
// and returned in the stored record. An unknown student or university fails
// with errl.ErrNotFound.
func (c *Certificates) Insert(ctx context.Context, cert models.Certificate) (models.Certificate, error) {
	if !normalizeID(&cert.StudentID) {
		return models.Certificate{}, errl.NotFound("student", cert.StudentID)
	}
	if !normalizeID(&cert.UniversityID) {
		return models.Certificate{}, errl.NotFound("university", cert.UniversityID)
	}

	id, err := newID()
	if err != nil {
		return models.Certificate{}, err
	}
	cert.ID = id
	cert.CreatedAt = now()
	cert.IssuedDate = truncateDay(cert.IssuedDate)

	query := `INSERT INTO certificates (` + certificateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = c.exec(ctx, query,
		cert.ID, cert.StudentID, cert.UniversityID, cert.RollNo,
		cert.StudentNameHash, cert.DOBHash, cert.GPAHash, cert.BatchYear, cert.IssuedDate, cert.FileURL, cert.ImageHash,
		cert.SignatureEmbedding, cert.PhotoEmbedding, cert.LogoEmbedding, cert.QRCipher, cert.CreatedAt,
	)
	if err != nil {
		err = classify("issue certificate", cert.StudentID+"/"+cert.UniversityID, err, c.dialect)
		slog.Warn("Certificate issuance failed", "student_id", cert.StudentID, "univ_id", cert.UniversityID, "error", err)
		return models.Certificate{}, err
	}

	slog.Info("Issued certificate", "cert_id", cert.ID, "student_id", cert.StudentID, "univ_id", cert.UniversityID)
	return cert, nil
}

// Fetch retrieves a certificate by id.
func (c *Certificates) Fetch(ctx context.Context, id string) (models.Certificate, error) {
	if !normalizeID(&id) {
		return models.Certificate{}, errl.NotFound("certificate", id)
	}

	var cert models.Certificate
	err := c.get(ctx, "SELECT "+certificateColumns+" FROM certificates WHERE cert_id = ?", []any{id}, certificateDest(&cert)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Certificate{}, errl.NotFound("certificate", id)
		}
		return models.Certificate{}, classify("fetch certificate", id, err, c.dialect)
	}

	return normalizeCertificate(cert), nil
}

// Exists reports whether a certificate with the given id exists.
func (c *Certificates) Exists(ctx context.Context, id string) (bool, error) {
	if !normalizeID(&id) {
		return false, nil
	}
	var one int
	err := c.get(ctx, "SELECT 1 FROM certificates WHERE cert_id = ?", []any{id}, &one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("check certificate existence", id, err, c.dialect)
	}
	return true, nil
}

// ListByStudent retrieves every certificate issued to a student, oldest first.
func (c *Certificates) ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error) {
	if !normalizeID(&studentID) {
		return nil, nil
	}

	query := "SELECT " + certificateColumns + " FROM certificates WHERE student_id = ? ORDER BY created_at, cert_id"

	var certs []models.Certificate
	err := c.each(ctx, query, []any{studentID}, func(rows *sql.Rows) error {
		var cert models.Certificate
		if err := rows.Scan(certificateDest(&cert)...); err != nil {
			return err
		}
		certs = append(certs, normalizeCertificate(cert))
		return nil
	})
	if err != nil {
		return nil, classify("list certificates", studentID, err, c.dialect)
	}
	return certs, nil
}

// Count returns the number of issued certificates.
func (c *Certificates) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.get(ctx, "SELECT COUNT(*) FROM certificates", nil, &n); err != nil {
		return 0, classify("count certificates", "", err, c.dialect)
	}
	return n, nil
}

func certificateDest(cert *models.Certificate) []any {
	return []any{
		&cert.ID, &cert.StudentID, &cert.UniversityID, &cert.RollNo,
		&cert.StudentNameHash, &cert.DOBHash, &cert.GPAHash, &cert.BatchYear, &cert.IssuedDate, &cert.FileURL, &cert.ImageHash,
		&cert.SignatureEmbedding, &cert.PhotoEmbedding, &cert.LogoEmbedding, &cert.QRCipher, &cert.CreatedAt,
	}
}

func normalizeCertificate(cert models.Certificate) models.Certificate {
	cert.IssuedDate = cert.IssuedDate.UTC()
	cert.CreatedAt = cert.CreatedAt.UTC()
	return cert
}

// truncateDay keeps the calendar date of t in UTC, matching a DATE column.
func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
