package database

import (
	"context"
	"strings"
)

// createTables creates all necessary tables. The column set mirrors the
// production schema; only type names differ between dialects.
func (d *Database) createTables(ctx context.Context) error {
	types := strings.NewReplacer(
		"{uuid}", d.dialect.uuidType(),
		"{blob}", d.dialect.blobType(),
	)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS universities (
			univ_id {uuid} PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			private_key TEXT NOT NULL DEFAULT '',
			public_key TEXT NOT NULL DEFAULT '',
			signature_embeddings {blob},
			logo_embeddings {blob},
			stamp_embeddings {blob},
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			admin_id {uuid} PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS students (
			student_id {uuid} PRIMARY KEY,
			roll_no TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			dob DATE NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			univ_id {uuid} NOT NULL REFERENCES universities (univ_id),
			passed_out_year INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS certificates (
			cert_id {uuid} PRIMARY KEY,
			student_id {uuid} NOT NULL REFERENCES students (student_id),
			univ_id {uuid} NOT NULL REFERENCES universities (univ_id),
			roll_no TEXT NOT NULL,
			student_name_hash TEXT NOT NULL,
			dob_hash TEXT NOT NULL,
			gpa_hash TEXT NOT NULL,
			batch_year INTEGER NOT NULL,
			issued_date DATE NOT NULL,
			file_url TEXT NOT NULL DEFAULT '',
			image_hash TEXT NOT NULL,
			signature_embeddings {blob},
			photo_embeddings {blob},
			logo_embeddings {blob},
			qr_code_cipher TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_certificates_student ON certificates (student_id)`,
		`CREATE TABLE IF NOT EXISTS verification_logs (
			log_id {uuid} PRIMARY KEY,
			cert_id {uuid} NOT NULL REFERENCES certificates (cert_id),
			verified_by {uuid} NOT NULL,
			status BOOLEAN NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			verified_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verification_logs_cert ON verification_logs (cert_id, verified_at)`,
	}

	for _, query := range queries {
		if _, err := d.db.ExecContext(ctx, types.Replace(query)); err != nil {
			return classify("execute schema statement", "", err, d.dialect)
		}
	}

	return nil
}

func (d Dialect) uuidType() string {
	if d == Postgres {
		return "UUID"
	}
	return "TEXT"
}

func (d Dialect) blobType() string {
	if d == Postgres {
		return "BYTEA"
	}
	return "BLOB"
}

func (d Dialect) driverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}
