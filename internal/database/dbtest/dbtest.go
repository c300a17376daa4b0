// Package dbtest opens throwaway SQLite stores for tests and seeds them with
// the rows most tests need.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/evidenceledger/credstore/internal/config"
	"github.com/evidenceledger/credstore/internal/database"
	"github.com/evidenceledger/credstore/internal/models"
	"github.com/evidenceledger/credstore/internal/secret"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Secret is the plaintext secret given to seeded principals.
const Secret = "correct horse battery staple"

// Open creates an initialized store in a temporary directory. Secrets are
// hashed at the minimum bcrypt cost.
func Open(t testing.TB) *database.Database {
	t.Helper()
	return OpenWithHasher(t, secret.New(bcrypt.MinCost))
}

// OpenWithHasher is Open with a caller-chosen hasher.
func OpenWithHasher(t testing.TB, hasher *secret.Hasher) *database.Database {
	t.Helper()
	return OpenAt(t, filepath.Join(t.TempDir(), "credstore.db"), hasher)
}

// OpenAt opens and initializes the store in the file at path. Opening the
// same path twice with different hashers simulates a cost change between
// deployments.
func OpenAt(t testing.TB, path string, hasher *secret.Hasher) *database.Database {
	t.Helper()

	cfg := config.Database{
		Driver:         config.DriverSQLite,
		Name:           path,
		ConnectTimeout: 5 * time.Second,
		QueryTimeout:   5 * time.Second,
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg, hasher)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Initialize(ctx))
	return db
}

// University registers a university. privatePEM and publicPEM may be empty.
func University(t testing.TB, db *database.Database, privatePEM, publicPEM string) models.University {
	t.Helper()

	univ, err := db.Universities().Create(context.Background(), models.NewUniversity{
		Name:       "University of " + t.Name(),
		Address:    "1 College Road",
		PrivateKey: privatePEM,
		PublicKey:  publicPEM,
	})
	require.NoError(t, err)
	return univ
}

// Student registers a student at univID with Secret as their secret.
func Student(t testing.TB, db *database.Database, univID, rollNo, email string) models.StudentView {
	t.Helper()

	student, err := db.Students().Create(context.Background(), models.NewStudent{
		Name:          "Student " + rollNo,
		Email:         email,
		Secret:        Secret,
		RollNo:        rollNo,
		DOB:           "15-06-1999",
		UniversityID:  univID,
		PassedOutYear: 2021,
	})
	require.NoError(t, err)
	return student
}
