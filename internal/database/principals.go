package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/secret"
	"github.com/evidenceledger/credstore/internal/validate"
	"github.com/google/uuid"
)

// table describes a principal table: its id column and how an identity key
// selects exactly one row.
type table struct {
	kind     string
	name     string
	idColumn string

	// identity is a WHERE fragment selecting the row for an identity key.
	identity     string
	identityArgs func(key string) []any
}

var adminTable = table{
	kind:         "admin",
	name:         "admins",
	idColumn:     "admin_id",
	identity:     "email = ?",
	identityArgs: func(key string) []any { return []any{key} },
}

// A student is identified by email or roll number. If one student's email
// equals another's roll number the email match wins.
var studentTable = table{
	kind:     "student",
	name:     "students",
	idColumn: "student_id",
	identity: `student_id = (
		SELECT student_id FROM students
		WHERE email = ? OR roll_no = ?
		ORDER BY CASE WHEN email = ? THEN 0 ELSE 1 END
		LIMIT 1)`,
	identityArgs: func(key string) []any { return []any{key, key, key} },
}

// principals implements the operations admins and students share.
type principals struct {
	conn
	hasher *secret.Hasher
	t      table
}

func (d *Database) principals(q querier, t table) principals {
	return principals{conn: d.conn(q), hasher: d.hasher, t: t}
}

func (p principals) exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := p.get(ctx, "SELECT 1 FROM "+p.t.name+" WHERE "+p.t.identity, p.t.identityArgs(key), &one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("check "+p.t.kind+" existence", key, err, p.dialect)
	}
	return true, nil
}

func (p principals) count(ctx context.Context) (int, error) {
	var n int
	if err := p.get(ctx, "SELECT COUNT(*) FROM "+p.t.name, nil, &n); err != nil {
		return 0, classify("count "+p.t.kind+"s", "", err, p.dialect)
	}
	return n, nil
}

// verifier returns the stored password verifier for an identity key.
func (p principals) verifier(ctx context.Context, key string) (string, error) {
	var v string
	err := p.get(ctx, "SELECT password FROM "+p.t.name+" WHERE "+p.t.identity, p.t.identityArgs(key), &v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errl.NotFound(p.t.kind, key)
	}
	if err != nil {
		return "", classify("fetch "+p.t.kind+" verifier", key, err, p.dialect)
	}
	return v, nil
}

func (p principals) delete(ctx context.Context, key string) error {
	res, err := p.exec(ctx, "DELETE FROM "+p.t.name+" WHERE "+p.t.identity, p.t.identityArgs(key)...)
	return p.logMutation("delete", p.affectedOne(res, err, "delete", key))
}

func (p principals) deleteByID(ctx context.Context, id string) error {
	if !normalizeID(&id) {
		return p.logMutation("delete", errl.NotFound(p.t.kind, id))
	}
	res, err := p.exec(ctx, "DELETE FROM "+p.t.name+" WHERE "+p.t.idColumn+" = ?", id)
	return p.logMutation("delete", p.affectedOne(res, err, "delete", id))
}

func (p principals) updateEmail(ctx context.Context, id, newEmail string) error {
	if err := validate.Email(newEmail); err != nil {
		return p.logMutation("update email", err)
	}
	if !normalizeID(&id) {
		return p.logMutation("update email", errl.NotFound(p.t.kind, id))
	}
	res, err := p.exec(ctx, "UPDATE "+p.t.name+" SET email = ? WHERE "+p.t.idColumn+" = ?", newEmail, id)
	if err != nil {
		return p.logMutation("update email", classify("update "+p.t.kind+" email", newEmail, err, p.dialect))
	}
	return p.logMutation("update email", p.affectedOne(res, nil, "update email", id))
}

func (p principals) updateSecret(ctx context.Context, key, newSecret string) error {
	hashed, err := p.hasher.Hash(newSecret)
	if err != nil {
		return p.logMutation("update secret", err)
	}
	args := append([]any{hashed}, p.t.identityArgs(key)...)
	res, err := p.exec(ctx, "UPDATE "+p.t.name+" SET password = ? WHERE "+p.t.identity, args...)
	return p.logMutation("update secret", p.affectedOne(res, err, "update secret", key))
}

// affectedOne turns a zero-row result into ErrNotFound and classifies driver
// errors. A foreign-key failure here means the row is still referenced.
func (p principals) affectedOne(res sql.Result, err error, op, key string) error {
	if err != nil {
		if isForeignKeyViolation(err) {
			return errl.Errorf("%w: %s %q", errl.ErrReferenced, p.t.kind, key)
		}
		return classify(op+" "+p.t.kind, key, err, p.dialect)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op+" "+p.t.kind, key, err, p.dialect)
	}
	if n == 0 {
		return errl.NotFound(p.t.kind, key)
	}
	return nil
}

// logMutation reports the outcome of a mutating call on the operator log and
// hands err back to the caller unchanged. Secrets never reach err.
func (p principals) logMutation(op string, err error) error {
	if err != nil {
		slog.Warn("Principal "+op+" failed", "kind", p.t.kind, "error", err)
		return err
	}
	slog.Info("Principal "+op+" succeeded", "kind", p.t.kind)
	return nil
}

// normalizeID rewrites *id to the canonical lowercase hyphenated form so that
// TEXT id columns match regardless of how the caller spelled the UUID. It
// reports false, leaving *id untouched, when *id is not a UUID.
func normalizeID(id *string) bool {
	parsed, err := uuid.Parse(*id)
	if err != nil {
		return false
	}
	*id = parsed.String()
	return true
}

func newID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errl.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}
