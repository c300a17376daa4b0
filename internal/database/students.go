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

// Students stores student credentials. The identity key of a student is
// either its email or its roll number; both are unique.
type Students struct {
	principals
}

const studentColumns = `student_id, roll_no, name, dob, email, univ_id, passed_out_year, created_at`

// Create validates every field, including a strict DD-MM-YYYY date of birth,
// before hashing the secret or writing anything. Invalid input fails with
// errl.ErrValidation; a taken email or roll number with
// errl.ErrDuplicateIdentity; an unknown university with errl.ErrNotFound.
func (s *Students) Create(ctx context.Context, in models.NewStudent) (models.StudentView, error) {
	dob, err := validate.DOB(in.DOB)
	if err == nil {
		err = validate.First(
			validate.Required("name", in.Name),
			validate.Email(in.Email),
			validate.Required("secret", in.Secret),
			validate.Required("roll_no", in.RollNo),
			validate.Year("passed_out_year", in.PassedOutYear),
		)
	}
	if err == nil && !normalizeID(&in.UniversityID) {
		err = errl.NotFound("university", in.UniversityID)
	}
	if err != nil {
		return models.StudentView{}, s.logMutation("create", err)
	}

	hashed, err := s.hasher.Hash(in.Secret)
	if err != nil {
		return models.StudentView{}, s.logMutation("create", err)
	}

	id, err := newID()
	if err != nil {
		return models.StudentView{}, s.logMutation("create", err)
	}

	student := models.StudentView{
		ID:            id,
		RollNo:        in.RollNo,
		Name:          in.Name,
		DOB:           dob,
		Email:         in.Email,
		UniversityID:  in.UniversityID,
		PassedOutYear: in.PassedOutYear,
		CreatedAt:     now(),
	}

	query := `
		INSERT INTO students (
			student_id, roll_no, name, dob, email, password, univ_id, passed_out_year, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.exec(ctx, query,
		student.ID, student.RollNo, student.Name, student.DOB, student.Email,
		hashed, student.UniversityID, student.PassedOutYear, student.CreatedAt,
	)
	if err != nil {
		return models.StudentView{}, s.logMutation("create", classify("create student", in.Email+"/"+in.RollNo, err, s.dialect))
	}

	slog.Info("Created student", "student_id", student.ID, "univ_id", student.UniversityID)
	return student, nil
}

// Delete removes the student with the given email or roll number.
func (s *Students) Delete(ctx context.Context, identityKey string) error {
	return s.delete(ctx, identityKey)
}

// DeleteByID removes the student with the given id.
func (s *Students) DeleteByID(ctx context.Context, id string) error {
	return s.deleteByID(ctx, id)
}

// UpdateEmail changes the email of the student with the given id.
func (s *Students) UpdateEmail(ctx context.Context, id, newEmail string) error {
	return s.updateEmail(ctx, id, newEmail)
}

// UpdateSecret re-hashes and stores a new secret for the student.
func (s *Students) UpdateSecret(ctx context.Context, identityKey, newSecret string) error {
	return s.updateSecret(ctx, identityKey, newSecret)
}

// Exists reports whether a student with the given email or roll number exists.
func (s *Students) Exists(ctx context.Context, identityKey string) (bool, error) {
	return s.exists(ctx, identityKey)
}

// Count returns the number of students.
func (s *Students) Count(ctx context.Context) (int, error) {
	return s.count(ctx)
}

// Verifier returns the stored secret verifier for the student.
func (s *Students) Verifier(ctx context.Context, identityKey string) (string, error) {
	return s.verifier(ctx, identityKey)
}

// GetByIdentity retrieves a student by email or roll number.
func (s *Students) GetByIdentity(ctx context.Context, identityKey string) (models.StudentView, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE " + studentTable.identity
	return s.getOne(ctx, query, studentTable.identityArgs(identityKey), identityKey)
}

// GetByID retrieves a student by id.
func (s *Students) GetByID(ctx context.Context, id string) (models.StudentView, error) {
	if !normalizeID(&id) {
		return models.StudentView{}, errl.NotFound("student", id)
	}
	query := "SELECT " + studentColumns + " FROM students WHERE student_id = ?"
	return s.getOne(ctx, query, []any{id}, id)
}

// ListAll retrieves all students in creation order.
func (s *Students) ListAll(ctx context.Context) ([]models.StudentView, error) {
	query := "SELECT " + studentColumns + " FROM students ORDER BY created_at, student_id"

	var students []models.StudentView
	err := s.each(ctx, query, nil, func(rows *sql.Rows) error {
		student, err := scanStudent(rows)
		if err != nil {
			return err
		}
		students = append(students, student)
		return nil
	})
	if err != nil {
		return nil, classify("list students", "", err, s.dialect)
	}

	return students, nil
}

func (s *Students) getOne(ctx context.Context, query string, args []any, key string) (models.StudentView, error) {
	var student models.StudentView
	err := s.get(ctx, query, args,
		&student.ID, &student.RollNo, &student.Name, &student.DOB, &student.Email,
		&student.UniversityID, &student.PassedOutYear, &student.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StudentView{}, errl.NotFound("student", key)
		}
		return models.StudentView{}, classify("get student", key, err, s.dialect)
	}
	return normalizeStudent(student), nil
}

func scanStudent(rows *sql.Rows) (models.StudentView, error) {
	var student models.StudentView
	err := rows.Scan(
		&student.ID, &student.RollNo, &student.Name, &student.DOB, &student.Email,
		&student.UniversityID, &student.PassedOutYear, &student.CreatedAt,
	)
	return normalizeStudent(student), err
}

func normalizeStudent(s models.StudentView) models.StudentView {
	s.DOB = s.DOB.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return s
}
