package database_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/evidenceledger/credstore/internal/database/dbtest"
	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudent(univID string) models.NewStudent {
	return models.NewStudent{
		Name:          "Grace Hopper",
		Email:         "grace@example.com",
		Secret:        dbtest.Secret,
		RollNo:        "CS-2017-042",
		DOB:           "15-06-1999",
		UniversityID:  univID,
		PassedOutYear: 2021,
	}
}

func TestStudents_CreateAndLookup(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	univ := dbtest.University(t, db, "", "")

	created, err := db.Students().Create(ctx, newStudent(univ.ID))
	require.NoError(t, err)

	byRoll, err := db.Students().GetByIdentity(ctx, "CS-2017-042")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byRoll.ID)
	assert.Equal(t, time.Date(1999, time.June, 15, 0, 0, 0, 0, time.UTC), byRoll.DOB)
	assert.Equal(t, univ.ID, byRoll.UniversityID)
	assert.Equal(t, 2021, byRoll.PassedOutYear)

	byEmail, err := db.Students().GetByIdentity(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := db.Students().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, byRoll, byID)

	for _, key := range []string{"CS-2017-042", "grace@example.com"} {
		exists, err := db.Students().Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists, key)
	}
}

func TestStudents_InvalidDOB(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	univ := dbtest.University(t, db, "", "")

	for _, dob := range []string{"31-02-2020", "29-02-2019", "1999-06-15", "15/06/1999", "", "15-06-1800"} {
		t.Run(dob, func(t *testing.T) {
			in := newStudent(univ.ID)
			in.DOB = dob
			_, err := db.Students().Create(ctx, in)
			require.ErrorIs(t, err, errl.ErrValidation)
		})
	}

	n, err := db.Students().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStudents_Duplicates(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	univ := dbtest.University(t, db, "", "")

	_, err := db.Students().Create(ctx, newStudent(univ.ID))
	require.NoError(t, err)

	sameEmail := newStudent(univ.ID)
	sameEmail.RollNo = "CS-2017-043"
	_, err = db.Students().Create(ctx, sameEmail)
	require.ErrorIs(t, err, errl.ErrDuplicateIdentity)

	sameRoll := newStudent(univ.ID)
	sameRoll.Email = "other@example.com"
	_, err = db.Students().Create(ctx, sameRoll)
	require.ErrorIs(t, err, errl.ErrDuplicateIdentity)

	n, err := db.Students().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStudents_UnknownUniversity(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	_, err := db.Students().Create(ctx, newStudent("7f1c2a52-6a4e-4d55-9a64-0d0f3f3f2e11"))
	require.ErrorIs(t, err, errl.ErrNotFound)

	_, err = db.Students().Create(ctx, newStudent("not-a-uuid"))
	require.ErrorIs(t, err, errl.ErrNotFound)
}

func TestStudents_EmailWinsOverRollNo(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	univ := dbtest.University(t, db, "", "")

	first := dbtest.Student(t, db, univ.ID, "a@example.com", "first@example.com")
	second := dbtest.Student(t, db, univ.ID, "R-2", "a@example.com")

	got, err := db.Students().GetByIdentity(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.NotEqual(t, first.ID, got.ID)
}

func TestStudents_Updates(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	univ := dbtest.University(t, db, "", "")

	student := dbtest.Student(t, db, univ.ID, "R-1", "one@example.com")
	dbtest.Student(t, db, univ.ID, "R-2", "two@example.com")

	require.NoError(t, db.Students().UpdateEmail(ctx, student.ID, "uno@example.com"))
	got, err := db.Students().GetByIdentity(ctx, "R-1")
	require.NoError(t, err)
	assert.Equal(t, "uno@example.com", got.Email)

	require.ErrorIs(t, db.Students().UpdateEmail(ctx, student.ID, "two@example.com"), errl.ErrDuplicateIdentity)
	require.ErrorIs(t, db.Students().UpdateEmail(ctx, "6b0c5c8e-3b0e-4f43-8f0c-5b7b8f0f6d21", "x@example.com"), errl.ErrNotFound)

	before, err := db.Students().Verifier(ctx, "R-1")
	require.NoError(t, err)
	require.NoError(t, db.Students().UpdateSecret(ctx, "uno@example.com", "rotated secret"))
	after, err := db.Students().Verifier(ctx, "R-1")
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestStudents_DeleteReferenced(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	univ := dbtest.University(t, db, "", "")

	student := dbtest.Student(t, db, univ.ID, "R-1", "one@example.com")
	_, err := db.Certificates().Insert(ctx, sampleCertificate(student))
	require.NoError(t, err)

	require.ErrorIs(t, db.Students().Delete(ctx, "R-1"), errl.ErrReferenced)

	exists, err := db.Students().Exists(ctx, "R-1")
	require.NoError(t, err)
	assert.True(t, exists)

	other := dbtest.Student(t, db, univ.ID, "R-2", "two@example.com")
	require.NoError(t, db.Students().DeleteByID(ctx, other.ID))
	require.ErrorIs(t, db.Students().Delete(ctx, "R-2"), errl.ErrNotFound)
}

func TestStudents_ListAll(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	univ := dbtest.University(t, db, "", "")

	list, err := db.Students().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	a := dbtest.Student(t, db, univ.ID, "R-1", "one@example.com")
	time.Sleep(2 * time.Millisecond)
	b := dbtest.Student(t, db, univ.ID, "R-2", "two@example.com")

	list, err = db.Students().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestUppercaseIDsFindRows(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	univ := dbtest.University(t, db, "", "")
	student := dbtest.Student(t, db, univ.ID, "R-1", "one@example.com")

	got, err := db.Students().GetByID(ctx, strings.ToUpper(student.ID))
	require.NoError(t, err)
	assert.Equal(t, student.ID, got.ID)

	_, err = db.Universities().Get(ctx, strings.ToUpper(univ.ID))
	require.NoError(t, err)

	in := sampleCertificate(student)
	in.StudentID = strings.ToUpper(in.StudentID)
	in.UniversityID = strings.ToUpper(in.UniversityID)
	cert, err := db.Certificates().Insert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, student.ID, cert.StudentID)

	list, err := db.Certificates().ListByStudent(ctx, strings.ToUpper(student.ID))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = db.VerificationLogs().Record(ctx, strings.ToUpper(cert.ID), strings.ToUpper(student.ID), true, "ok")
	require.NoError(t, err)
	history, err := db.VerificationLogs().History(ctx, strings.ToUpper(cert.ID))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, cert.ID, history[0].CertID)

	require.NoError(t, db.Students().UpdateEmail(ctx, strings.ToUpper(student.ID), "uno@example.com"))
}
