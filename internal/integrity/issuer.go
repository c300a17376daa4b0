package integrity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/evidenceledger/credstore/internal/attest"
	"github.com/evidenceledger/credstore/internal/database"
	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
	"github.com/evidenceledger/credstore/internal/validate"
)

// IssueRequest is the plaintext input of a certificate issuance. Embeddings
// and QRCipher come from the extraction and encryption collaborators and are
// stored as given.
type IssueRequest struct {
	StudentID    string
	UniversityID string
	RollNo       string
	Name         string
	// DOB is DD-MM-YYYY.
	DOB           string
	GPA           string
	BatchYear     int
	IssueDate     time.Time
	FileURL       string
	RenderedImage []byte

	SignatureEmbedding models.Embedding
	PhotoEmbedding     models.Embedding
	LogoEmbedding      models.Embedding
	QRCipher           string
}

// Issued is a stored certificate plus, when the university keeps its private
// key in the store, a signed attestation over its integrity payload.
type Issued struct {
	Certificate models.Certificate
	Attestation string
}

// Issuer writes certificate integrity records.
type Issuer struct {
	db *database.Database
}

// NewIssuer creates an Issuer over db.
func NewIssuer(db *database.Database) *Issuer {
	return &Issuer{db: db}
}

// Issue hashes the plaintext fields, checks that the student belongs to the
// issuing university and persists a new record. Each call creates a new
// certificate; there is no way to change one afterwards.
func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (Issued, error) {
	if err := checkRequest(req); err != nil {
		return Issued{}, err
	}

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	cert := models.Certificate{
		StudentID:          req.StudentID,
		UniversityID:       req.UniversityID,
		RollNo:             req.RollNo,
		StudentNameHash:    HashField(req.Name),
		DOBHash:            HashField(req.DOB),
		GPAHash:            HashField(req.GPA),
		BatchYear:          req.BatchYear,
		IssuedDate:         issueDate,
		FileURL:            req.FileURL,
		ImageHash:          ImageChecksum(req.RenderedImage),
		SignatureEmbedding: req.SignatureEmbedding,
		PhotoEmbedding:     req.PhotoEmbedding,
		LogoEmbedding:      req.LogoEmbedding,
		QRCipher:           req.QRCipher,
	}

	var out Issued
	err := i.db.WithTx(ctx, func(tx *database.Tx) error {
		student, err := tx.Students().GetByID(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(student.UniversityID, req.UniversityID) {
			return errl.Validation("student %s is not enrolled at university %s", req.StudentID, req.UniversityID)
		}
		if cert.RollNo == "" {
			cert.RollNo = student.RollNo
		}

		stored, err := tx.Certificates().Insert(ctx, cert)
		if err != nil {
			return err
		}
		out.Certificate = stored

		privateKey, err := tx.Universities().PrivateKey(ctx, req.UniversityID)
		if err != nil {
			return err
		}
		if privateKey == "" {
			return nil
		}
		out.Attestation, err = attest.Sign(privateKey, stored, time.Now())
		return err
	})
	if err != nil {
		slog.Warn("Certificate issuance rejected", "student_id", req.StudentID, "univ_id", req.UniversityID, "error", err)
		return Issued{}, err
	}

	return out, nil
}

func checkRequest(req IssueRequest) error {
	if _, err := validate.DOB(req.DOB); err != nil {
		return err
	}
	if err := validate.First(
		validate.Required("student name", req.Name),
		validate.Required("gpa", req.GPA),
		validate.Year("batch_year", req.BatchYear),
	); err != nil {
		return err
	}
	if len(req.RenderedImage) == 0 {
		return errl.Validation("rendered image is required")
	}
	for field, e := range map[string]models.Embedding{
		"signature_embeddings": req.SignatureEmbedding,
		"photo_embeddings":     req.PhotoEmbedding,
		"logo_embeddings":      req.LogoEmbedding,
	} {
		if err := e.Validate(); err != nil {
			return errl.Validation("%s: %v", field, err)
		}
	}
	return nil
}
