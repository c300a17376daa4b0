package models

import "time"

// Certificate is an issued certificate and its integrity payload. The hash
// fields are hex SHA-256 digests of the canonical plaintext; the embeddings and
// QRCipher are produced upstream and stored verbatim. Nothing in the integrity
// payload changes after issuance.
type Certificate struct {
	ID                 string    `json:"cert_id"`
	StudentID          string    `json:"student_id"`
	UniversityID       string    `json:"univ_id"`
	RollNo             string    `json:"roll_no"`
	StudentNameHash    string    `json:"student_name_hash"`
	DOBHash            string    `json:"dob_hash"`
	GPAHash            string    `json:"gpa_hash"`
	BatchYear          int       `json:"batch_year"`
	IssuedDate         time.Time `json:"issued_date"`
	FileURL            string    `json:"file_url"`
	ImageHash          string    `json:"image_hash"`
	SignatureEmbedding Embedding `json:"signature_embeddings,omitempty"`
	PhotoEmbedding     Embedding `json:"photo_embeddings,omitempty"`
	LogoEmbedding      Embedding `json:"logo_embeddings,omitempty"`
	QRCipher           string    `json:"qr_code_cipher"`
	CreatedAt          time.Time `json:"created_at"`
}

// VerificationLogEntry records one verification attempt against a certificate.
type VerificationLogEntry struct {
	ID         string    `json:"log_id"`
	CertID     string    `json:"cert_id"`
	VerifiedBy string    `json:"verified_by"`
	Status     bool      `json:"status"`
	Reason     string    `json:"reason"`
	VerifiedAt time.Time `json:"verified_at"`
}
