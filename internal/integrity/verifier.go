package integrity

import (
	"context"
	"log/slog"

	"github.com/evidenceledger/credstore/internal/attest"
	"github.com/evidenceledger/credstore/internal/database"
	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/models"
)

// Outcome is the result of a verification attempt together with the log
// entry written for it.
type Outcome struct {
	Report Report
	Entry  models.VerificationLogEntry
}

// Verifier checks presented certificates and records every attempt in the
// verification log.
type Verifier struct {
	db      *database.Database
	matcher EmbeddingMatcher
}

// NewVerifier creates a Verifier. A nil matcher means ExactMatcher.
func NewVerifier(db *database.Database, matcher EmbeddingMatcher) *Verifier {
	if matcher == nil {
		matcher = ExactMatcher{}
	}
	return &Verifier{db: db, matcher: matcher}
}

// Verify compares claim with the stored certificate and appends the outcome
// to its verification log. The read and the log entry share one transaction.
// A mismatch is a normal outcome, not an error. Errors are returned only when
// the certificate does not exist, the matcher fails or the store is
// unavailable; nothing is logged then.
func (v *Verifier) Verify(ctx context.Context, certID, verifiedBy string, claim Claim) (Outcome, error) {
	var out Outcome
	err := v.db.WithTx(ctx, func(tx *database.Tx) error {
		cert, err := tx.Certificates().Fetch(ctx, certID)
		if err != nil {
			return err
		}

		report, err := Compare(ctx, cert, claim, v.matcher)
		if err != nil {
			return errl.Errorf("failed to compare certificate %s: %w", certID, err)
		}

		if claim.Attestation != "" {
			ok, err := checkAttestation(ctx, tx.Universities(), cert, claim.Attestation)
			if err != nil {
				return err
			}
			report.add("attestation", ok)
			report.finish()
		}

		entry, err := tx.VerificationLogs().Record(ctx, certID, verifiedBy, report.Genuine, report.Reason)
		if err != nil {
			return err
		}

		out = Outcome{Report: report, Entry: entry}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	slog.Info("Certificate verified", "cert_id", certID, "genuine", out.Report.Genuine, "reason", out.Report.Reason)
	return out, nil
}

func checkAttestation(ctx context.Context, universities *database.Universities, cert models.Certificate, token string) (bool, error) {
	univ, err := universities.Get(ctx, cert.UniversityID)
	if err != nil {
		return false, err
	}
	if univ.PublicKey == "" {
		return false, nil
	}

	claims, err := attest.Verify(univ.PublicKey, token)
	if err != nil {
		slog.Debug("Attestation rejected", "cert_id", cert.ID, "error", err)
		return false, nil
	}
	return claims.Matches(cert), nil
}
