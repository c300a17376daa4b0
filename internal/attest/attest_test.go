package attest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evidenceledger/credstore/internal/models"
	pkgerrors "github.com/pkg/errors"
)

var (
	keysOnce          sync.Once
	testPriv, testPub string
	otherPub          string
)

func testKeys(t *testing.T) (string, string, string) {
	t.Helper()
	keysOnce.Do(func() {
		var err error
		if testPriv, testPub, err = GenerateKeyPair(); err != nil {
			t.Fatalf("GenerateKeyPair() error = %v", err)
		}
		if _, otherPub, err = GenerateKeyPair(); err != nil {
			t.Fatalf("GenerateKeyPair() error = %v", err)
		}
	})
	return testPriv, testPub, otherPub
}

func testCert() models.Certificate {
	return models.Certificate{
		ID:              "6f1c2a53-8d0e-4b7a-9a53-3f1a3c0f4a11",
		StudentID:       "0b5f4f5e-8a2b-4d8e-8f5e-1f0c9a6b7c22",
		UniversityID:    "c3a9e0f1-2b3c-4d5e-9f70-8a9b0c1d2e33",
		RollNo:          "CS-2021-042",
		StudentNameHash: "aa",
		DOBHash:         "bb",
		GPAHash:         "cc",
		ImageHash:       "dd",
	}
}

func TestSignAndVerify(t *testing.T) {
	priv, pub, _ := testKeys(t)
	cert := testCert()

	token, err := Sign(priv, cert, time.Now())
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	claims, err := Verify(pub, token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !claims.Matches(cert) {
		t.Errorf("claims %+v do not match certificate", claims)
	}

	tampered := cert
	tampered.GPAHash = "ee"
	if claims.Matches(tampered) {
		t.Error("claims matched a certificate with a different GPA hash")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	priv, _, other := testKeys(t)

	token, err := Sign(priv, testCert(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	_, err = Verify(other, token)
	if !errors.Is(err, ErrInvalidAttestation) {
		t.Errorf("Verify() with another university key error = %v, want ErrInvalidAttestation", err)
	}
	var st interface{ StackTrace() pkgerrors.StackTrace }
	if !errors.As(err, &st) {
		t.Error("Verify() error carries no stack trace")
	}
}

func TestVerify_Garbage(t *testing.T) {
	_, pub, _ := testKeys(t)

	for _, token := range []string{"", "not.a.token", "eyJhbGciOiJub25lIn0.eyJzdWIiOiJ4In0."} {
		if _, err := Verify(pub, token); !errors.Is(err, ErrInvalidAttestation) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidAttestation", token, err)
		}
	}
	if _, err := Verify("not pem", "x"); err == nil {
		t.Error("Verify() with a malformed key should fail")
	}
}

func TestPublicJWK(t *testing.T) {
	_, pub, _ := testKeys(t)

	jk, err := PublicJWK(pub, "univ-key-1")
	if err != nil {
		t.Fatalf("PublicJWK() error = %v", err)
	}
	kid, ok := jk.KeyID()
	if !ok || kid != "univ-key-1" {
		t.Errorf("KeyID() = %q, %v", kid, ok)
	}
	use, ok := jk.KeyUsage()
	if !ok || use != "sig" {
		t.Errorf("KeyUsage() = %q, %v", use, ok)
	}
}
