package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"testing"
)

// The env var carries the service account key itself, not a path to it.
// A generated key is enough: building the verifier parses the credentials
// but never calls out.
func TestFirebaseVerifierAcceptsInlineCredentials(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	raw, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   "demo-project",
		"private_key":  string(pemKey),
		"client_email": "svc@demo-project.iam.gserviceaccount.com",
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON", string(raw))

	if _, err := NewFirebaseVerifier(context.Background(), "demo-project"); err != nil {
		t.Fatalf("inline credentials rejected: %v", err)
	}
}

func TestFirebaseVerifierRejectsMalformedCredentials(t *testing.T) {
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON", "not-json")
	if _, err := NewFirebaseVerifier(context.Background(), "demo-project"); err == nil {
		t.Fatal("expected error for malformed credentials")
	}
}
