package identity

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier validates ID tokens against Firebase Auth.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier builds the Firebase app for projectID. Credentials
// come from FIREBASE_SERVICE_ACCOUNT_JSON (the service account key as
// inline JSON) or the usual GOOGLE_APPLICATION_CREDENTIALS file; with
// FIREBASE_AUTH_EMULATOR_HOST set, none are needed.
func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cred := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); cred != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cred)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (string, string, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", "", fmt.Errorf("verify id token: %w", err)
	}
	email, _ := tok.Claims["email"].(string)
	return tok.UID, email, nil
}
