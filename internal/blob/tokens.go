package blob

import (
	"context"
	"errors"
	"fmt"

	"olleblog/api/internal/tokenstore"
)

// ErrNoToken reports that no upload credential is available for the user.
var ErrNoToken = errors.New("blob: no upload token configured")

type storedToken struct {
	store  tokenstore.Store
	userID string
}

// StoredToken reads the admin's saved credential from the token store and
// clears it when the backend rejects it.
func StoredToken(store tokenstore.Store, userID string) TokenSource {
	return &storedToken{store: store, userID: userID}
}

func (t *storedToken) Token(ctx context.Context) (string, error) {
	token, err := t.store.Get(ctx, t.userID)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("read stored token: %w", err)
	}
	return token, nil
}

func (t *storedToken) Invalidate(ctx context.Context) error {
	return t.store.Clear(ctx, t.userID)
}
