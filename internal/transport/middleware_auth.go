package transport

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// TokenVerifier checks a Firebase ID token and returns the caller's uid.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// FirebaseVerifier backs TokenVerifier with the Firebase Admin SDK.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the authenticated uid stored by WithAuth, empty when the
// request did not pass through it.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// WithAuth rejects requests without a valid Bearer token and stores the
// verified uid on the request context.
func WithAuth(next http.Handler, verifier TokenVerifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		idToken, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || idToken == "" {
			http.Error(w, "Unauthorized: Login required", http.StatusUnauthorized)
			return
		}

		uid, err := verifier.Verify(r.Context(), idToken)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
