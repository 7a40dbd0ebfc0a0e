package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testIssuer = "test-idp"

var testSecret = []byte("test-secret")

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func validClaims(userID uuid.UUID) Claims {
	return Claims{
		Email:    "founder@acme.test",
		Name:     "Ada",
		Investor: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func runAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	var sawIdentity bool
	handler := Auth(testSecret, testIssuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawIdentity = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/startups", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, sawIdentity
}

func TestAuthInjectsIdentity(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, validClaims(userID))

	var identity struct {
		userID   uuid.UUID
		investor bool
	}
	handler := Auth(testSecret, testIssuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentity(r.Context())
		if !ok {
			t.Fatal("identity missing from context")
		}
		identity.userID = id.UserID
		identity.investor = id.Investor
	}))

	req := httptest.NewRequest(http.MethodGet, "/startups", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if identity.userID != userID {
		t.Errorf("user id = %s, want %s", identity.userID, userID)
	}
	if !identity.investor {
		t.Error("investor flag not carried over")
	}
}

func TestAuthRejections(t *testing.T) {
	expired := validClaims(uuid.New())
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := validClaims(uuid.New())
	wrongIssuer.Issuer = "someone-else"

	badSubject := validClaims(uuid.New())
	badSubject.Subject = "not-a-uuid"

	wrongKey := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(uuid.New()))
	wrongKeyToken, _ := wrongKey.SignedString([]byte("other-secret"))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"expired", "Bearer " + signToken(t, expired)},
		{"wrong issuer", "Bearer " + signToken(t, wrongIssuer)},
		{"bad subject", "Bearer " + signToken(t, badSubject)},
		{"wrong key", "Bearer " + wrongKeyToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, sawIdentity := runAuth(t, tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if sawIdentity {
				t.Error("handler ran despite rejection")
			}
		})
	}
}
