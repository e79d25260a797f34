package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, ja *jwtauth.JWTAuth, claims map[string]interface{}) string {
	t.Helper()
	_, tokenString, err := ja.Encode(claims)
	require.NoError(t, err)
	return tokenString
}

func authedRequest(t *testing.T, ja *jwtauth.JWTAuth, claims map[string]interface{}) (*httptest.ResponseRecorder, *AuthUser) {
	t.Helper()

	var captured *AuthUser
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = AuthUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	if claims != nil {
		req.Header.Set("Authorization", "BEARER "+issueToken(t, ja, claims))
	}
	rec := httptest.NewRecorder()
	Verifier(ja)(AuthUserMiddleware(handler)).ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthUserMiddleware(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	userID := uuid.New()

	t.Run("SubjectClaim", func(t *testing.T) {
		rec, authUser := authedRequest(t, ja, map[string]interface{}{"sub": userID.String()})
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, authUser)
		assert.Equal(t, userID.String(), authUser.UserId)
		assert.Equal(t, userID, authUser.UserUuid)
	})

	t.Run("ExtraClaims", func(t *testing.T) {
		rec, authUser := authedRequest(t, ja, map[string]interface{}{
			"sub": userID.String(),
			"extra_claims": map[string]interface{}{
				"user_id":      userID.String(),
				"display_name": "Test User",
				"email":        "user@example.com",
			},
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, authUser)
		assert.Equal(t, "Test User", authUser.DisplayName)
		assert.Equal(t, "user@example.com", authUser.Email)
	})

	t.Run("MissingToken", func(t *testing.T) {
		rec, _ := authedRequest(t, ja, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MissingUserID", func(t *testing.T) {
		rec, _ := authedRequest(t, ja, map[string]interface{}{"email": "user@example.com"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("NonUUIDUserID", func(t *testing.T) {
		rec, _ := authedRequest(t, ja, map[string]interface{}{"sub": "not-a-uuid"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestTokenGeneratorRoundTrip(t *testing.T) {
	secret := "test-secret"
	ja := jwtauth.New("HS256", []byte(secret), nil)
	userID := uuid.New()

	tokenGen := NewTokenGenerator(secret, "simple-authz", "public")
	tokenStr, expiresAt, err := tokenGen.GenerateToken(userID.String(), 30*time.Minute, map[string]interface{}{
		"display_name": "Dev User",
	})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	parsed, err := tokenGen.ParseToken(tokenStr)
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	// A minted token passes the verifier and middleware end to end
	var captured *AuthUser
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = AuthUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "BEARER "+tokenStr)
	rec := httptest.NewRecorder()
	Verifier(ja)(AuthUserMiddleware(handler)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, userID, captured.UserUuid)
	assert.Equal(t, "Dev User", captured.DisplayName)
}

func TestTokenFromCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, TokenFromCookie(req))

	req.AddCookie(&http.Cookie{Name: ACCESS_TOKEN_NAME, Value: "token-value"})
	assert.Equal(t, "token-value", TokenFromCookie(req))
}
