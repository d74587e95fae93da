package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"factura/models"
	"factura/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterVerifyLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	verifyToken := ts.register(t, "Jane Doe", "jane@example.com", "password123")

	// account exists but is not verified yet
	user := ts.userByEmail(t, "jane@example.com")
	assert.False(t, user.IsVerified())
	assert.NotEqual(t, "password123", user.Password)

	// a code was mailed to the right address
	sent := ts.mailer.lastCode(t)
	assert.Equal(t, "jane@example.com", sent.To)
	assert.Len(t, sent.Payload, 6)

	ts.verifyLatestCode(t, verifyToken)

	user = ts.userByEmail(t, "jane@example.com")
	assert.True(t, user.IsVerified())

	// all codes are gone after success
	var count int64
	require.NoError(t, ts.db.Model(&models.VerificationCode{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	sessionToken := ts.login(t, "jane@example.com", "password123")

	w := ts.get(t, "/api/me", sessionToken)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	me, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", me["email"])
	_, hasPassword := me["password"]
	assert.False(t, hasPassword)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "Jane", "  Jane@Example.COM ", "password123")

	user := ts.userByEmail(t, "jane@example.com")
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "Jane", "jane@example.com", "password123")

	w := ts.post(t, "/api/register", gin.H{"name": "Other", "email": "JANE@example.com", "password": "password456"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user already exists", decode(t, w)["error"])
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"email": "a@b.com", "password": "password123"}},
		{"missing email", gin.H{"name": "Jane", "password": "password123"}},
		{"missing password", gin.H{"name": "Jane", "email": "a@b.com"}},
		{"short password", gin.H{"name": "Jane", "email": "a@b.com", "password": "short"}},
		{"bad email", gin.H{"name": "Jane", "email": "not-an-email", "password": "password123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.post(t, "/api/register", tc.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", w.Body.String())
		})
	}
}

func TestVerifyCodeWrongCodeThenRight(t *testing.T) {
	ts := newTestServer(t)

	verifyToken := ts.register(t, "Jane", "jane@example.com", "password123")

	w := ts.post(t, "/api/verify-code", gin.H{"code": "000000", "sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid or expired verification code", decode(t, w)["error"])

	// a failed attempt does not burn the real code
	ts.verifyLatestCode(t, verifyToken)
}

func TestVerifyCodeExpiredThenResend(t *testing.T) {
	ts := newTestServer(t)

	verifyToken := ts.register(t, "Jane", "jane@example.com", "password123")
	user := ts.userByEmail(t, "jane@example.com")
	firstCode := ts.mailer.lastCode(t).Payload

	ts.expireCodes(t, user.ID)

	w := ts.post(t, "/api/verify-code", gin.H{"code": firstCode, "sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid or expired verification code", decode(t, w)["error"])

	// resend is still inside the cooldown window
	w = ts.post(t, "/api/resend-code", gin.H{"sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	ts.backdateCodes(t, user.ID, 2*time.Minute)

	w = ts.post(t, "/api/resend-code", gin.H{"sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusOK, w.Code, "resend: %s", w.Body.String())
	body := decode(t, w)
	assert.NotNil(t, body["verificationExpires"])

	// the fresh code works
	ts.verifyLatestCode(t, verifyToken)
}

func TestResendInvalidatesOldCode(t *testing.T) {
	ts := newTestServer(t)

	verifyToken := ts.register(t, "Jane", "jane@example.com", "password123")
	user := ts.userByEmail(t, "jane@example.com")
	oldCode := ts.mailer.lastCode(t).Payload

	ts.backdateCodes(t, user.ID, 2*time.Minute)
	w := ts.post(t, "/api/resend-code", gin.H{"sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusOK, w.Code)

	newCode := ts.mailer.lastCode(t).Payload
	if oldCode != newCode {
		w = ts.post(t, "/api/verify-code", gin.H{"code": oldCode, "sessionToken": verifyToken}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w = ts.post(t, "/api/verify-code", gin.H{"code": newCode, "sessionToken": verifyToken}, "")
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
}

func TestResendCooldown(t *testing.T) {
	ts := newTestServer(t)

	verifyToken := ts.register(t, "Jane", "jane@example.com", "password123")

	w := ts.post(t, "/api/resend-code", gin.H{"sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "please wait before requesting a new code", decode(t, w)["error"])
	assert.Equal(t, 1, ts.mailer.codeCount())
}

func TestVerifyCodeRejectsBadSessionToken(t *testing.T) {
	ts := newTestServer(t)

	ts.register(t, "Jane", "jane@example.com", "password123")
	code := ts.mailer.lastCode(t).Payload

	w := ts.post(t, "/api/verify-code", gin.H{"code": code, "sessionToken": "garbage"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// a login-session token is not a verification session
	user := ts.userByEmail(t, "jane@example.com")
	sessionToken, err := ts.signer.Issue(token.Claims{
		UserID:  user.ID,
		Purpose: token.PurposeSession,
	}, 30*time.Minute)
	require.NoError(t, err)

	w = ts.post(t, "/api/verify-code", gin.H{"code": code, "sessionToken": sessionToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyCodeAlreadyVerified(t *testing.T) {
	ts := newTestServer(t)

	verifyToken := ts.register(t, "Jane", "jane@example.com", "password123")
	ts.verifyLatestCode(t, verifyToken)

	w := ts.post(t, "/api/verify-code", gin.H{"code": "123456", "sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already verified", decode(t, w)["error"])
}

func TestVerifySessionEndpoint(t *testing.T) {
	ts := newTestServer(t)

	verifyToken := ts.register(t, "Jane", "jane@example.com", "password123")

	w := ts.post(t, "/api/verify-session", gin.H{"sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "jane@example.com", body["email"])
	assert.NotNil(t, body["verificationExpires"])

	ts.verifyLatestCode(t, verifyToken)

	w = ts.post(t, "/api/verify-session", gin.H{"sessionToken": verifyToken}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already verified", decode(t, w)["error"])
}
