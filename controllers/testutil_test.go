package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"factura/config"
	dbpkg "factura/db"
	"factura/mail"
	"factura/models"
	"factura/router"
	"factura/token"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/require"
)

// fakeSender records every delivery instead of talking to SMTP.
type fakeSender struct {
	mu     sync.Mutex
	codes  []sentMail
	resets []sentMail
}

type sentMail struct {
	To      string
	Payload string // the code or the reset URL
}

func (f *fakeSender) SendVerificationCode(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, sentMail{To: to, Payload: code})
	return nil
}

func (f *fakeSender) SendPasswordResetLink(_ context.Context, to, resetURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, sentMail{To: to, Payload: resetURL})
	return nil
}

func (f *fakeSender) lastCode(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.codes, "no verification code was sent")
	return f.codes[len(f.codes)-1]
}

func (f *fakeSender) lastResetURL(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.resets, "no reset link was sent")
	return f.resets[len(f.resets)-1]
}

func (f *fakeSender) codeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.codes)
}

func (f *fakeSender) resetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resets)
}

// testServer runs the real router against a throwaway sqlite database,
// wired exactly like main.go but with the fake mailer.
type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	conf   config.Configuration
	signer *token.Signer
	mailer *fakeSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	dbpkg.AutoMigrate(database)

	var conf config.Configuration
	conf.Security.JwtSecret = "test-secret"
	conf.ApplyDefaults()

	signer := token.NewSigner(conf.Security.JwtSecret)
	mailer := &fakeSender{}

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(database))
	r.Use(config.SetToContext(conf))
	r.Use(token.SetSignerToContext(signer))
	r.Use(mail.SetSenderToContext(mailer))
	router.Initialize(r, conf)

	return &testServer{engine: r, db: database, conf: conf, signer: signer, mailer: mailer}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func (ts *testServer) post(t *testing.T, path string, body any, bearer string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPost, path, body, bearer)
}

func (ts *testServer) get(t *testing.T, path, bearer string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodGet, path, nil, bearer)
}

func (ts *testServer) put(t *testing.T, path string, body any, bearer string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodPut, path, body, bearer)
}

func (ts *testServer) delete(t *testing.T, path, bearer string) *httptest.ResponseRecorder {
	return ts.do(t, http.MethodDelete, path, nil, bearer)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// register signs up a fresh account and returns the verification-session
// token from the response.
func (ts *testServer) register(t *testing.T, name, email, password string) string {
	t.Helper()
	w := ts.post(t, "/api/register", gin.H{"name": name, "email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, "register: %s", w.Body.String())
	body := decode(t, w)
	tok, _ := body["verificationSessionToken"].(string)
	require.NotEmpty(t, tok)
	return tok
}

// verifyLatestCode submits the most recently mailed code.
func (ts *testServer) verifyLatestCode(t *testing.T, sessionToken string) {
	t.Helper()
	code := ts.mailer.lastCode(t).Payload
	w := ts.post(t, "/api/verify-code", gin.H{"code": code, "sessionToken": sessionToken}, "")
	require.Equal(t, http.StatusOK, w.Code, "verify-code: %s", w.Body.String())
}

// login returns the session token for verified credentials.
func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := ts.post(t, "/api/login", gin.H{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, "login: %s", w.Body.String())
	body := decode(t, w)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

// signupVerified runs register, verify and login, returning a usable
// session token.
func (ts *testServer) signupVerified(t *testing.T, name, email, password string) string {
	t.Helper()
	verifyToken := ts.register(t, name, email, password)
	ts.verifyLatestCode(t, verifyToken)
	return ts.login(t, email, password)
}

func (ts *testServer) userByEmail(t *testing.T, email string) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, ts.db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error)
	return user
}

// backdateCodes moves the user's code issuance into the past so the
// resend cooldown no longer applies.
func (ts *testServer) backdateCodes(t *testing.T, userID string, age time.Duration) {
	t.Helper()
	past := time.Now().Add(-age)
	err := ts.db.Model(&models.VerificationCode{}).
		Where("user_id = ?", userID).
		Update("created_at", past).Error
	require.NoError(t, err)
}

// expireCodes forces every code for the user past its expiry.
func (ts *testServer) expireCodes(t *testing.T, userID string) {
	t.Helper()
	past := time.Now().Add(-time.Minute)
	err := ts.db.Model(&models.VerificationCode{}).
		Where("user_id = ?", userID).
		Update("expires_at", past).Error
	require.NoError(t, err)
}

func (ts *testServer) createClient(t *testing.T, bearer, name string) int64 {
	t.Helper()
	w := ts.post(t, "/api/clients", gin.H{"name": name}, bearer)
	require.Equal(t, http.StatusOK, w.Code, "create client: %s", w.Body.String())
	body := decode(t, w)
	id, ok := body["id"].(float64)
	require.True(t, ok, "client id missing: %v", body)
	return int64(id)
}
