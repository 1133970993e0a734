package authControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/models"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) Send(to, subject, plain, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, subject)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Cart{}, &models.CartItem{},
	))
	return db
}

func newRouter(db *gorm.DB, mailer *fakeMailer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/signup", SignupHandler(db, mailer))
	r.POST("/auth/login", LoginHandler(db))
	r.POST("/auth/reset", RequestResetHandler(db, mailer))
	r.POST("/auth/new-password", NewPasswordHandler(db, mailer))
	return r
}

func post(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, r *gin.Engine, email, password string) {
	t.Helper()
	w := post(r, "/auth/signup", gin.H{
		"email": email, "password": password, "confirm_password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestSignupValidation(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(db, &fakeMailer{})

	w := post(r, "/auth/signup", gin.H{
		"email": "not-an-email", "password": "abc", "confirm_password": "xyz",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Errors []models.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	fields := make(map[string]bool)
	for _, fieldErr := range body.Errors {
		fields[fieldErr.Field] = true
	}
	require.True(t, fields["email"])
	require.True(t, fields["password"])
	require.True(t, fields["confirm_password"])
}

func TestSignupCreatesUserWithCart(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	r := newRouter(db, &fakeMailer{})

	signup(t, r, "buyer@example.com", "secret1")

	var user models.User
	require.NoError(t, db.Preload("Cart").Where("email = ?", "buyer@example.com").First(&user).Error)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "secret1", user.PasswordHash)
	require.NotZero(t, user.Cart.CartID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(db, &fakeMailer{})

	signup(t, r, "buyer@example.com", "secret1")
	w := post(r, "/auth/signup", gin.H{
		"email": "buyer@example.com", "password": "secret1", "confirm_password": "secret1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLoginRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	r := newRouter(db, &fakeMailer{})
	signup(t, r, "buyer@example.com", "secret1")

	w := post(r, "/auth/login", gin.H{"email": "buyer@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])

	// Wrong password and unknown email answer identically.
	bad := post(r, "/auth/login", gin.H{"email": "buyer@example.com", "password": "wrong"})
	unknown := post(r, "/auth/login", gin.H{"email": "nobody@example.com", "password": "secret1"})
	require.Equal(t, http.StatusUnprocessableEntity, bad.Code)
	require.Equal(t, http.StatusUnprocessableEntity, unknown.Code)
	require.JSONEq(t, bad.Body.String(), unknown.Body.String())
}

func TestPasswordResetFlow(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	mailer := &fakeMailer{}
	r := newRouter(db, mailer)
	signup(t, r, "buyer@example.com", "secret1")

	w := post(r, "/auth/reset", gin.H{"email": "buyer@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "buyer@example.com").First(&user).Error)
	require.Len(t, user.ResetToken, 64)
	require.NotNil(t, user.ResetTokenExpiry)

	w = post(r, "/auth/new-password", gin.H{"reset_token": user.ResetToken, "password": "newsecret"})
	require.Equal(t, http.StatusOK, w.Code)

	// Old password is out, new one works, token is consumed.
	require.Equal(t, http.StatusUnprocessableEntity,
		post(r, "/auth/login", gin.H{"email": "buyer@example.com", "password": "secret1"}).Code)
	require.Equal(t, http.StatusOK,
		post(r, "/auth/login", gin.H{"email": "buyer@example.com", "password": "newsecret"}).Code)
	require.Equal(t, http.StatusUnprocessableEntity,
		post(r, "/auth/new-password", gin.H{"reset_token": user.ResetToken, "password": "another1"}).Code)
}

func TestNewPasswordRejectsExpiredToken(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(db, &fakeMailer{})
	signup(t, r, "buyer@example.com", "secret1")

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "buyer@example.com").
		Updates(map[string]interface{}{
			"reset_token":        "deadbeef",
			"reset_token_expiry": expired,
		}).Error)

	w := post(r, "/auth/new-password", gin.H{"reset_token": "deadbeef", "password": "newsecret"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestResetUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(db, &fakeMailer{})

	w := post(r, "/auth/reset", gin.H{"email": "nobody@example.com"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
