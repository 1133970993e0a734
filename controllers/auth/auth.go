package authControllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ChauShunWai/node-shop/email"
	"github.com/ChauShunWai/node-shop/models"
)

const (
	bcryptCost     = 10
	tokenLifetime  = 72 * time.Hour
	resetLifetime  = time.Hour
	minPasswordLen = 6
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// issueToken signs the stateless session token the API hands out on login.
func issueToken(userID, userEmail string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   userEmail,
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// sendAsync fires a mail without holding up the response. A lost mail is
// logged, never surfaced, and never undoes whatever was just committed.
func sendAsync(mailer email.Sender, to, subject, plain, html string) {
	go func() {
		if err := mailer.Send(to, subject, plain, html); err != nil {
			log.Printf("[auth] mail failed to=%s subject=%q err=%v", to, subject, err)
		}
	}()
}

type signupInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func validateSignup(input signupInput) []models.FieldError {
	var errs []models.FieldError
	if !emailPattern.MatchString(input.Email) {
		errs = append(errs, models.FieldError{Field: "email", Message: "Please enter a valid email"})
	}
	if len(input.Password) < minPasswordLen {
		errs = append(errs, models.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if input.ConfirmPassword != input.Password {
		errs = append(errs, models.FieldError{Field: "confirm_password", Message: "Passwords have to match"})
	}
	return errs
}

// POST /auth/signup
func SignupHandler(db *gorm.DB, mailer email.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input signupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if errs := validateSignup(input); len(errs) > 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
			return
		}

		var existing models.User
		err := db.Where("email = ?", input.Email).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []models.FieldError{
				{Field: "email", Message: "E-mail is already in use"},
			}})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database operation failed, please try again"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
			return
		}

		user := models.User{
			ID:           uuid.NewString(),
			Email:        input.Email,
			PasswordHash: string(hash),
			Cart:         models.Cart{},
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database operation failed, please try again"})
			return
		}

		sendAsync(mailer, user.Email,
			"Thank you for your registration!",
			"You have been successfully registered. You can log in with "+user.Email+" from now on.",
			"You have been successfully registered. You can log in with <strong>"+user.Email+"</strong> from now on.",
		)

		c.JSON(http.StatusCreated, gin.H{"message": "User created"})
	}
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/login — wrong email and wrong password are deliberately
// indistinguishable in the response.
func LoginHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		wrongCredentials := func() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []models.FieldError{
				{Field: "email", Message: "Wrong email or password"},
				{Field: "password", Message: "Wrong email or password"},
			}})
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				wrongCredentials()
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database operation failed, please try again"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			wrongCredentials()
			return
		}

		token, err := issueToken(user.ID, user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user_id": user.ID})
	}
}

type resetInput struct {
	Email string `json:"email" binding:"required"`
}

// POST /auth/reset — stores a one-hour reset token and mails the link.
func RequestResetHandler(db *gorm.DB, mailer email.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input resetInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []models.FieldError{
					{Field: "email", Message: "Email does not exist"},
				}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database operation failed, please try again"})
			return
		}

		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error, please try again"})
			return
		}
		token := hex.EncodeToString(buf)
		expiry := time.Now().Add(resetLifetime)

		if err := db.Model(&user).Updates(map[string]interface{}{
			"reset_token":        token,
			"reset_token_expiry": expiry,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database operation failed, please try again"})
			return
		}

		link := os.Getenv("BASE_URL") + "/reset/" + token
		sendAsync(mailer, user.Email,
			"Password Reset",
			"You requested a password reset.\nGo to the link below to reset the password (valid within 1 hour):\n"+link,
			`<p>You requested a password reset</p><p>Click the link below to reset the password:</p><a href="`+link+`">`+link+`</a><br><strong>(valid within 1 hour)</strong>`,
		)

		c.JSON(http.StatusOK, gin.H{"message": "Reset link sent"})
	}
}

type newPasswordInput struct {
	ResetToken string `json:"reset_token" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// POST /auth/new-password — consumes a live reset token.
func NewPasswordHandler(db *gorm.DB, mailer email.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input newPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if len(input.Password) < minPasswordLen {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []models.FieldError{
				{Field: "password", Message: "Password must be at least 6 characters"},
			}})
			return
		}

		var user models.User
		if err := db.Where("reset_token = ? AND reset_token_expiry > ?", input.ResetToken, time.Now()).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []models.FieldError{
					{Field: "reset_token", Message: "Reset link is invalid or has expired. Please try again."},
				}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database operation failed, please try again"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
			return
		}

		if err := db.Model(&user).Updates(map[string]interface{}{
			"password_hash":      string(hash),
			"reset_token":        "",
			"reset_token_expiry": nil,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database operation failed, please try again"})
			return
		}

		sendAsync(mailer, user.Email,
			"Password is reset successfully",
			"Your password is reset successfully. If you did not reset your password, please reset it again for security reasons.",
			"",
		)

		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}

// GET /me
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var user models.User
		if err := db.Preload("Cart.Items").First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
