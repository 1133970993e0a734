package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authControllers "github.com/ChauShunWai/node-shop/controllers/auth"
	"github.com/ChauShunWai/node-shop/email"
	"github.com/ChauShunWai/node-shop/middleware"
)

// SetupAuthRoutes registers all "/auth/*" endpoints plus the profile view.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, mailer email.Sender) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", authControllers.SignupHandler(db, mailer))
		authGroup.POST("/login", authControllers.LoginHandler(db))
		authGroup.POST("/reset", authControllers.RequestResetHandler(db, mailer))
		authGroup.POST("/new-password", authControllers.NewPasswordHandler(db, mailer))
	}

	r.GET("/me", middleware.ValidateToken, authControllers.MeHandler(db))
}
