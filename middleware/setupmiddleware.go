package middleware

import (
	"Trivium/utils"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetUpMiddleware installs request logging, panic recovery, CORS and the
// AppError renderer on r. An empty or "*" origin list allows any origin.
func SetUpMiddleware(r *gin.Engine, allowedOrigins []string) {
	r.Use(utils.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(allowedOrigins)))
	r.Use(utils.ErrorHandler())
}

func corsConfig(allowedOrigins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = allowedOrigins
	config.AllowCredentials = true
	return config
}
