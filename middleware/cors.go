package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/JorjanDorjan/ML-for-agile-methodology/config"
)

var (
	allowMethods = []string{"GET", "POST", "OPTIONS"}
	allowHeaders = []string{"Origin", "Content-Type", "Authorization"}
)

func SetupCORS(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cfg.Origins()

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     allowMethods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		})
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     allowMethods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
