package main

import (
	"context"

	"group-dating-app/internal/config"
	"group-dating-app/internal/database"
	"group-dating-app/internal/handlers"
	"group-dating-app/internal/matching"
	"group-dating-app/internal/middleware"
	"group-dating-app/internal/redis"
	"group-dating-app/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}

	storage, err := services.NewStorageService(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage service")
	}

	oracle := matching.NewMembershipOracle(db)
	matchingSvc := matching.NewService(db, oracle, log, cfg.ApproveMaxRetries, cfg.ApproveRetryDelay)

	// Repair any like that was marked matched without its match row before
	// taking traffic.
	if repaired, err := matchingSvc.ReconcileMatches(context.Background()); err != nil {
		log.WithError(err).Fatal("Match reconciliation failed")
	} else if repaired > 0 {
		log.WithField("repaired", repaired).Warn("Reconciled matches at startup")
	}

	authHandler := handlers.NewAuthHandler(db, cfg)
	groupHandler := handlers.NewGroupHandler(db, cfg)
	matchingHandler := handlers.NewMatchingHandler(matchingSvc, redisClient, cfg)
	photoHandler := handlers.NewPhotoHandler(db, storage, cfg)

	router := setupRoutes(authHandler, groupHandler, matchingHandler, photoHandler)

	log.WithField("port", cfg.Port).Info("Server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func setupRoutes(authHandler *handlers.AuthHandler, groupHandler *handlers.GroupHandler,
	matchingHandler *handlers.MatchingHandler, photoHandler *handlers.PhotoHandler) *gin.Engine {

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		groups := v1.Group("/groups")
		groups.Use(middleware.AuthRequired())
		{
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("/:group_id", groupHandler.GetGroup)
			groups.POST("/:group_id/members", groupHandler.AddMember)
			groups.POST("/:group_id/photos", photoHandler.UploadGroupPhoto)
			groups.DELETE("/:group_id/photos/:photo_id", photoHandler.DeleteGroupPhoto)
		}

		match := v1.Group("/matching")
		match.Use(middleware.AuthRequired())
		{
			match.POST("/likes", matchingHandler.CreateLike)
			match.POST("/likes/:like_id/approve", matchingHandler.ApproveLike)
			match.POST("/likes/:like_id/reject", matchingHandler.RejectLike)
			match.GET("/groups/:group_id/likes/pending", matchingHandler.GetPendingLikes)
			match.GET("/groups/:group_id/matches", matchingHandler.GetMatches)
			match.DELETE("/matches/:match_id", matchingHandler.Unmatch)
		}
	}

	return router
}
