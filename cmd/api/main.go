package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppsu-social/ppsu-social/internal/config"
	"github.com/ppsu-social/ppsu-social/internal/handlers"
	"github.com/ppsu-social/ppsu-social/internal/middleware"
	"github.com/ppsu-social/ppsu-social/internal/repository"
	"github.com/ppsu-social/ppsu-social/internal/services"
	"github.com/ppsu-social/ppsu-social/pkg/cache"
	"github.com/ppsu-social/ppsu-social/pkg/logger"
	"github.com/ppsu-social/ppsu-social/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting PPSU Social API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	producer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.EngagementEvents)
	defer producer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	postRepo := repository.NewPostRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)
	commentRepo := repository.NewCommentRepository(db.DB)
	hashtagRepo := repository.NewHashtagRepository(db.DB)
	storyRepo := repository.NewStoryRepository(db.DB)
	eventRepo := repository.NewEventRepository(db.DB)
	announcementRepo := repository.NewAnnouncementRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	userService := services.NewUserService(userRepo, followRepo, &cfg.Auth, producer, logger)
	feedService := services.NewFeedService(postRepo, followRepo, likeRepo, hashtagRepo, redisClient, producer, &cfg.Feed, logger)
	likeService := services.NewLikeService(postRepo, commentRepo, likeRepo, producer, logger)
	commentService := services.NewCommentService(postRepo, commentRepo, producer, logger)
	storyService := services.NewStoryService(storyRepo, followRepo, producer, &cfg.Feed, logger)
	eventService := services.NewEventService(eventRepo, producer, logger)
	announcementService := services.NewAnnouncementService(announcementRepo, userRepo, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)
	searchService := services.NewSearchService(userRepo, postRepo, eventRepo, hashtagRepo, redisClient, logger)

	authHandler := handlers.NewAuthHandler(userService, &cfg.JWT)
	userHandler := handlers.NewUserHandler(userService, feedService)
	feedHandler := handlers.NewFeedHandler(feedService, likeService, commentService)
	storyHandler := handlers.NewStoryHandler(storyService)
	eventHandler := handlers.NewEventHandler(eventService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	searchHandler := handlers.NewSearchHandler(searchService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	jwtCfg := &middleware.JWTConfig{Secret: cfg.JWT.Secret}
	auth := middleware.NewJWTAuth(jwtCfg)
	optionalAuth := middleware.NewOptionalJWTAuth(jwtCfg)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", auth, authHandler.Me)

		users := api.Group("/users")
		{
			users.GET("/:id", optionalAuth, userHandler.GetProfile)
			users.GET("/:id/followers", userHandler.GetFollowers)
			users.GET("/:id/following", userHandler.GetFollowing)
			users.GET("/:id/posts", optionalAuth, userHandler.GetPosts)
			users.GET("/:id/stories", auth, storyHandler.UserStories)
			users.GET("/:id/events", eventHandler.ByOrganizer)
			users.PUT("/profile", auth, userHandler.UpdateProfile)
			users.POST("/:id/follow", auth, userHandler.Follow)
			users.DELETE("/:id/follow", auth, userHandler.Unfollow)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", optionalAuth, feedHandler.PublicFeed)
			posts.POST("", auth, feedHandler.CreatePost)
			posts.GET("/:id", optionalAuth, feedHandler.GetPost)
			posts.DELETE("/:id", auth, feedHandler.DeletePost)
			posts.POST("/:id/like", auth, feedHandler.ToggleLike)
			posts.GET("/:id/likes", feedHandler.GetLikers)
			posts.GET("/:id/comments", feedHandler.GetComments)
			posts.POST("/:id/comments", auth, feedHandler.CreateComment)
			posts.DELETE("/:id/comments/:commentId", auth, feedHandler.DeleteComment)
			posts.POST("/:id/comments/:commentId/like", auth, feedHandler.ToggleCommentLike)
		}

		api.GET("/feed", auth, feedHandler.FollowingFeed)

		stories := api.Group("/stories", auth)
		{
			stories.GET("", storyHandler.Feed)
			stories.POST("", storyHandler.Create)
			stories.POST("/:id/view", storyHandler.MarkViewed)
			stories.GET("/:id/viewers", storyHandler.Viewers)
			stories.DELETE("/:id", storyHandler.Delete)
		}

		events := api.Group("/events")
		{
			events.GET("", eventHandler.List)
			events.GET("/:id", eventHandler.Get)
			events.GET("/:id/attendees", eventHandler.Attendees)
			events.POST("", auth, eventHandler.Create)
			events.PUT("/:id", auth, eventHandler.Update)
			events.DELETE("/:id", auth, eventHandler.Cancel)
			events.POST("/:id/rsvp", auth, eventHandler.ToggleRSVP)
		}

		announcements := api.Group("/announcements")
		{
			announcements.GET("", announcementHandler.List)
			announcements.GET("/:id", announcementHandler.Get)
			announcements.POST("", auth, announcementHandler.Create)
			announcements.PUT("/:id", auth, announcementHandler.Update)
			announcements.DELETE("/:id", auth, announcementHandler.Delete)
			announcements.POST("/:id/view", auth, announcementHandler.MarkViewed)
		}

		notifications := api.Group("/notifications", auth)
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		}

		search := api.Group("/search")
		{
			search.GET("", optionalAuth, searchHandler.Search)
			search.GET("/trending", searchHandler.Trending)
			search.GET("/recent", auth, searchHandler.Recent)
			search.DELETE("/recent", auth, searchHandler.ClearRecent)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if len(origins) == 0 {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func init() {
	if err := os.MkdirAll("configs", 0755); err != nil {
		log.Printf("Failed to create configs directory: %v", err)
		return
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s
  cors_origins: []

database:
  host: "localhost"
  port: 5432
  user: "ppsu"
  password: "ppsupass"
  dbname: "ppsusocial"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    engagement_events: "engagement-events"

jwt:
  secret: "your-secret-key-change-in-production"
  expire_time: 168h

auth:
  allowed_email_domains:
    - "ppsu.ac.in"

feed:
  default_page_size: 10
  max_page_size: 100
  following_id_cap: 5000
  cache_ttl: 1m
  story_lifetime: 24h`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
