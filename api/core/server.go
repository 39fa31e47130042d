package core

import (
	"net/http"
	"time"

	"github.com/anoixa/image-forge/api"
	"github.com/anoixa/image-forge/api/common"
	handlerImages "github.com/anoixa/image-forge/api/handler/images"
	"github.com/anoixa/image-forge/api/middleware"
	"github.com/anoixa/image-forge/cache"
	"github.com/anoixa/image-forge/config"
	"github.com/anoixa/image-forge/database/repo/accounts"
	imagesvc "github.com/anoixa/image-forge/internal/image"
	"github.com/anoixa/image-forge/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var startTime = time.Now()

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	DB             *gorm.DB
	StorageFactory *storage.Factory
	CacheHelper    *cache.Helper
	ImageService   *imagesvc.Service
	AccountsRepo   *accounts.Repository
}

// 启动gin
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	// 速率限制
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, 10*time.Minute)
	cleanup := func() {
		apiRateLimiter.Stop()
	}

	router.GET("/health", func(context *gin.Context) {
		health := gin.H{
			"status": "ok",
			"uptime": time.Since(startTime).Round(time.Second).String(),
			"checks": gin.H{
				"database": checkDatabaseHealth(deps.DB),
				"cache":    checkCacheHealth(deps.CacheHelper),
				"storage":  checkStorageHealth(deps.StorageFactory),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		context.JSON(httpStatus, health)
	})
	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	// 创建处理器（依赖注入）
	imageHandler := handlerImages.NewHandler(deps.ImageService, cfg.UploadMaxSizeMB, cfg.UploadMaxBatchTotalMB)
	loginHandler := api.NewLoginHandler(deps.AccountsRepo)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.Use(apiRateLimiter.Middleware())
		{
			authGroup.POST("/login", loginHandler.LoginHandlerFunc) //POST /api/auth/login
		}

		v1 := apiGroup.Group("/v1")
		v1.Use(apiRateLimiter.Middleware())
		v1.Use(middleware.JWTAuth())
		{
			imagesGroup := v1.Group("/images")
			{
				imagesGroup.GET("", imageHandler.ListImages)                            // GET /api/v1/images
				imagesGroup.POST("/upload", imageHandler.UploadImage)                   // POST /api/v1/images/upload (single file)
				imagesGroup.POST("/uploads", imageHandler.UploadImages)                 // POST /api/v1/images/uploads (multiple files)
				imagesGroup.POST("/:identifier/transform", imageHandler.TransformImage) // POST /api/v1/images/{photo}/transform
				imagesGroup.POST("/file", imageHandler.GetFile)                         // POST /api/v1/images/file
				imagesGroup.POST("/files", imageHandler.GetFiles)                       // POST /api/v1/images/files
				imagesGroup.POST("/delete", imageHandler.DeleteFile)                    // POST /api/v1/images/delete
				imagesGroup.POST("/deletes", imageHandler.DeleteFiles)                  // POST /api/v1/images/deletes
			}
		}
	}

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := config.Get()
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
