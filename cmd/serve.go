package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/image-forge/api"
	"github.com/anoixa/image-forge/api/core"
	"github.com/anoixa/image-forge/cache"
	"github.com/anoixa/image-forge/config"
	"github.com/anoixa/image-forge/database"
	"github.com/anoixa/image-forge/database/repo/accounts"
	"github.com/anoixa/image-forge/database/repo/images"
	imagesvc "github.com/anoixa/image-forge/internal/image"
	"github.com/anoixa/image-forge/internal/transform"
	"github.com/anoixa/image-forge/storage"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 自动DDL
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	imagesRepo := images.NewRepository(db)
	accountsRepo := accounts.NewRepository(db)

	// 创建默认管理员用户
	accountsRepo.CreateDefaultAdminUser()

	storageFactory, err := storage.NewFactory(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	cacheProvider, err := cache.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	cacheHelper := cache.NewHelper(cacheProvider, cfg.CacheRecordTTL)

	// 初始化 JWT
	if err := api.TokenInit(cfg.JwtSecret, cfg.JwtExpiresIn); err != nil {
		log.Fatalf("Failed to initialize JWT: %s", err)
	}

	imageService := imagesvc.NewService(
		imagesRepo,
		accountsRepo,
		storageFactory.GetDefault(),
		transform.NewEngine(),
		cacheHelper,
	)

	// 创建服务器依赖
	deps := &core.ServerDependencies{
		DB:             db,
		StorageFactory: storageFactory,
		CacheHelper:    cacheHelper,
		ImageService:   imageService,
		AccountsRepo:   accountsRepo,
	}

	// 启动gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	if err := cacheHelper.Close(); err != nil {
		log.Printf("Error closing cache: %v", err)
	}

	if err := database.Close(db); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}
