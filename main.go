package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-emergency-api/src/infrastructure/di"
	logger "pet-emergency-api/src/infrastructure/logger"
	"pet-emergency-api/src/infrastructure/rest/middlewares"
	"pet-emergency-api/src/infrastructure/rest/routes"
	"pet-emergency-api/src/infrastructure/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: utils.GetEnv("SERVER_PORT", "8080"),
	}
}

func main() {
	// .env is optional; real deployments inject environment directly
	_ = godotenv.Load()

	env := utils.GetEnv("GO_ENV", "development")
	var loggerInstance *logger.Logger
	var err error

	if env == "development" {
		loggerInstance, err = logger.NewDevelopmentLogger()
	} else {
		loggerInstance, err = logger.NewLogger()
	}

	if err != nil {
		panic(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() {
		if err := loggerInstance.Log.Sync(); err != nil {
			loggerInstance.Log.Error("Failed to sync logger", zap.Error(err))
		}
	}()

	loggerInstance.Info("Starting pet-emergency-api application")

	serverConfig := loadServerConfig()

	appContext, err := di.SetupDependencies(loggerInstance)
	if err != nil {
		loggerInstance.Panic("Error initializing application context", zap.Error(err))
	}

	router := setupRouter(appContext, loggerInstance)
	server := setupServer(router, serverConfig.Port)

	// The broadcast processor's startup sweep re-enqueues any messages left in
	// queued state by a previous run.
	go func() {
		loggerInstance.Info("Server starting", zap.String("port", serverConfig.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Panic("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	loggerInstance.Info("Shutting down, draining in-flight sends")
	appContext.BroadcastProcessor.Shutdown()
	_ = server.Close()
}

func setupRouter(appContext *di.ApplicationContext, loggerInstance *logger.Logger) *gin.Engine {
	env := utils.GetEnv("GO_ENV", "development")
	if env == "development" {
		loggerInstance.SetupGinWithZapLoggerInDevelopment()
	} else {
		loggerInstance.SetupGinWithZapLogger()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.Use(middlewares.ErrorHandler())
	router.Use(middlewares.CommonHeaders)

	router.Use(loggerInstance.GinZapLogger())

	routes.ApplicationRouter(router, appContext)
	return router
}

func setupServer(router *gin.Engine, port string) *http.Server {
	return &http.Server{
		Addr:           ":" + port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}
