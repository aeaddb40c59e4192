package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cardcms/internal/handlers"
	"cardcms/internal/logger"
	"cardcms/internal/media"
	"cardcms/internal/repository"
	"cardcms/internal/repository/db"
	"cardcms/internal/server"
	"cardcms/internal/service"

	"github.com/spf13/viper"
)

// @title           Card CMS API
// @version         1.0
// @description     Admin API for managing blog cards: login, card CRUD with image upload.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml + env secrets
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	if err := checkSigningKey(viper.GetString("auth.signing_key")); err != nil {
		log.Fatalw("invalid auth config", "err", err)
	}

	// open DB
	database, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	uploader, err := media.NewS3Host(mediaConfig())
	if err != nil {
		log.Fatalw("failed to init media host", "err", err)
	}

	repos := repository.NewRepository(database)
	services := service.NewService(repos, uploader, serviceConfig())
	apiHandler := handlers.NewHandler(services, log)

	// make sure the admin account exists before serving traffic
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := services.EnsureBootstrapUser(ctx); err != nil {
		log.Fatalw("failed to bootstrap admin user", "err", err)
	}

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")

	// secrets only ever come from the environment
	_ = viper.BindEnv("auth.signing_key", "CARDCMS_JWT_SECRET")
	_ = viper.BindEnv("media.access_key", "CARDCMS_MEDIA_ACCESS_KEY")
	_ = viper.BindEnv("media.secret_key", "CARDCMS_MEDIA_SECRET_KEY")

	return viper.ReadInConfig()
}

// checkSigningKey refuses startup with an empty JWT secret: every token
// would otherwise be signed with a key an attacker can trivially guess.
func checkSigningKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("CARDCMS_JWT_SECRET is not set")
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "cardcms.db")
		dbPath = "cardcms.db"
	}
	return db.InitDB(dbPath)
}

func serviceConfig() service.Config {
	return service.Config{
		Auth: service.AuthConfig{
			SigningKey:        viper.GetString("auth.signing_key"),
			TokenTTL:          time.Duration(viper.GetInt("auth.token_ttl_minutes")) * time.Minute,
			BootstrapUsername: viper.GetString("auth.bootstrap_username"),
			BootstrapPassword: viper.GetString("auth.bootstrap_password"),
		},
		PageSize: viper.GetInt("cards.page_size"),
	}
}

func mediaConfig() media.Config {
	return media.Config{
		Endpoint:  viper.GetString("media.endpoint"),
		Region:    viper.GetString("media.region"),
		Bucket:    viper.GetString("media.bucket"),
		Folder:    viper.GetString("media.folder"),
		AccessKey: viper.GetString("media.access_key"),
		SecretKey: viper.GetString("media.secret_key"),
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
