package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mertflix/api/handler"
	apiMiddleware "mertflix/api/middleware"
	"mertflix/api/routes"
	"mertflix/config"
	"mertflix/internal/repository"
	"mertflix/internal/service"
	"mertflix/internal/utils"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := config.ConnectionDb(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("database unavailable")
	}
	if cfg.MigrateOnStart {
		if err := config.RunMigrations(db, logger); err != nil {
			logger.WithError(err).Fatal("migrations failed")
		}
	}

	accessManager := utils.JWTManager{
		Secret:         []byte(cfg.JWT.Secret),
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.ExpiresIn,
	}
	accessIssuer := service.JWTAccessIssuer{Manager: &accessManager}
	codeHasher := utils.CodeHasher{Key: []byte(cfg.Codes.HashSecret)}
	passwordHasher := service.BcryptPasswordHasher{Cost: cfg.BcryptCost}
	emailSender := newEmailSender(cfg, logger)
	authConfig := service.AuthConfig{
		RegistrationCodeTTL: cfg.Codes.RegistrationTTL,
		LoginCodeTTL:        cfg.Codes.LoginTTL,
		ResetCodeTTL:        cfg.Codes.ResetTTL,
		EmailChangeCodeTTL:  cfg.Codes.EmailChangeTTL,
	}
	clock := service.RealClock{}

	userRepo := repository.NewUserRepository(db)
	pendingRepo := repository.NewPendingRegistrationRepository(db)
	codeRepo := repository.NewOneTimeCodeRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	transactor := repository.NewTransactor(db)

	authService := service.NewAuthService(
		userRepo,
		pendingRepo,
		codeRepo,
		securityRepo,
		transactor,
		emailSender,
		passwordHasher,
		codeHasher,
		utils.RandomCode6,
		accessIssuer,
		clock,
		authConfig,
		logger,
	)
	accountService := service.NewAccountService(
		userRepo,
		codeRepo,
		securityRepo,
		transactor,
		emailSender,
		passwordHasher,
		codeHasher,
		utils.RandomCode6,
		clock,
		authConfig,
		logger,
	)
	libraryService := service.NewLibraryService(libraryRepo, clock)
	commentService := service.NewCommentService(commentRepo, clock)

	validate := handler.NewValidator()

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.HTTPErrorHandler(logger)
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.BodyLimit("64K"))
	app.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":  v.Status,
				"method":  v.Method,
				"uri":     v.URI,
				"ip":      v.RemoteIP,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Auth: authService}
	router := routes.NewRouter(
		app,
		handler.NewAuthHandler(authService, validate),
		handler.NewAccountHandler(accountService, validate),
		handler.NewLibraryHandler(libraryService, validate),
		handler.NewCommentHandler(commentService, validate),
		authMiddleware,
	)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown failed")
	}
	logger.Info("server stopped")
}

// newEmailSender picks Resend when an API key is configured and the log mailer otherwise.
func newEmailSender(cfg *config.Config, logger *logrus.Logger) service.EmailSender {
	var sender service.EmailSender = service.LogEmailSender{Log: logger}
	if cfg.Mail.ResendAPIKey != "" {
		resendSender, err := service.NewResendEmailSender(cfg.Mail.ResendAPIKey, cfg.Mail.From)
		if err != nil {
			logger.WithError(err).Fatal("mail sender misconfigured")
		}
		sender = resendSender
	} else {
		logger.Warn("RESEND_API_KEY not set, codes are written to the log")
	}
	paced := service.NewPacedEmailSender(sender, cfg.Mail.RatePerSecond)
	return service.TimeoutEmailSender{Next: paced, Timeout: cfg.Mail.Timeout}
}
