package main

import (
	"context"
	"esign-web-server/config"
	_ "esign-web-server/docs"
	"esign-web-server/internal/completion"
	"esign-web-server/internal/events"
	"esign-web-server/internal/handler"
	"esign-web-server/internal/metrics"
	"esign-web-server/internal/notifier"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/ratelimit"
	"esign-web-server/internal/repository"
	"esign-web-server/internal/security"
	"esign-web-server/internal/service"
	"esign-web-server/internal/util"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type eventPublisher interface {
	ports.EventPublisher
	Close() error
}

// @title E-sign web server
// @version 1.0
// @description REST API для подготовки документов и их подписания по ссылке

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config.yaml"
	}
	configPath := flag.String("config", defaultPath, "путь к yaml конфигурации")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := util.SetupLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logger.Sync()

	tracerProvider := metrics.InitTracing("esign-web-server", "1.0.0", logger)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("Ошибка при остановке трассировки", zap.Error(err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.DatabaseConfig)
	if err != nil {
		logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Ошибка при закрытии БД", zap.Error(err))
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		logger.Fatal("Ошибка подключения к Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("Ошибка при закрытии Redis", zap.Error(err))
		}
	}()

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		logger.Fatal("Ошибка создания S3 сервиса", zap.Error(err))
	}

	publisher := setupEvents(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Ошибка при закрытии RabbitMQ", zap.Error(err))
		}
	}()

	jwtService, err := security.NewJWTService(&cfg.JWT)
	if err != nil {
		logger.Fatal("Ошибка настройки JWT", zap.Error(err))
	}

	appMetrics := metrics.NewMetrics("esign")
	ttl := cfg.TTL.Duration()

	repos := service.Repositories{
		Documents:  repository.NewDocumentRepository(db),
		Recipients: repository.NewRecipientRepository(db),
		Fields:     repository.NewFieldRepository(db),
		Signatures: repository.NewSignatureRepository(db),
		AccessLogs: repository.NewAccessLogRepository(db),
		Users:      repository.NewUserRepository(db),
	}
	jwtRepo := repository.NewJWTRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, ttl)

	notifications := service.Notifications{
		Mailer:   setupMailer(cfg, logger),
		Provider: cfg.Mail.Provider,
		Events:   publisher,
		Metrics:  appMetrics,
	}

	engine := completion.NewEngine(completion.NewPDFLoader(), completion.Options{
		StrictPages:    cfg.Completion.StrictPages,
		ReferenceWidth: cfg.Completion.ReferenceWidth,
		FontSize:       cfg.Completion.FontSize,
	})

	guard := service.NewPermissionGuard(db, repos.Documents)
	accessLogs := service.NewAccessLogService(guard, repos.AccessLogs)
	resolver := service.NewTokenResolver(repos.Recipients, repos.Documents)

	docService := service.NewDocumentService(db, guard, repos, accessLogs, cacheRepo, s3Service, notifications, cfg.Signing, ttl)
	recipientService := service.NewRecipientService(guard, repos.Recipients, cfg.Signing)
	fieldService := service.NewFieldService(guard, repos.Fields, repos.Recipients)
	signingService := service.NewSigningService(db, resolver, repos, accessLogs, cacheRepo, s3Service, engine, notifications, ttl)
	authService := service.NewAuthenticationService(db, jwtRepo, jwtService, repos.Users)
	userService := service.NewUserService(db, repos.Users, jwtService, jwtRepo, &cfg.Admin)

	limiter := ratelimit.NewLimiter(ratelimit.NewRedisCounter(redisClient.Client), cfg.RateLimit.Requests, cfg.RateLimit.WindowDuration(), "sign")

	srv, router := config.SetupServer(cfg.ServerAddr)
	if cfg.RateLimit.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(middleware.RequestID, middleware.Recoverer, appMetrics.Middleware)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Handle("/metrics", appMetrics.Handler())

	healthHandler := handler.NewHealthHandler(
		handler.HealthCheck{Name: "postgres", Check: db.Ping},
		handler.HealthCheck{Name: "redis", Check: redisClient.Ping},
	)
	router.Get("/healthz", healthHandler.Health)

	authMiddleware := security.JWTMiddleware(jwtService, jwtRepo)

	setupAuthRoutes(router, handler.NewAuthenticationHandler(authService, jwtService))
	setupUserRoutes(router, handler.NewUserHandler(userService), authMiddleware)
	setupDocumentRoutes(router,
		handler.NewDocumentHandler(docService),
		handler.NewRecipientHandler(recipientService, cfg.Signing.PublicBaseURL),
		handler.NewFieldHandler(fieldService),
		authMiddleware)
	setupSigningRoutes(router, handler.NewSigningHandler(signingService), limiter)

	runServer(ctx, srv, logger)
}

func setupMailer(cfg *config.AppConfig, logger *zap.Logger) ports.Mailer {
	switch cfg.Mail.Provider {
	case "mailgun":
		return notifier.NewMailgunMailer(cfg.Mail.Mailgun.Domain, cfg.Mail.Mailgun.APIKey, cfg.Mail.FromAddress, cfg.Mail.TimeoutDuration())
	case "smtp":
		return notifier.NewSMTPMailer(cfg.Mail.SMTP.Addr, cfg.Mail.SMTP.Username, cfg.Mail.SMTP.Password, cfg.Mail.FromAddress)
	default:
		return notifier.NewLogMailer(logger)
	}
}

// setupEvents : без URL брокера события не публикуются
func setupEvents(cfg *config.AppConfig, logger *zap.Logger) eventPublisher {
	if cfg.RabbitMQ.URL == "" {
		logger.Info("RabbitMQ не настроен, события отключены")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к RabbitMQ", zap.Error(err))
	}
	return publisher
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/", h.Login)
		r.Post("/refresh", h.RefreshToken)
		r.Delete("/{token}", h.Logout)
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, auth func(http.Handler) http.Handler) {
	r.Post("/api/register", h.RegisterUser)

	r.Route("/api/users/me", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.GetCurrentUser)
		r.Head("/", h.GetCurrentUser)
		r.Put("/password", h.UpdatePassword)
	})
}

func setupDocumentRoutes(r chi.Router, docs *handler.DocumentHandler, recipients *handler.RecipientHandler, fields *handler.FieldHandler, auth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Route("/api/docs", func(r chi.Router) {
			r.Get("/", docs.ListDocuments)
			r.Head("/", docs.ListDocuments)
			r.Post("/", docs.CreateDocument)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", docs.GetDocument)
				r.Head("/", docs.GetDocument)
				r.Patch("/", docs.UpdateDocument)
				r.Delete("/", docs.DeleteDocument)
				r.Put("/file", docs.ReplaceFile)
				r.Post("/copy", docs.CreateFromTemplate)
				r.Post("/send", docs.SendDocument)
				r.Get("/signatures", docs.ListSignatures)
				r.Get("/access-logs", docs.ListAccessLogs)

				r.Get("/recipients", recipients.ListRecipients)
				r.Post("/recipients", recipients.AddRecipients)
				r.Get("/fields", fields.ListFields)
				r.Post("/fields", fields.PlaceField)
			})
		})

		r.Route("/api/recipients/{recipient_id}", func(r chi.Router) {
			r.Patch("/", recipients.UpdateRecipient)
			r.Delete("/", recipients.DeleteRecipient)
		})

		r.Route("/api/fields/{field_id}", func(r chi.Router) {
			r.Patch("/", fields.UpdateField)
			r.Put("/position", fields.MoveField)
			r.Delete("/", fields.DeleteField)
		})
	})
}

func setupSigningRoutes(r chi.Router, h *handler.SigningHandler, limiter *ratelimit.Limiter) {
	r.Route("/api/sign/{doc_id}/{token}", func(r chi.Router) {
		r.Use(limiter.Middleware(ratelimit.ByClientIP))
		r.Get("/", h.View)
		r.Post("/", h.Sign)
		r.Put("/fields/{field_id}", h.SaveFieldValue)
	})
}

func runServer(ctx context.Context, server *http.Server, logger *zap.Logger) {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("сервер запущен", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("ошибка работы сервера", zap.Error(err))
		}
	case sig := <-signalChannel:
		logger.Info("получен сигнал остановки работы сервера", zap.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		logger.Error("ошибка при остановке сервера", zap.Error(err))
	} else {
		logger.Info("Сервер успешно остановлен")
	}
}
