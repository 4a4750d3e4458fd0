package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/voo-ward/voo-citizen-backend/api/controllers"
	"github.com/voo-ward/voo-citizen-backend/api/routes"
	"github.com/voo-ward/voo-citizen-backend/internal/ai"
	"github.com/voo-ward/voo-citizen-backend/internal/announcements"
	"github.com/voo-ward/voo-citizen-backend/internal/auth"
	"github.com/voo-ward/voo-citizen-backend/internal/bursary"
	"github.com/voo-ward/voo-citizen-backend/internal/emergencycontacts"
	"github.com/voo-ward/voo-citizen-backend/internal/feedback"
	"github.com/voo-ward/voo-citizen-backend/internal/issues"
	"github.com/voo-ward/voo-citizen-backend/internal/lostid"
	"github.com/voo-ward/voo-citizen-backend/internal/media"
	"github.com/voo-ward/voo-citizen-backend/internal/notifications"
	"github.com/voo-ward/voo-citizen-backend/internal/sequence"
	"github.com/voo-ward/voo-citizen-backend/internal/users"
	"github.com/voo-ward/voo-citizen-backend/pkg/auth/session"
	"github.com/voo-ward/voo-citizen-backend/pkg/cloudinary"
	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	"github.com/voo-ward/voo-citizen-backend/pkg/db"
	"github.com/voo-ward/voo-citizen-backend/pkg/fcm"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
	"github.com/voo-ward/voo-citizen-backend/pkg/metrics"
	"github.com/voo-ward/voo-citizen-backend/pkg/migrate"
	"github.com/voo-ward/voo-citizen-backend/pkg/mongo"
	"github.com/voo-ward/voo-citizen-backend/pkg/openai"
	"github.com/voo-ward/voo-citizen-backend/pkg/redis"
	"github.com/voo-ward/voo-citizen-backend/pkg/sms"
)

const (
	serviceName           = "voo-api"
	conversationsCollName = "ai_conversations"
	shutdownTimeout       = 20 * time.Second
	dispatchDrainTimeout  = 10 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api exited with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	readiness := map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
		"mongo":    nil,
	}

	var history ai.HistoryStore
	if cfg.Mongo.Enabled() {
		var mongoClient *mongo.Client
		mongoClient, err = mongo.New(ctx, cfg.Mongo, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, mongoClient.Close())
		}()
		coll := mongoClient.Collection(conversationsCollName)
		if err := ai.EnsureHistoryIndexes(ctx, coll); err != nil {
			logg.Error(ctx, "mongo.indexes.failed", err)
		}
		history = ai.NewMongoHistory(coll)
		readiness["mongo"] = mongoClient
	} else {
		logg.Warn(ctx, "mongo not configured, chat history disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	adapterMetrics := metrics.NewAdapterMetrics(registry)

	aiParams := ai.ServiceParams{History: history, Logger: logg, Metrics: adapterMetrics}
	if completer, err := openai.NewClient(cfg.OpenAI); err != nil {
		logg.Warn(ctx, "openai not configured, ai features will use fallbacks")
	} else {
		aiParams.Completer = completer
	}
	aiService := ai.NewService(aiParams)

	mediaParams := media.ServiceParams{Logger: logg, Metrics: adapterMetrics}
	if uploader, err := cloudinary.NewClient(cfg.Cloudinary); err != nil {
		logg.Warn(ctx, "cloudinary not configured, images will be dropped")
	} else {
		mediaParams.Uploader = uploader
	}
	mediaService := media.NewService(mediaParams)

	dispatcherParams := notifications.DispatcherParams{
		Logger:  logg,
		Metrics: adapterMetrics,
		Timeout: cfg.Notifications.Timeout,
	}
	if pushClient, err := fcm.NewClient(ctx, cfg.Firebase); err != nil {
		logg.Warn(ctx, "firebase not configured, push notifications disabled")
	} else {
		dispatcherParams.Push = pushClient
	}
	if smsClient, err := sms.NewClient(cfg.SMS, sms.WithCountryCode(cfg.App.CountryCode)); err != nil {
		logg.Warn(ctx, "sms not configured, text notifications disabled")
	} else {
		dispatcherParams.SMS = smsClient
	}
	dispatcher := notifications.NewDispatcher(dispatcherParams)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	userRepo := users.NewRepository(dbClient.DB())
	wardLocation, err := cfg.App.Location()
	if err != nil {
		return err
	}
	allocator := sequence.NewAllocator(wardLocation)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		CountryCode:    cfg.App.CountryCode,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	registerParams := auth.RegisterServiceParams{
		TxRunner:       dbClient,
		UserRepo:       userRepo,
		PasswordConfig: cfg.Password,
		CountryCode:    cfg.App.CountryCode,
	}
	registerService, err := auth.NewRegisterService(registerParams)
	if err != nil {
		return err
	}
	adminRegisterService, err := auth.NewAdminRegisterService(registerParams)
	if err != nil {
		return err
	}

	issuesService, err := issues.NewService(issues.ServiceParams{
		Repo:     issues.NewRepository(dbClient.DB()),
		Users:    userRepo,
		TxRunner: dbClient,
		Sequence: allocator,
		Media:    mediaService,
		AI:       aiService,
		Notifier: dispatcher,
		Upvotes:  redisClient,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	bursaryService, err := bursary.NewService(bursary.ServiceParams{
		Repo:     bursary.NewRepository(dbClient.DB()),
		Users:    userRepo,
		TxRunner: dbClient,
		Sequence: allocator,
		Notifier: dispatcher,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	lostIDService, err := lostid.NewService(lostid.ServiceParams{
		Repo:        lostid.NewRepository(dbClient.DB()),
		Users:       userRepo,
		TxRunner:    dbClient,
		Sequence:    allocator,
		Notifier:    dispatcher,
		CountryCode: cfg.App.CountryCode,
		Logger:      logg,
	})
	if err != nil {
		return err
	}

	announcementsService, err := announcements.NewService(announcements.NewRepository(dbClient.DB()), nil)
	if err != nil {
		return err
	}
	contactsService, err := emergencycontacts.NewService(emergencycontacts.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	feedbackService, err := feedback.NewService(feedback.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	router := routes.NewRouter(cfg, logg, readiness, redisClient, sessionManager, registry, routes.Services{
		Auth:              authService,
		Register:          registerService,
		AdminRegister:     adminRegisterService,
		Issues:            issuesService,
		Bursary:           bursaryService,
		LostID:            lostIDService,
		Announcements:     announcementsService,
		EmergencyContacts: contactsService,
		Feedback:          feedbackService,
		AI:                aiService,
		Media:             mediaService,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "api listening on "+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logg.Info(context.Background(), "api shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "http shutdown", err)
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), dispatchDrainTimeout)
	defer cancelDrain()
	if err := dispatcher.Wait(drainCtx); err != nil {
		logg.Warn(drainCtx, "notifications still in flight at shutdown")
	}
	return nil
}
