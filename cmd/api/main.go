package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	domain "github.com/velours-paris/api/internal/domain"
	"github.com/velours-paris/api/internal/editmode"
	"github.com/velours-paris/api/internal/handlers"
	"github.com/velours-paris/api/internal/i18n"
	"github.com/velours-paris/api/internal/platform/auth"
	"github.com/velours-paris/api/internal/platform/config"
	pfirestore "github.com/velours-paris/api/internal/platform/firestore"
	"github.com/velours-paris/api/internal/platform/observability"
	firestoreRepo "github.com/velours-paris/api/internal/repositories/firestore"
	"github.com/velours-paris/api/internal/richtext"
	"github.com/velours-paris/api/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}

	registry, err := firestoreRepo.NewRegistry(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := registry.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier, auth.WithUserGetter(firebaseVerifier))

	defaultLanguage := domain.ParseLanguage(cfg.I18n.DefaultLanguage)
	bundle, err := i18n.Load(cfg.I18n.TranslationsDir, defaultLanguage)
	if err != nil {
		logger.Warn("translation dictionaries unavailable, serving raw keys", zap.Error(err))
		bundle = i18n.NewBundle(nil, defaultLanguage)
	}

	prices := domain.NewPriceFormatter(rateTable(cfg.Catalog), symbolTable(cfg.Catalog))
	editMode := editmode.NewManager()

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Catalog: registry.Catalog(),
		Clock:   time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}
	wishlistService, err := services.NewWishlistService(services.WishlistServiceDeps{
		Wishlists: registry.Wishlists(),
		Clock:     time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise wishlist service", zap.Error(err))
	}
	featureService, err := services.NewFeatureService(services.FeatureServiceDeps{
		Features: registry.SiteFeatures(),
		TTL:      cfg.Features.CacheTTL,
		Clock:    time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise feature service", zap.Error(err))
	}
	settingsService, err := services.NewSettingsService(services.SettingsServiceDeps{
		Settings:           registry.SiteSettings(),
		ComingSoonDefaults: defaultComingSoon(),
	})
	if err != nil {
		logger.Fatal("failed to initialise settings service", zap.Error(err))
	}
	contentService, err := services.NewContentService(services.ContentServiceDeps{
		Content:  registry.ContentBlocks(),
		Renderer: richtext.NewRenderer(),
		Clock:    time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise content service", zap.Error(err))
	}

	publicHandlers := handlers.NewPublicHandlers(handlers.PublicHandlersDeps{
		Catalog:  catalogService,
		Content:  contentService,
		Settings: settingsService,
		Features: featureService,
		Wishlist: wishlistService,
		Prices:   prices,
		Bundle:   bundle,
		EditMode: editMode,
	})
	meHandlers := handlers.NewMeHandlers(wishlistService)
	adminHandlers := handlers.NewAdminHandlers(handlers.AdminHandlersDeps{
		Catalog:  catalogService,
		Content:  contentService,
		Features: featureService,
		Settings: settingsService,
		EditMode: editMode,
	})

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfoFromEnv(startedAt)),
		handlers.WithHealthReadiness(registry.Health()),
	)

	projectID := strings.TrimSpace(cfg.Firebase.ProjectID)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithPublicRoutes(publicHandlers.Routes),
		handlers.WithPublicMiddlewares(
			authenticator.OptionalFirebaseAuth(),
			handlers.ComingSoonGate(settingsService, bundle),
		),
		handlers.WithMeRoutes(meHandlers.Routes),
		handlers.WithMeMiddlewares(authenticator.RequireFirebaseAuth()),
		handlers.WithAdminRoutes(adminHandlers.Routes),
		handlers.WithAdminMiddlewares(authenticator.RequireFirebaseAuth(auth.RoleAdmin)),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// rateTable layers configured conversion rates over the compiled-in defaults.
func rateTable(cfg config.CatalogConfig) domain.RateTable {
	table := domain.DefaultRates()
	for code, rate := range cfg.Rates {
		table[domain.Currency(code)] = rate
	}
	return table
}

func symbolTable(cfg config.CatalogConfig) domain.SymbolTable {
	table := domain.DefaultSymbols()
	for code, symbol := range cfg.Symbols {
		table[domain.Currency(code)] = symbol
	}
	return table
}

// defaultComingSoon is the compiled-in launch-gate baseline. Persisted
// overrides are merged over it field by field; the gate ships disabled.
func defaultComingSoon() domain.ComingSoonConfig {
	return domain.ComingSoonConfig{
		Enabled:   false,
		MessageFR: "Notre nouvelle collection arrive bientôt.",
		MessageEN: "Our new collection is coming soon.",
	}
}

func buildInfoFromEnv(started time.Time) handlers.BuildInfo {
	version := strings.TrimSpace(os.Getenv("STOREFRONT_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("STOREFRONT_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(os.Getenv("STOREFRONT_ENVIRONMENT"))
	if environment == "" {
		environment = "local"
	}
	return handlers.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}
