package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/placium/places-api/internal/config"
	"github.com/placium/places-api/internal/domain"
	"github.com/placium/places-api/internal/handler"
	"github.com/placium/places-api/internal/mailer"
	"github.com/placium/places-api/internal/repository"
	"github.com/placium/places-api/internal/service"
	"github.com/placium/places-api/internal/storage"
	"github.com/placium/places-api/internal/utils"
	"github.com/placium/places-api/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

// handlers bundles everything setupRoutes needs to mount the API
type handlers struct {
	auth   *handler.AuthHandler
	user   *handler.UserHandler
	place  *handler.PlaceHandler
	review *handler.ReviewHandler
	news   *handler.NewsHandler
	admin  *handler.AdminHandler

	authMW      *handler.AuthMiddleware
	rateLimiter *service.RateLimiter
	health      *HealthChecker
	metrics     http.Handler
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Postgres())

	tokenManager := utils.NewTokenManager(map[domain.TokenType]utils.TokenSettings{
		domain.TokenAccess:         {Secret: cfg.JWT.AccessSecret, Expiry: cfg.JWT.AccessExpiry.Duration},
		domain.TokenRefresh:        {Secret: cfg.JWT.RefreshSecret, Expiry: cfg.JWT.RefreshExpiry.Duration},
		domain.TokenVerifyEmail:    {Secret: cfg.Action.VerifyEmailSecret, Expiry: cfg.Action.VerifyEmailExpiry.Duration},
		domain.TokenForgotPassword: {Secret: cfg.Action.ForgotPasswordSecret, Expiry: cfg.Action.ForgotPasswordExpiry.Duration},
		domain.TokenAccountRestore: {Secret: cfg.Action.AccountRestoreSecret, Expiry: cfg.Action.AccountRestoreExpiry.Duration},
	})

	notifier, err := mailer.New(cfg.SMTP, cfg.App.FrontURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	media, err := storage.New(cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media storage: %w", err)
	}

	authService := service.NewAuthService(
		repos.User,
		repos.Session,
		repos.ActionToken,
		repos.OldPassword,
		tokenManager,
		notifier,
		cfg.Security.BCryptCost,
		logger,
	)
	userService := service.NewUserService(
		repos.User,
		repos.Place,
		repos.Session,
		repos.ActionToken,
		media,
		logger,
	)
	placeService := service.NewPlaceService(
		repos.Place,
		media,
		cfg.App.MaxAdminEstablishments,
		logger,
	)
	reviewService := service.NewReviewService(repos.Review, repos.Place)
	newsService := service.NewNewsService(repos.News, repos.Place, media, logger)
	cleanupService := service.NewCleanupService(
		repos.Session,
		repos.ActionToken,
		repos.OldPassword,
		service.CleanupConfig{
			SessionMaxAge:     cfg.App.SessionMaxAge.Duration,
			ActionTokenMaxAge: cfg.App.ActionTokenMaxAge.Duration,
			OldPasswordMaxAge: cfg.App.OldPasswordMaxAge.Duration,
		},
		logger,
	)

	h := &handlers{
		auth:   handler.NewAuthHandler(authService, logger),
		user:   handler.NewUserHandler(userService, logger),
		place:  handler.NewPlaceHandler(placeService, logger),
		review: handler.NewReviewHandler(reviewService, logger),
		news:   handler.NewNewsHandler(newsService, logger),
		admin:  handler.NewAdminHandler(cleanupService, logger),

		authMW:      handler.NewAuthMiddleware(tokenManager, repos.Session, repos.ActionToken, repos.User, logger),
		rateLimiter: service.NewRateLimiter(infra.Redis()),
		health:      NewHealthChecker(infra),
		metrics:     infra.MetricsHandler(),
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("places-api"))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, h)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(router *gin.Engine, cfg *config.Config, h *handlers) {
	router.GET("/metrics", observability.GinHandler(h.metrics))
	router.GET("/health", h.health.Handler)

	throttle := handler.RateLimitMiddleware(
		h.rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/sign-up", throttle, h.authMW.CheckEmailState(true), h.auth.SignUp)
		auth.POST("/sign-in", throttle, h.authMW.CheckEmailState(false), h.auth.SignIn)
		auth.POST("/refresh", h.authMW.RequireRefreshToken(), h.auth.Refresh)
		auth.GET("/ping", h.authMW.RequireRefreshToken(), h.auth.Ping)
		auth.POST("/logout", h.authMW.RequireAccessToken(), h.auth.Logout)
		auth.POST("/logout-all", h.authMW.RequireAccessToken(), h.auth.LogoutAll)

		auth.POST("/verify-email", h.authMW.RequireActionToken(domain.TokenVerifyEmail), h.auth.VerifyEmail)
		auth.POST("/resend-verification", h.authMW.RequireAccessToken(), h.auth.ResendVerification)

		auth.POST("/password-forgot", throttle, h.auth.ForgotPassword)
		auth.PUT("/password-forgot", h.authMW.RequireActionToken(domain.TokenForgotPassword), h.auth.ForgotPasswordSet)
		auth.PUT("/password-change", h.authMW.RequireAccessToken(), h.auth.ChangePassword)

		auth.POST("/account-restore", throttle, h.auth.AccountRestore)
		auth.PUT("/account-restore", h.authMW.RequireActionToken(domain.TokenAccountRestore), h.auth.AccountRestoreSet)
	}

	users := api.Group("/users", h.authMW.RequireAccessToken())
	{
		users.GET("/me", h.user.GetMe)
		users.PATCH("/me", h.user.UpdateMe)
		users.DELETE("/me", h.user.DeleteMe)
		users.PATCH("/me/photo", h.user.UpdatePhoto)
		users.GET("/me/establishments",
			h.authMW.RequireRole(domain.RoleEstablishmentAdmin, domain.RoleSuperadmin),
			h.user.Establishments,
		)

		users.GET("/favorites", h.user.Favorites)
		users.GET("/favorites/:placeId", h.user.IsFavorite)
		users.POST("/favorites", h.authMW.RequireRole(domain.RoleUser, domain.RoleCritic), h.user.AddFavorite)
		users.DELETE("/favorites", h.authMW.RequireRole(domain.RoleUser, domain.RoleCritic), h.user.RemoveFavorite)

		admin := users.Group("", h.authMW.RequireRole(domain.RoleSuperadmin))
		{
			admin.GET("/all", h.user.List)
			admin.GET("/:userId", h.user.GetByID)
			admin.DELETE("/:userId", h.user.DeleteUser)
			admin.PATCH("/:userId/role", h.user.ChangeRole)
			admin.PATCH("/reassign-establishment/:placeId", h.user.ReassignEstablishment)
		}
	}

	places := api.Group("/places")
	{
		places.GET("", h.place.List)
		places.GET("/tags", h.place.AllTags)
		places.GET("/:placeId", h.place.GetByID)

		owner := places.Group("",
			h.authMW.RequireAccessToken(),
			h.authMW.RequireVerifiedUser(),
			h.authMW.RequireRole(domain.RoleEstablishmentAdmin, domain.RoleSuperadmin),
		)
		{
			owner.POST("", h.place.Create)
			owner.PATCH("/:placeId", h.place.Update)
			owner.PATCH("/:placeId/photo", h.place.UpdatePhoto)
			owner.DELETE("/:placeId", h.place.Delete)
		}

		places.PATCH("/:placeId/moderate",
			h.authMW.RequireAccessToken(),
			h.authMW.RequireRole(domain.RoleSuperadmin),
			h.place.Moderate,
		)
		places.POST("/:placeId/view", h.authMW.RequireAccessToken(), h.place.AddView)
		places.GET("/:placeId/views-stats", h.authMW.RequireAccessToken(), h.place.ViewsStats)

		reviews := places.Group("/:placeId/reviews")
		{
			reviews.GET("", h.review.GetByPlace)
			reviews.POST("",
				h.authMW.RequireAccessToken(),
				h.authMW.RequireRole(domain.RoleUser, domain.RoleCritic),
				h.review.Create,
			)
			reviews.PATCH("/:reviewId", h.authMW.RequireAccessToken(), h.review.Update)
			reviews.DELETE("/:reviewId", h.authMW.RequireAccessToken(), h.review.Delete)
		}

		news := places.Group("/:placeId/news")
		{
			news.GET("", h.news.GetByPlace)
			news.GET("/:newsId", h.news.GetByID)
			news.POST("",
				h.authMW.RequireAccessToken(),
				h.authMW.RequireRole(domain.RoleEstablishmentAdmin),
				h.news.Create,
			)

			newsOwner := news.Group("",
				h.authMW.RequireAccessToken(),
				h.authMW.RequireRole(domain.RoleEstablishmentAdmin, domain.RoleSuperadmin),
			)
			{
				newsOwner.PATCH("/:newsId", h.news.Update)
				newsOwner.PATCH("/:newsId/photo", h.news.UpdatePhoto)
				newsOwner.DELETE("/:newsId", h.news.Delete)
			}
		}
	}

	adminAPI := api.Group("/admin",
		h.authMW.RequireAccessToken(),
		h.authMW.RequireRole(domain.RoleSuperadmin),
	)
	{
		adminAPI.POST("/cleanup", h.admin.Cleanup)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
