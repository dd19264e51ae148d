package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"lostwatch/docs"
	"lostwatch/internal/api"
	"lostwatch/internal/auth"
	"lostwatch/internal/config"
	"lostwatch/internal/logging"
	"lostwatch/internal/metrics"
	"lostwatch/internal/notify"
	"lostwatch/internal/registry"
	"lostwatch/internal/store"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Lost Watch Registry API
// @description Lost and found reports for watches, matched by serial number.
// @BasePath /
func main() {
	cfg := config.Load()
	if err := logging.Setup(os.Stderr, cfg.LogFormat, cfg.LogLevel); err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	metrics.Register()

	db, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}
	defer db.Close()

	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to set up notifier")
	}
	defer closeNotifier()

	// cancelled on shutdown; stops the key set refresh
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	deps := api.Deps{Service: registry.New(db, notifier)}
	// only assign when enabled: a nil *auth.Verifier would still be a non-nil interface
	if cfg.Verifier.Enabled() {
		v, err := auth.NewVerifier(appCtx, cfg.Verifier.Issuer, cfg.Verifier.Audience, cfg.Verifier.JWKSURL)
		if err != nil {
			log.WithError(err).Fatal("failed to set up token verifier")
		}
		deps.Verifier = v
	} else {
		log.Warn("AUTH_ISSUER not set, write routes are unauthenticated")
	}

	// set swagger info
	docs.SwaggerInfo.Title = "Lost Watch Registry API"
	docs.SwaggerInfo.Version = "v0.1.0"

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(), corsMiddleware(cfg.CORSAllowedOrigins))

	api.RegisterRoutes(r, deps)

	// swagger UI route (embedded docs package) - ensure UI loads embedded /swagger/doc.json
	// Register the wildcard route first to avoid gin routing conflicts.
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	// ensure visiting /swagger goes to the UI index (temporary redirect)
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/swagger/index.html")
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server exit")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
}

// newNotifier builds the configured delivery channel and the function that
// releases it.
func newNotifier(cfg *config.Config) (notify.Notifier, func(), error) {
	switch cfg.Notifier {
	case "amqp":
		p, err := notify.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { p.Close() }, nil
	case "sendgrid":
		e := notify.NewEmailNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
		return e, func() {}, nil
	}
	return notify.LogNotifier{}, func() {}, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}
