package api

import (
	"net/http"

	"lostwatch/internal/auth"
	"lostwatch/internal/handlers"
	"lostwatch/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the routes are bound to.
type Deps struct {
	Service *registry.Service
	// Verifier gates the write and lookup routes; nil disables the gate.
	Verifier auth.TokenVerifier
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	svc := d.Service
	gate := auth.RequireBearer(d.Verifier)

	submit := func(c *gin.Context) { handlers.SubmitReportHandler(c, svc) }
	list := func(c *gin.Context) { handlers.ListReportsHandler(c, svc) }
	stats := func(c *gin.Context) { handlers.StatsHandler(c, svc) }

	r.POST("/reports", gate, submit)
	r.GET("/reports", list)
	r.GET("/reports/lookup", gate, func(c *gin.Context) {
		handlers.LookupHandler(c, svc)
	})
	r.GET("/stats", stats)

	// paths the first public site used
	legacy := r.Group("/api")
	{
		legacy.POST("/watches", gate, submit)
		legacy.GET("/watches", list)
		legacy.GET("/stats", stats)
		legacy.POST("/found", gate, func(c *gin.Context) {
			handlers.SubmitFoundHandler(c, svc)
		})
		legacy.POST("/lost", gate, func(c *gin.Context) {
			handlers.LegacyLookupHandler(c, svc)
		})
	}

	v1 := r.Group("/v1")
	{
		// 测试服务器存活用的接口
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		// redirect the legacy openapi path to the Swagger UI index page (temporary redirect to avoid client caching)
		v1.GET("/openapi.json", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/swagger/index.html")
		})
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// Note: Swagger UI is served by gin-swagger at /swagger/*any (embedded docs)
}
