package transport

import (
	"html/template"

	"github.com/ds124wfegd/electrorescue/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	Templates     *template.Template
	BodyLimit     int64
	SecureCookies bool
}

func InitRoutes(h *AnalysisHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "electrorescue",
		})
	})

	if opts.Templates != nil {
		router.SetHTMLTemplate(opts.Templates)
	}

	app := router.Group("/")
	app.Use(middleware.Session(opts.SecureCookies), middleware.BodyLimit(opts.BodyLimit))
	{
		app.GET("/", h.Index)
		app.POST("/analyze", h.Analyze)
		app.POST("/reset", h.Reset)
		app.POST("/retry", h.Retry)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Session(opts.SecureCookies), middleware.BodyLimit(opts.BodyLimit))
	{
		api.GET("/state", h.GetState)
		api.POST("/analyze", h.AnalyzeJSON)
	}

	return router
}
