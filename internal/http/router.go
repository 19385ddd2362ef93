package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	booksController := NewBooksController(cfg.Catalogue)
	importController := NewImportController(cfg.Catalogue, cfg.ImportQueue, cfg.ImportSchedule, cfg.ImportHistory)

	api := router.Group("/api")
	{
		api.GET("/books", booksController.List)
		api.GET("/books/stats", booksController.Stats)
		api.POST("/books", booksController.Add)
		api.PUT("/books/:id", booksController.Edit)
		api.DELETE("/books/:id", booksController.Remove)
		api.POST("/books/:id/advance", booksController.Advance)

		api.POST("/import", importController.Run)
		api.GET("/import/status", importController.Status)
		api.GET("/import/runs", importController.Runs)
		api.GET("/import/tasks/:id", importController.TaskStatus)
	}

	return router
}
