package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"twotier-board/internal/bootstrap"
	"twotier-board/internal/transport/http/handler"
	"twotier-board/web"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse page templates failed: %w", err)
	}
	router.SetHTMLTemplate(templates)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/health", healthHandler.Live)
	router.GET("/readyz", healthHandler.Ready)

	boardHandler := handler.NewBoardHandler(app.Messages, app.Config.App)
	router.GET("/", boardHandler.Index)
	router.POST("/", boardHandler.Post)

	return router, nil
}
