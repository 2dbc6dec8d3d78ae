package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"twotier-board/internal/app"
	"twotier-board/internal/config"
	"twotier-board/internal/model"
)

type BoardHandler struct {
	messages *app.MessageService
	appCfg   config.AppConfig
}

type boardPage struct {
	AppName     string
	Environment string
	Messages    []model.Message
}

type errorPage struct {
	AppName string
	Message string
}

type postMessageForm struct {
	Message string `form:"message"`
}

func NewBoardHandler(messages *app.MessageService, appCfg config.AppConfig) *BoardHandler {
	return &BoardHandler{messages: messages, appCfg: appCfg}
}

func (h *BoardHandler) Index(c *gin.Context) {
	messages, err := h.messages.ListMessages(c.Request.Context())
	if err != nil {
		h.renderError(c, "list messages failed", err)
		return
	}

	c.HTML(http.StatusOK, "index.html", boardPage{
		AppName:     h.appCfg.Name,
		Environment: h.appCfg.Env,
		Messages:    messages,
	})
}

// Post follows post/redirect/get: blank input is dropped silently and the
// browser always lands back on GET /.
func (h *BoardHandler) Post(c *gin.Context) {
	var form postMessageForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if _, err := h.messages.PostMessage(c.Request.Context(), form.Message); err != nil && !errors.Is(err, app.ErrMessageEmpty) {
		h.renderError(c, "post message failed", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (h *BoardHandler) renderError(c *gin.Context, op string, err error) {
	log.Printf("%s: %v", op, err)
	_ = c.Error(err)
	c.HTML(http.StatusInternalServerError, "error.html", errorPage{
		AppName: h.appCfg.Name,
		Message: "The message store is unavailable. Please try again later.",
	})
}
