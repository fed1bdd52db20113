package routes

import (
	"errors"
	"net/http"

	"uet-duck-server/internal/chat"
	"uet-duck-server/internal/hearts"
	"uet-duck-server/internal/logger"
	"uet-duck-server/middleware"
	"uet-duck-server/models"
	"uet-duck-server/utils"

	"github.com/gin-gonic/gin"
)

func SetupChatRoutes(router *gin.Engine, orchestrator *chat.Orchestrator, authMiddleware *middleware.AuthMiddleware) {
	router.POST("/chat", authMiddleware.RequireAuth(), func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Prompt is required.", nil)
			return
		}

		reply, err := orchestrator.Ask(c.Request.Context(), middleware.GetUserID(c), req.Prompt)
		if err != nil {
			respondChatError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{Response: reply})
	})
}

// respondChatError maps pipeline errors onto status codes. Anything not in
// the taxonomy is an upstream or storage failure and stays a 500 with the
// detail kept out of the response body.
func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrInvalidRequest):
		utils.RespondWithBadRequest(c, "Prompt is required.", nil)
	case errors.Is(err, chat.ErrUnauthorized), errors.Is(err, hearts.ErrUserNotFound):
		utils.RespondWithUnauthorized(c, "Authentication required.")
	case errors.Is(err, hearts.ErrNoHearts):
		utils.RespondWithForbidden(c, "No remaining questions. Please wait for your hearts to recharge.")
	default:
		logger.Error("Chat request failed",
			"request_id", middleware.GetRequestID(c), "error", err.Error())
		utils.RespondWithInternalError(c, "An error occurred on the server.", nil)
	}
}
