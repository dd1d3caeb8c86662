package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pregchat/services"
)

// ChatOrchestrator はチャットハンドラーが使う操作
type ChatOrchestrator interface {
	HandleTurn(ctx context.Context, userID int, message string) (services.TurnResult, error)
}

type ChatController struct {
	chat ChatOrchestrator
}

func NewChatController(chat ChatOrchestrator) *ChatController {
	return &ChatController{chat: chat}
}

// HandleChat はPOST /chat。1ターン処理して履歴ごと返す。
func (cc *ChatController) HandleChat(c *gin.Context) {
	var request struct {
		UserID  int    `form:"user_id" binding:"required"`
		Message string `form:"message" binding:"required"`
	}

	if err := c.ShouldBind(&request); err != nil {
		logrus.Warnf("Error binding chat request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and message are required"})
		return
	}

	result, err := cc.chat.HandleTurn(c.Request.Context(), request.UserID, request.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrSaveConversation):
			// 生成はできたが履歴に残せなかったケース。生成失敗とは別扱い。
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save conversation"})
		default:
			logrus.Errorf("Error handling chat turn: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":     result.Response,
		"username":     result.Username,
		"session_data": result.Sessions,
	})
}
