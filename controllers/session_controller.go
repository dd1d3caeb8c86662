package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pregchat/models"
	"pregchat/services"
)

// SessionManager はセッション系ハンドラーが使うストア操作
type SessionManager interface {
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Rename(ctx context.Context, oldKey, newKey string) error
	ListUserSessions(ctx context.Context, userID string) ([]string, error)
	GetSessionDetail(ctx context.Context, key string) (models.SessionDetail, error)
	AllSessionKeys(ctx context.Context) ([]string, error)
}

type SessionController struct {
	sessions SessionManager
}

func NewSessionController(sessions SessionManager) *SessionController {
	return &SessionController{sessions: sessions}
}

// GetUserSessions はGET /sessions/:user_id。新しい順のキー一覧を返す。
func (sc *SessionController) GetUserSessions(c *gin.Context) {
	userID := c.Param("user_id")

	sessions, err := sc.sessions.ListUserSessions(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Error listing sessions: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSessionDetails はGET /session/:session_key
func (sc *SessionController) GetSessionDetails(c *gin.Context) {
	sessionKey := c.Param("session_key")

	detail, err := sc.sessions.GetSessionDetail(c.Request.Context(), sessionKey)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found."})
			return
		}
		logrus.Errorf("Error fetching session details: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching session details"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CreateSession はPOST /create-session。任意のキーへ生のレコードを保存する管理用API。
func (sc *SessionController) CreateSession(c *gin.Context) {
	var request struct {
		SessionID string          `json:"session_id" binding:"required"`
		Data      json.RawMessage `json:"data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.sessions.Put(c.Request.Context(), request.SessionID, request.Data); err != nil {
		logrus.Errorf("Error creating session: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session created", "session_id": request.SessionID})
}

// DisplayAllSessions はGET /display-sessions。ネームスペース内の全キーを返す。
func (sc *SessionController) DisplayAllSessions(c *gin.Context) {
	keys, err := sc.sessions.AllSessionKeys(c.Request.Context())
	if err != nil {
		logrus.Errorf("Error listing all sessions: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to fetch sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": keys})
}

// DeleteSession はDELETE /delete-session/:session_id
func (sc *SessionController) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := sc.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		logrus.Errorf("Error deleting session: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to delete session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted", "session_id": sessionID})
}

// RenameSession はPUT /rename-session。移動先が既にあれば上書きする。
func (sc *SessionController) RenameSession(c *gin.Context) {
	var request struct {
		OldSessionID string `json:"old_session_id" binding:"required"`
		NewSessionID string `json:"new_session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := sc.sessions.Rename(c.Request.Context(), request.OldSessionID, request.NewSessionID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		logrus.Errorf("Error renaming session: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to rename session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session renamed", "session_id": request.NewSessionID})
}
