package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pregchat/services"
)

// WellnessService は補助系（赤ちゃんとの対話・パートナー向け提案・
// 期別チェックリスト）の生成操作
type WellnessService interface {
	TalkToBaby(ctx context.Context, userID int, message string) (services.BabyReply, error)
	PartnerTips(ctx context.Context, userID int) (string, error)
	TrimesterChecklist(ctx context.Context, userID int) (services.ChecklistResult, error)
}

type WellnessController struct {
	wellness WellnessService
}

func NewWellnessController(wellness WellnessService) *WellnessController {
	return &WellnessController{wellness: wellness}
}

// TalkToBaby はPOST /talk-to-baby
func (wc *WellnessController) TalkToBaby(c *gin.Context) {
	var request struct {
		UserID  int    `form:"user_id" binding:"required"`
		Message string `form:"message" binding:"required"`
	}
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and message are required"})
		return
	}

	reply, err := wc.wellness.TalkToBaby(c.Request.Context(), request.UserID, request.Message)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.Errorf("Error generating baby response: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating baby response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"baby_response": reply.Response,
		"detected_mood": reply.Mood,
		"username":      reply.Username,
	})
}

// PartnerTips はGET /partner-tips/:user_id
func (wc *WellnessController) PartnerTips(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	tips, err := wc.wellness.PartnerTips(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.Errorf("Error generating partner tips: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate partner tips"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"partner_suggestions": tips})
}

// TrimesterChecklist はGET /trimester-checklist/:user_id
func (wc *WellnessController) TrimesterChecklist(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	result, err := wc.wellness.TrimesterChecklist(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.Errorf("Error generating checklist: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate checklist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trimester": result.Trimester, "checklist": result.Checklist})
}

// EmergencyLaborChecklist はGET /emergency-labor-checklist。
// 出産入院時の持ち物の固定リスト。
func (wc *WellnessController) EmergencyLaborChecklist(c *gin.Context) {
	items := []gin.H{
		{"item": "Identification and Insurance Information"},
		{"item": "Birth Plan (if you have one)"},
		{"item": "Comfortable Clothes for Labor (e.g., loose gown)"},
		{"item": "Socks (labor ward can be cold)"},
		{"item": "Slippers or Comfortable Shoes"},
		{"item": "Lip Balm (for dry lips during labor)"},
		{"item": "Hair Ties or Clips"},
		{"item": "Snacks and Drinks for Labor (as allowed by your doctor)"},
		{"item": "Phone and Charger"},
		{"item": "Camera or Video Recorder (if desired)"},
		{"item": "Toiletries (toothbrush, toothpaste, face wash, etc.)"},
		{"item": "Change of Clothes for After Birth"},
		{"item": "Nursing Bra (if planning to breastfeed)"},
		{"item": "Nursing Pads"},
		{"item": "Comfortable Underwear (consider disposable ones)"},
		{"item": "Going-home Outfit for Baby"},
		{"item": "Car Seat (installed in your vehicle)"},
		{"item": "Baby Blanket"},
	}
	c.JSON(http.StatusOK, items)
}
