package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pregchat/services"
)

type FeedbackController struct {
	records *services.RecordStore
}

func NewFeedbackController(records *services.RecordStore) *FeedbackController {
	return &FeedbackController{records: records}
}

// SubmitFeedback はPOST /feedback
func (fc *FeedbackController) SubmitFeedback(c *gin.Context) {
	var request struct {
		UserID  int    `json:"user_id" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := fc.records.AddFeedback(c.Request.Context(), request.UserID, request.Message); err != nil {
		logrus.Errorf("Error saving feedback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted successfully"})
}

// GetFeedback はGET /feedback/:user_id
func (fc *FeedbackController) GetFeedback(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	items, err := fc.records.ListFeedback(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Error fetching feedback: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": items})
}
