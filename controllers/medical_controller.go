package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pregchat/services"
)

type MedicalController struct {
	records *services.RecordStore
}

func NewMedicalController(records *services.RecordStore) *MedicalController {
	return &MedicalController{records: records}
}

// GetMedicalData はGET /medical_data/:user_id
func (mc *MedicalController) GetMedicalData(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	patient, err := mc.records.FindPatient(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.Errorf("Error fetching medical data: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch medical data"})
		return
	}

	c.JSON(http.StatusOK, patient)
}

// UpdateMedicalData はPUT /medical_data/:user_id。渡されたフィールドだけ更新する。
func (mc *MedicalController) UpdateMedicalData(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	var updatedData map[string]interface{}
	if err := c.ShouldBindJSON(&updatedData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := mc.records.UpdatePatient(c.Request.Context(), userID, updatedData); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.Errorf("Error updating medical data: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update medical data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Medical data updated successfully"})
}

// GetResources はGET /resources。固定の記事・動画リンク集。
func (mc *MedicalController) GetResources(c *gin.Context) {
	resources := []gin.H{
		{"type": "article", "title": "Medline Plus - Pregnancy", "link": "https://magazine.medlineplus.gov/topic/pregnancy"},
		{"type": "article", "title": "Cleveland Clinic - Pregnancy", "link": "https://my.clevelandclinic.org/health/articles/pregnancy"},
		{"type": "article", "title": "Kids Health - Pregnancy", "link": "https://kidshealth.org/en/parents/preg-health.html"},
		{"type": "article", "title": "BMC Pregnancy - Article", "link": "https://bmcpregnancychildbirth.biomedcentral.com/articles/10.1186/s12884-021-04213-6"},
		{"type": "article", "title": "Fetal Development - Cleveland Clinic", "link": "https://my.clevelandclinic.org/health/articles/7247-fetal-development-stages-of-growth"},
		{"type": "article", "title": "Wiley Online Library", "link": "https://onlinelibrary.wiley.com/journal/7097"},
		{"type": "video", "title": "Pregnancy Video - YouTube", "link": "https://www.youtube.com/watch?v=KNEGPOum4pU"},
		{"type": "video", "title": "Pregnancy Video - YouTube", "link": "https://www.youtube.com/watch?v=s-Xpa5UZAZs"},
		{"type": "video", "title": "Pregnancy Video - YouTube", "link": "https://www.youtube.com/watch?v=_dVuHFdUN0c"},
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}
