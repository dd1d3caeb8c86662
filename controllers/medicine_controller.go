package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pregchat/models"
	"pregchat/services"
)

type MedicineController struct {
	records *services.RecordStore
}

func NewMedicineController(records *services.RecordStore) *MedicineController {
	return &MedicineController{records: records}
}

// GetMedicines はGET /medicines/:user_id
func (mc *MedicineController) GetMedicines(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
		return
	}

	medicines, err := mc.records.ListMedicines(c.Request.Context(), userID)
	if err != nil {
		logrus.Errorf("Error fetching medicines: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch medicines"})
		return
	}
	if len(medicines) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No medicines found"})
		return
	}

	c.JSON(http.StatusOK, medicines)
}

// AddMedicine はPOST /medicines
func (mc *MedicineController) AddMedicine(c *gin.Context) {
	var request struct {
		PatientID    int    `json:"patient_id" binding:"required"`
		MedicineName string `json:"medicine_name" binding:"required"`
		Dosage       string `json:"dosage" binding:"required"`
		Frequency    string `json:"frequency" binding:"required"`
		ReminderTime string `json:"reminder_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	medicine := models.MedicineRequest{
		PatientID:    request.PatientID,
		MedicineName: request.MedicineName,
		Dosage:       request.Dosage,
		Frequency:    request.Frequency,
		ReminderTime: request.ReminderTime,
	}
	if err := mc.records.AddMedicine(c.Request.Context(), medicine); err != nil {
		logrus.Errorf("Error adding medicine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Medicine added successfully"})
}

// DeleteMedicine はDELETE /medicines/:medicine_id
func (mc *MedicineController) DeleteMedicine(c *gin.Context) {
	medicineID, err := strconv.Atoi(c.Param("medicine_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "medicine_id must be an integer"})
		return
	}

	if err := mc.records.DeleteMedicine(c.Request.Context(), medicineID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Medicine not found"})
			return
		}
		logrus.Errorf("Error deleting medicine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete medicine"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Medicine deleted successfully"})
}
