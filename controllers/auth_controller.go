package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pregchat/models"
	"pregchat/services"
)

// SignupRequest は登録フォームの入力。真偽値系は文字列で受けて
// こちらで解釈する（フロントがそういう形で送ってくる）。
type SignupRequest struct {
	Name                string  `json:"name" binding:"required"`
	Age                 int     `json:"age"`
	Pregnancies         int     `json:"pregnancies"`
	TTVaccination       string  `json:"tt_vaccination"`
	GestationalAge      float64 `json:"gestational_age"`
	GestationalAgeUnits string  `json:"gestational_age_units"`
	Weight              float64 `json:"weight"`
	WeightUnit          string  `json:"weight_unit"`
	Height              float64 `json:"height"`
	HeightUnit          string  `json:"height_unit"`
	BloodPressure       string  `json:"blood_pressure"`
	Anemia              string  `json:"anemia"`
	Jaundice            string  `json:"jaundice"`
	FetalPosition       string  `json:"fetal_position"`
	FetalMovement       string  `json:"fetal_movement"`
	FetalHeartbeat      string  `json:"fetal_heartbeat"`
	UrineTestAlbumin    string  `json:"urine_test_albumin"`
	UrineTestSugar      string  `json:"urine_test_sugar"`
	VDRL                string  `json:"vdrl"`
	HRsAG               string  `json:"hrsag"`
	HighRiskPregnancy   string  `json:"high_risk_pregnancy"`
	Password            string  `json:"password" binding:"required"`
	ConfirmPassword     string  `json:"confirm_password" binding:"required"`
}

type AuthController struct {
	records *services.RecordStore
}

func NewAuthController(records *services.RecordStore) *AuthController {
	return &AuthController{records: records}
}

// Signup はPOST /signup。患者とログイン用ユーザーを同一IDで登録する。
func (ac *AuthController) Signup(c *gin.Context) {
	var request SignupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logrus.Warnf("Error binding signup request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// パスワード不一致は書き込み前に弾く
	if request.Password != request.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.Errorf("Error hashing password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	fetalHeartbeat, _ := strconv.Atoi(request.FetalHeartbeat)

	patient := models.Patient{
		Name:                request.Name,
		Age:                 request.Age,
		Pregnancies:         request.Pregnancies,
		TTVaccination:       request.TTVaccination,
		GestationalAge:      request.GestationalAge,
		GestationalAgeUnits: defaultString(request.GestationalAgeUnits, "week"),
		Weight:              request.Weight,
		WeightUnit:          defaultString(request.WeightUnit, "kg"),
		Height:              request.Height,
		HeightUnit:          defaultString(request.HeightUnit, "cm"),
		BloodPressure:       request.BloodPressure,
		Anemia:              request.Anemia,
		Jaundice:            request.Jaundice,
		FetalPosition:       request.FetalPosition,
		FetalMovement:       request.FetalMovement,
		FetalHeartbeat:      fetalHeartbeat,
		UrineTestAlbumin:    request.UrineTestAlbumin,
		UrineTestSugar:      strToBool(request.UrineTestSugar),
		VDRL:                request.VDRL,
		HRsAG:               request.HRsAG,
		HighRiskPregnancy:   strToBool(request.HighRiskPregnancy),
		Password:            string(hashed),
	}

	newID, err := ac.records.CreatePatient(c.Request.Context(), patient)
	if err != nil {
		logrus.Errorf("Error creating patient: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Your Patient ID is %d. Please use it to log in.", newID),
	})
}

// Login はPOST /login。患者IDとパスワードで認証する。
func (ac *AuthController) Login(c *gin.Context) {
	var request struct {
		UserID   int    `form:"user_id" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and password are required"})
		return
	}

	user, err := ac.records.FindUser(c.Request.Context(), request.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID or password"})
			return
		}
		logrus.Errorf("Error finding user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_name": user.Username, "user_id": user.ID})
}

func strToBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
