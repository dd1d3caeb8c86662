package models

// Patient は妊婦の医療プロフィール（patient_dataテーブル）
type Patient struct {
	ID                  int     `json:"id"`
	Name                string  `json:"name"`
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
	FetalHeartbeat      int     `json:"fetal_heartbeat"`
	UrineTestAlbumin    string  `json:"urine_test_albumin"`
	UrineTestSugar      bool    `json:"urine_test_sugar"`
	VDRL                string  `json:"vdrl"`
	HRsAG               string  `json:"hrsag"`
	HighRiskPregnancy   bool    `json:"high_risk_pregnancy"`
	Password            string  `json:"-"`
}
