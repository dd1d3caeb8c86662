package models

// MedicineRequest は服薬リマインダーの1件分
type MedicineRequest struct {
	ID           int    `json:"id"`
	PatientID    int    `json:"patient_id"`
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	ReminderTime string `json:"reminder_time"`
}
