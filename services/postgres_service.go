package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"pregchat/models"
)

// RecordStore は患者・ユーザー・フィードバック・服薬のリレーショナルストア
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore はPostgresへ接続し疎通確認まで行います。
// 接続できない場合はエラーを返すので、起動時はそこで落とすこと。
func NewRecordStore(postgresURI string) (*RecordStore, error) {
	connStr := postgresURI
	if !strings.Contains(postgresURI, "sslmode=") {
		if strings.Contains(postgresURI, "?") {
			connStr += "&sslmode=disable"
		} else {
			connStr += "?sslmode=disable"
		}
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %v", err)
	}

	// 接続テスト
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %v", err)
	}

	return &RecordStore{db: db}, nil
}

func (rs *RecordStore) Close() error {
	return rs.db.Close()
}

// EnsureSchema は必要なテーブルを作成します（既にあれば何もしない）
func (rs *RecordStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS patient_data (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			age INTEGER NOT NULL,
			pregnancies INTEGER,
			tt_vaccination TEXT,
			gestational_age DOUBLE PRECISION,
			gestational_age_units TEXT,
			weight DOUBLE PRECISION,
			weight_unit TEXT,
			height DOUBLE PRECISION,
			height_unit TEXT,
			blood_pressure TEXT,
			anemia TEXT,
			jaundice TEXT,
			fetal_position TEXT,
			fetal_movement TEXT,
			fetal_heartbeat INTEGER,
			urine_test_albumin TEXT,
			urine_test_sugar BOOLEAN,
			vdrl TEXT,
			hrsag TEXT,
			high_risk_pregnancy BOOLEAN,
			password TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT,
			password TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL,
			message TEXT NOT NULL,
			status TEXT DEFAULT 'pending'
		)`,
		`CREATE TABLE IF NOT EXISTS medicine_requests (
			id SERIAL PRIMARY KEY,
			patient_id INTEGER NOT NULL REFERENCES patient_data(id) ON DELETE CASCADE,
			medicine_name TEXT NOT NULL,
			dosage TEXT NOT NULL,
			frequency TEXT NOT NULL,
			reminder_time TIME NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := rs.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %v", err)
		}
	}
	return nil
}

const patientColumns = `id, name, age, pregnancies, tt_vaccination, gestational_age, gestational_age_units, weight, weight_unit, height, height_unit, blood_pressure, anemia, jaundice, fetal_position, fetal_movement, fetal_heartbeat, urine_test_albumin, urine_test_sugar, vdrl, hrsag, high_risk_pregnancy, password`

func scanPatient(row *sql.Row) (models.Patient, error) {
	var p models.Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.Age, &p.Pregnancies, &p.TTVaccination,
		&p.GestationalAge, &p.GestationalAgeUnits,
		&p.Weight, &p.WeightUnit, &p.Height, &p.HeightUnit,
		&p.BloodPressure, &p.Anemia, &p.Jaundice,
		&p.FetalPosition, &p.FetalMovement, &p.FetalHeartbeat,
		&p.UrineTestAlbumin, &p.UrineTestSugar,
		&p.VDRL, &p.HRsAG, &p.HighRiskPregnancy, &p.Password,
	)
	if err == sql.ErrNoRows {
		return models.Patient{}, ErrNotFound
	}
	if err != nil {
		return models.Patient{}, fmt.Errorf("row scan failed: %v", err)
	}
	return p, nil
}

// FindPatient は患者プロフィールを1件取得します。いなければErrNotFound。
func (rs *RecordStore) FindPatient(ctx context.Context, userID int) (models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patient_data WHERE id = $1`
	return scanPatient(rs.db.QueryRowContext(ctx, query, userID))
}

// CreatePatient は患者とログイン用ユーザーを同一IDで登録し、そのIDを返します。
// IDは101から自動採番する。p.Passwordにはハッシュ済みの値を渡すこと。
func (rs *RecordStore) CreatePatient(ctx context.Context, p models.Patient) (int, error) {
	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	// 最後の患者ID + 1、最初の患者は101
	var newID int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 100) + 1 FROM patient_data`).Scan(&newID); err != nil {
		return 0, fmt.Errorf("failed to allocate patient id: %v", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO patient_data (`+patientColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		newID, p.Name, p.Age, p.Pregnancies, p.TTVaccination,
		p.GestationalAge, p.GestationalAgeUnits,
		p.Weight, p.WeightUnit, p.Height, p.HeightUnit,
		p.BloodPressure, p.Anemia, p.Jaundice,
		p.FetalPosition, p.FetalMovement, p.FetalHeartbeat,
		p.UrineTestAlbumin, p.UrineTestSugar,
		p.VDRL, p.HRsAG, p.HighRiskPregnancy, p.Password,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert patient: %v", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password) VALUES ($1, $2, $3, $4)`,
		newID, p.Name, "", p.Password,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit signup: %v", err)
	}
	return newID, nil
}

// FindUser はログイン用ユーザーを1件取得します
func (rs *RecordStore) FindUser(ctx context.Context, userID int) (models.User, error) {
	var u models.User
	err := rs.db.QueryRowContext(ctx,
		`SELECT id, username, COALESCE(email, ''), password FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("row scan failed: %v", err)
	}
	return u, nil
}

// 更新を許可するカラム（リクエストJSONのキー名と一致）
var updatablePatientColumns = map[string]bool{
	"name": true, "age": true, "pregnancies": true, "tt_vaccination": true,
	"gestational_age": true, "gestational_age_units": true,
	"weight": true, "weight_unit": true, "height": true, "height_unit": true,
	"blood_pressure": true, "anemia": true, "jaundice": true,
	"fetal_position": true, "fetal_movement": true, "fetal_heartbeat": true,
	"urine_test_albumin": true, "urine_test_sugar": true,
	"vdrl": true, "hrsag": true, "high_risk_pregnancy": true,
}

// UpdatePatient は渡されたフィールドだけを部分更新します。
// 未知のフィールドは黙って無視する（元実装のhasattr相当）。
func (rs *RecordStore) UpdatePatient(ctx context.Context, userID int, fields map[string]interface{}) error {
	if _, err := rs.FindPatient(ctx, userID); err != nil {
		return err
	}

	columns := make([]string, 0, len(fields))
	for name := range fields {
		if updatablePatientColumns[name] {
			columns = append(columns, name)
		}
	}
	if len(columns) == 0 {
		return nil
	}
	sort.Strings(columns)

	setClauses := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for i, name := range columns {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", name, i+1))
		args = append(args, fields[name])
	}
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE patient_data SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args))
	if _, err := rs.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update patient: %v", err)
	}
	return nil
}

// ListMedicines は患者の服薬リマインダーを全件返します
func (rs *RecordStore) ListMedicines(ctx context.Context, patientID int) ([]models.MedicineRequest, error) {
	rows, err := rs.db.QueryContext(ctx, `
		SELECT id, patient_id, medicine_name, dosage, frequency, reminder_time::text
		FROM medicine_requests WHERE patient_id = $1 ORDER BY id`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medicines: %v", err)
	}
	defer rows.Close()

	medicines := make([]models.MedicineRequest, 0)
	for rows.Next() {
		var m models.MedicineRequest
		if err := rows.Scan(&m.ID, &m.PatientID, &m.MedicineName, &m.Dosage, &m.Frequency, &m.ReminderTime); err != nil {
			return nil, fmt.Errorf("row scan failed: %v", err)
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}

func (rs *RecordStore) AddMedicine(ctx context.Context, m models.MedicineRequest) error {
	_, err := rs.db.ExecContext(ctx, `
		INSERT INTO medicine_requests (patient_id, medicine_name, dosage, frequency, reminder_time)
		VALUES ($1, $2, $3, $4, $5)`,
		m.PatientID, m.MedicineName, m.Dosage, m.Frequency, m.ReminderTime)
	if err != nil {
		return fmt.Errorf("failed to insert medicine: %v", err)
	}
	return nil
}

func (rs *RecordStore) DeleteMedicine(ctx context.Context, medicineID int) error {
	result, err := rs.db.ExecContext(ctx, `DELETE FROM medicine_requests WHERE id = $1`, medicineID)
	if err != nil {
		return fmt.Errorf("failed to delete medicine: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete medicine: %v", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFeedback はフィードバックをpendingステータスで登録します
func (rs *RecordStore) AddFeedback(ctx context.Context, userID int, message string) error {
	_, err := rs.db.ExecContext(ctx,
		`INSERT INTO feedback (user_id, message, status) VALUES ($1, $2, 'pending')`,
		userID, message)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %v", err)
	}
	return nil
}

func (rs *RecordStore) ListFeedback(ctx context.Context, userID int) ([]models.Feedback, error) {
	rows, err := rs.db.QueryContext(ctx,
		`SELECT id, user_id, message, status FROM feedback WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %v", err)
	}
	defer rows.Close()

	items := make([]models.Feedback, 0)
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Message, &f.Status); err != nil {
			return nil, fmt.Errorf("row scan failed: %v", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
