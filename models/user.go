package models

// User はログイン用のアカウント（usersテーブル、IDはPatientと共通）
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

type Feedback struct {
	ID      int    `json:"id"`
	UserID  int    `json:"user_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
