package models

// SessionRecord は1ターン（質問と応答の1往復）の永続レコード。
// Redisに保存されるJSONそのもので、作成後は更新も削除もされない。
type SessionRecord struct {
	Response          string `json:"response"`
	Username          string `json:"username"`
	Question          string `json:"question"`
	CreationTimestamp string `json:"creation_timestamp"`
	Title             string `json:"title,omitempty"`
}

// SessionDetail は表示用に整形した1セッション分の情報
type SessionDetail struct {
	SessionKey string `json:"session_key"`
	Title      string `json:"title"`
	Username   string `json:"username"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Timestamp  string `json:"timestamp"`
}
