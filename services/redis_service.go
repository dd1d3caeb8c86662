package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"pregchat/models"
)

// キースキーム: {namespace}:session:user:{user_id}:{turn_id}
const sessionNamespace = "pregchat"

const (
	defaultTitle    = "Untitled Session"
	defaultUsername = "Unknown"
	defaultQuestion = "No question recorded"
	defaultAnswer   = "No response"
)

// SessionKey は1ターン分のレコードを保存するキーを組み立てます
func SessionKey(userID, turnID string) string {
	return fmt.Sprintf("%s:session:user:%s:%s", sessionNamespace, userID, turnID)
}

// UserSessionPrefix は1ユーザーの全ターンを列挙するためのプレフィックス
func UserSessionPrefix(userID string) string {
	return fmt.Sprintf("%s:session:user:%s:", sessionNamespace, userID)
}

func chatLogKey(userID string) string {
	return fmt.Sprintf("%s:chat:%s", sessionNamespace, userID)
}

// SessionStore はセッションレコードを保持するキーバリューストア。
// クライアントは起動時に一度だけ生成し、ここへ注入する。
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Put は既存値の有無にかかわらず上書き保存します。TTLは付けない。
func (s *SessionStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get は1キーの値を返します。未登録（または削除済み）ならErrNotFound。
func (s *SessionStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return value, nil
}

// ListKeys はプレフィックスを共有する全キーを返します。
// 返り値の並び順はストア依存で、時刻順・辞書順のどちらも保証しない。
func (s *SessionStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.rdb.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return keys, nil
}

// Delete はキーを削除します。存在しなければErrNotFound。
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	deleted, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// Rename はoldKeyの値をnewKeyへ移します。newKeyが既に存在する場合は
// Putと同じ上書きセマンティクスで置き換える（RedisのRENAMEと同じ）。
// oldKeyが存在しなければErrNotFound。
func (s *SessionStore) Rename(ctx context.Context, oldKey, newKey string) error {
	err := s.rdb.Rename(ctx, oldKey, newKey).Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "no such key") {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// SaveTurn は1ターン分のレコードを新しいキーで保存し、そのキーを返します。
// ターンIDは呼び出しごとにUUIDを生成するので、キーが衝突することはない。
func (s *SessionStore) SaveTurn(ctx context.Context, userID string, record models.SessionRecord) (string, error) {
	if record.Question == "" {
		record.Question = defaultQuestion
	}
	record.CreationTimestamp = SessionTimestamp()

	turnID := uuid.New().String()
	key := SessionKey(userID, turnID)

	data, err := json.Marshal(record)
	if err != nil {
		return key, fmt.Errorf("failed to marshal session record: %v", err)
	}
	if err := s.Put(ctx, key, data); err != nil {
		return key, err
	}
	return key, nil
}

// ListUserSessions は1ユーザーの全セッションキーを新しい順で返します。
// ストアの列挙順は信用できないため、各レコードのcreation_timestampを
// 取得して明示的にソートする。列挙とGetの間に消えたキーは読み飛ばす。
func (s *SessionStore) ListUserSessions(ctx context.Context, userID string) ([]string, error) {
	keys, err := s.ListKeys(ctx, UserSessionPrefix(userID))
	if err != nil {
		return nil, err
	}

	type keyedSession struct {
		key       string
		timestamp string
	}
	sessions := make([]keyedSession, 0, len(keys))
	for _, key := range keys {
		data, err := s.Get(ctx, key)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		var record models.SessionRecord
		if err := json.Unmarshal(data, &record); err != nil {
			logrus.Warnf("Skipping unparsable session %s: %v", key, err)
			continue
		}
		sessions = append(sessions, keyedSession{key: key, timestamp: record.CreationTimestamp})
	}

	// タイムスタンプ形式は辞書順＝時刻順になるので文字列比較で足りる
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].timestamp != sessions[j].timestamp {
			return sessions[i].timestamp > sessions[j].timestamp
		}
		return sessions[i].key < sessions[j].key
	})

	sorted := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		sorted = append(sorted, sess.key)
	}
	return sorted, nil
}

// GetSessionDetail は1セッションを取得して表示用の形に整えます
func (s *SessionStore) GetSessionDetail(ctx context.Context, key string) (models.SessionDetail, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return models.SessionDetail{}, err
	}

	var record models.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return models.SessionDetail{}, fmt.Errorf("failed to parse session record: %v", err)
	}

	detail := models.SessionDetail{
		SessionKey: key,
		Title:      record.Title,
		Username:   record.Username,
		Question:   record.Question,
		Answer:     record.Response,
		Timestamp:  record.CreationTimestamp,
	}
	if detail.Title == "" {
		detail.Title = defaultTitle
	}
	if detail.Username == "" {
		detail.Username = defaultUsername
	}
	if detail.Question == "" {
		detail.Question = defaultQuestion
	}
	if detail.Answer == "" {
		detail.Answer = defaultAnswer
	}
	return detail, nil
}

// AllSessionKeys はネームスペース内の全セッションキーを返します（管理API用）
func (s *SessionStore) AllSessionKeys(ctx context.Context) ([]string, error) {
	return s.ListKeys(ctx, sessionNamespace+":session:")
}

// AppendChatLog はユーザーごとの会話ログ（Redisリスト）へ1往復分を追記します
func (s *SessionStore) AppendChatLog(ctx context.Context, userID, question, response string) error {
	entry, err := json.Marshal(map[string]string{
		"question":  question,
		"response":  response,
		"timestamp": GetCurrentTimestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal chat log entry: %v", err)
	}
	if err := s.rdb.RPush(ctx, chatLogKey(userID), entry).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping はストアへの疎通確認。起動時に失敗したらプロセスを落とすこと。
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
