package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pregchat/models"
)

type fakePatientStore struct {
	patients map[int]models.Patient
}

func (f *fakePatientStore) FindPatient(_ context.Context, userID int) (models.Patient, error) {
	p, ok := f.patients[userID]
	if !ok {
		return models.Patient{}, ErrNotFound
	}
	return p, nil
}

type fakeGenerator struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ GenerationConfig) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", fmt.Errorf("no scripted reply")
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type failingTurnStore struct{}

func (failingTurnStore) SaveTurn(context.Context, string, models.SessionRecord) (string, error) {
	return "pregchat:session:user:101:dead", fmt.Errorf("%w: connection refused", ErrStoreUnavailable)
}
func (failingTurnStore) ListUserSessions(context.Context, string) ([]string, error) {
	return nil, fmt.Errorf("%w: connection refused", ErrStoreUnavailable)
}
func (failingTurnStore) AppendChatLog(context.Context, string, string, string) error {
	return nil
}

func ashaStore() *fakePatientStore {
	return &fakePatientStore{patients: map[int]models.Patient{
		101: {
			ID:                  101,
			Name:                "Asha",
			Age:                 28,
			GestationalAge:      20,
			GestationalAgeUnits: "week",
			WeightUnit:          "kg",
			HeightUnit:          "cm",
		},
	}}
}

func newChatServiceWithRedis(t *testing.T, records PatientFinder, genai Generator) (*ChatService, *SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	sessions := NewSessionStore(rdb)
	return NewChatService(records, sessions, genai, 5*time.Second), sessions
}

func TestHandleTurnPersistsExactlyOneRecord(t *testing.T) {
	genai := &fakeGenerator{replies: []string{"Fatigue is common at 20 weeks; rest when you can."}}
	cs, sessions := newChatServiceWithRedis(t, ashaStore(), genai)
	ctx := context.Background()

	result, err := cs.HandleTurn(ctx, 101, "Is it normal to feel tired?")
	require.NoError(t, err)

	assert.Equal(t, "Fatigue is common at 20 weeks; rest when you can.", result.Response)
	assert.Equal(t, "Asha", result.Username)
	require.Len(t, result.Sessions, 1)
	assert.Regexp(t, `^pregchat:session:user:101:`, result.Sessions[0])

	// レコードが実際に1件だけ書かれていること
	keys, err := sessions.ListKeys(ctx, UserSessionPrefix("101"))
	require.NoError(t, err)
	require.Len(t, keys, 1)

	data, err := sessions.Get(ctx, keys[0])
	require.NoError(t, err)
	var record models.SessionRecord
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "Is it normal to feel tired?", record.Question)
	assert.Equal(t, "Fatigue is common at 20 weeks; rest when you can.", record.Response)
	assert.Equal(t, "Asha", record.Username)
}

func TestHandleTurnRepeatedCallsUseFreshKeys(t *testing.T) {
	genai := &fakeGenerator{replies: []string{"reply"}}
	cs, sessions := newChatServiceWithRedis(t, ashaStore(), genai)
	ctx := context.Background()

	_, err := cs.HandleTurn(ctx, 101, "first")
	require.NoError(t, err)
	_, err = cs.HandleTurn(ctx, 101, "second")
	require.NoError(t, err)

	keys, err := sessions.ListKeys(ctx, UserSessionPrefix("101"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestHandleTurnUnknownUserWritesNothing(t *testing.T) {
	genai := &fakeGenerator{replies: []string{"should never be used"}}
	cs, sessions := newChatServiceWithRedis(t, ashaStore(), genai)
	ctx := context.Background()

	_, err := cs.HandleTurn(ctx, 999, "hello?")
	assert.ErrorIs(t, err, ErrNotFound)

	// 生成サービスは呼ばれず、レコードも書かれない
	assert.Empty(t, genai.prompts)
	keys, err := sessions.ListKeys(ctx, "pregchat:session:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestHandleTurnGenerationFailureFallsBack(t *testing.T) {
	genai := &fakeGenerator{err: fmt.Errorf("model overloaded")}
	cs, sessions := newChatServiceWithRedis(t, ashaStore(), genai)
	ctx := context.Background()

	result, err := cs.HandleTurn(ctx, 101, "Is it normal to feel tired?")
	require.NoError(t, err)
	assert.Equal(t, "I'm unable to generate a response at the moment.", result.Response)

	// フォールバック文でもターンは履歴に残る
	keys, err := sessions.ListKeys(ctx, UserSessionPrefix("101"))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	data, err := sessions.Get(ctx, keys[0])
	require.NoError(t, err)
	var record models.SessionRecord
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "I'm unable to generate a response at the moment.", record.Response)
}

func TestHandleTurnEmptyGenerationFallsBack(t *testing.T) {
	genai := &fakeGenerator{replies: []string{"   "}}
	cs, _ := newChatServiceWithRedis(t, ashaStore(), genai)

	result, err := cs.HandleTurn(context.Background(), 101, "q")
	require.NoError(t, err)
	assert.Equal(t, "I'm unable to generate a response at the moment.", result.Response)
}

func TestHandleTurnSaveFailureIsDistinct(t *testing.T) {
	genai := &fakeGenerator{replies: []string{"generated fine"}}
	cs := NewChatService(ashaStore(), failingTurnStore{}, genai, 5*time.Second)

	_, err := cs.HandleTurn(context.Background(), 101, "q")
	assert.ErrorIs(t, err, ErrSaveConversation)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBuildPatientPromptFieldOrder(t *testing.T) {
	patient := models.Patient{
		Name: "Asha", Age: 28, Pregnancies: 1,
		TTVaccination: "Done", GestationalAge: 20, GestationalAgeUnits: "week",
		Weight: 60, WeightUnit: "kg", Height: 160, HeightUnit: "cm",
		BloodPressure: "110/70", Anemia: "No", Jaundice: "No",
		FetalPosition: "Cephalic", FetalMovement: "Active", FetalHeartbeat: 140,
		UrineTestAlbumin: "Negative", UrineTestSugar: false,
		VDRL: "Negative", HRsAG: "Negative", HighRiskPregnancy: false,
	}

	prompt := BuildPatientPrompt(patient, "Is it normal to feel tired?")
	expected := "Patient Data:\n" +
		"Name: Asha\nAge: 28\nPregnancies: 1\n" +
		"TT Vaccination: Done\nGestational Age: 20 week\n" +
		"Weight: 60 kg\nHeight: 160 cm\n" +
		"Blood Pressure: 110/70\nAnemia: No\nJaundice: No\n" +
		"Fetal Position: Cephalic\nFetal Movement: Active\nFetal Heartbeat: 140\n" +
		"Urine Test Albumin: Negative\nUrine Test Sugar: false\n" +
		"VDRL: Negative\nHRsAG: Negative\nHigh-Risk Pregnancy: false\n" +
		"\nQuestion: Is it normal to feel tired?"
	assert.Equal(t, expected, prompt)

	// 同じ入力なら必ず同じプロンプトになる
	assert.Equal(t, prompt, BuildPatientPrompt(patient, "Is it normal to feel tired?"))
}

func TestTalkToBabyDetectsMood(t *testing.T) {
	genai := &fakeGenerator{replies: []string{"happy and excited", "I love you, Mommy!"}}
	cs, _ := newChatServiceWithRedis(t, ashaStore(), genai)

	reply, err := cs.TalkToBaby(context.Background(), 101, "I felt you kick today!")
	require.NoError(t, err)
	// 気分は最初の1語だけを大文字始まりに整えたもの
	assert.Equal(t, "Happy", reply.Mood)
	assert.Equal(t, "I love you, Mommy!", reply.Response)
	assert.Equal(t, "Asha", reply.Username)
	require.Len(t, genai.prompts, 2)
	assert.Contains(t, genai.prompts[0], "Analyze the mood")
	assert.Contains(t, genai.prompts[1], "unborn baby")
}

func TestTalkToBabyFallsBackOnGenerationFailure(t *testing.T) {
	genai := &fakeGenerator{err: fmt.Errorf("down")}
	cs, _ := newChatServiceWithRedis(t, ashaStore(), genai)

	reply, err := cs.TalkToBaby(context.Background(), 101, "hello baby")
	require.NoError(t, err)
	assert.Equal(t, "Calm", reply.Mood)
	assert.Equal(t, "I'm here with you, Mommy. I can't wait to meet you!", reply.Response)
}

func TestTalkToBabyUnknownUser(t *testing.T) {
	genai := &fakeGenerator{}
	cs, _ := newChatServiceWithRedis(t, ashaStore(), genai)

	_, err := cs.TalkToBaby(context.Background(), 404, "hi")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, genai.prompts)
}

func TestPartnerTipsFallback(t *testing.T) {
	genai := &fakeGenerator{err: fmt.Errorf("down")}
	cs, _ := newChatServiceWithRedis(t, ashaStore(), genai)

	tips, err := cs.PartnerTips(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "Just be kind, helpful, and emotionally present.", tips)
}

func TestTrimesterChecklistBoundaries(t *testing.T) {
	tests := []struct {
		gestationalAge float64
		trimester      string
	}{
		{8, "First Trimester"},
		{12, "First Trimester"},
		{13, "Second Trimester"},
		{28, "Second Trimester"},
		{29, "Third Trimester"},
		{38, "Third Trimester"},
	}

	for _, tt := range tests {
		records := &fakePatientStore{patients: map[int]models.Patient{
			101: {ID: 101, Name: "Asha", GestationalAge: tt.gestationalAge, GestationalAgeUnits: "week"},
		}}
		genai := &fakeGenerator{replies: []string{"generated checklist"}}
		cs, _ := newChatServiceWithRedis(t, records, genai)

		result, err := cs.TrimesterChecklist(context.Background(), 101)
		require.NoError(t, err)
		assert.Equal(t, tt.trimester, result.Trimester, "gestational age %v", tt.gestationalAge)
		assert.Equal(t, "generated checklist", result.Checklist)
		require.NotEmpty(t, genai.prompts)
		assert.Contains(t, genai.prompts[0], tt.trimester)
	}
}
