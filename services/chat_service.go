package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pregchat/models"
)

// 生成に失敗してもターン自体は成立させるためのフォールバック文言
const (
	fallbackResponse     = "I'm unable to generate a response at the moment."
	fallbackBabyResponse = "I'm here with you, Mommy. I can't wait to meet you!"
	fallbackPartnerTips  = "Just be kind, helpful, and emotionally present."
	fallbackChecklist    = "Follow regular checkups and a healthy routine."
	fallbackMood         = "Calm"
)

// PatientFinder はチャットが必要とするリレーショナルストアの一部
type PatientFinder interface {
	FindPatient(ctx context.Context, userID int) (models.Patient, error)
}

// TurnStore はチャットが必要とするセッションストアの一部
type TurnStore interface {
	SaveTurn(ctx context.Context, userID string, record models.SessionRecord) (string, error)
	ListUserSessions(ctx context.Context, userID string) ([]string, error)
	AppendChatLog(ctx context.Context, userID, question, response string) error
}

// ChatService は1ターン分のチャット処理を束ねるオーケストレーター。
// 患者取得 → プロンプト生成 → 外部生成呼び出し → セッション保存 →
// 履歴再列挙、を順番に行う。内部で並列化はしない。
type ChatService struct {
	records  PatientFinder
	sessions TurnStore
	genai    Generator
	timeout  time.Duration
}

func NewChatService(records PatientFinder, sessions TurnStore, genai Generator, timeout time.Duration) *ChatService {
	return &ChatService{
		records:  records,
		sessions: sessions,
		genai:    genai,
		timeout:  timeout,
	}
}

// TurnResult はHandleTurnの結果
type TurnResult struct {
	Response string
	Username string
	Sessions []string
}

// HandleTurn はユーザーの1メッセージを処理します。
// 患者がいなければErrNotFound（何も書き込まない）。生成失敗は
// フォールバック文で吸収する。セッション書き込み失敗だけは
// ErrSaveConversationとして呼び出し側へ返す。
func (cs *ChatService) HandleTurn(ctx context.Context, userID int, message string) (TurnResult, error) {
	patient, err := cs.records.FindPatient(ctx, userID)
	if err != nil {
		return TurnResult{}, err
	}

	prompt := BuildPatientPrompt(patient, message)
	reply := cs.generate(ctx, prompt)

	uid := strconv.Itoa(userID)

	// 会話ログへの追記はベストエフォート
	if err := cs.sessions.AppendChatLog(ctx, uid, message, reply); err != nil {
		logrus.Warnf("Failed to append chat log for user %s: %v", uid, err)
	}

	record := models.SessionRecord{
		Response: reply,
		Username: patient.Name,
		Question: message,
	}
	key, err := cs.sessions.SaveTurn(ctx, uid, record)
	if err != nil {
		// 応答は生成済みなのに履歴に残らなかった。トランザクションで
		// 巻き戻せる関係ではないので、補償としてログに残して通知する。
		logrus.WithFields(logrus.Fields{
			"user_id":     uid,
			"session_key": key,
		}).Errorf("Turn generated but not persisted: %v", err)
		return TurnResult{}, fmt.Errorf("%w: %v", ErrSaveConversation, err)
	}

	sessions, err := cs.sessions.ListUserSessions(ctx, uid)
	if err != nil {
		// レコードは保存できているので、列挙の失敗でターンを落とさない
		logrus.Warnf("Failed to list sessions for user %s: %v", uid, err)
		sessions = []string{key}
	}

	return TurnResult{
		Response: reply,
		Username: patient.Name,
		Sessions: sessions,
	}, nil
}

// generate は外部生成サービスを制限時間付きで呼び、失敗や空応答は
// フォールバック文に置き換えます。エラーを返さないのは仕様。
func (cs *ChatService) generate(ctx context.Context, prompt string) string {
	text, err := cs.generateWith(ctx, prompt, DefaultGenerationConfig())
	if err != nil {
		logrus.Warnf("Generation failed, using fallback: %v", err)
		return fallbackResponse
	}
	return text
}

func (cs *ChatService) generateWith(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, cs.timeout)
	defer cancel()

	text, err := cs.genai.Generate(genCtx, prompt, cfg)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response")
	}
	return strings.TrimSpace(text), nil
}

// BuildPatientPrompt は患者プロフィール全フィールドと質問を固定順で
// 並べたプロンプトを組み立てます。同じ入力からは必ず同じ文字列になる。
func BuildPatientPrompt(p models.Patient, message string) string {
	var b strings.Builder
	b.WriteString("Patient Data:\n")
	fmt.Fprintf(&b, "Name: %s\nAge: %d\nPregnancies: %d\n", p.Name, p.Age, p.Pregnancies)
	fmt.Fprintf(&b, "TT Vaccination: %s\nGestational Age: %g %s\n", p.TTVaccination, p.GestationalAge, p.GestationalAgeUnits)
	fmt.Fprintf(&b, "Weight: %g %s\nHeight: %g %s\n", p.Weight, p.WeightUnit, p.Height, p.HeightUnit)
	fmt.Fprintf(&b, "Blood Pressure: %s\nAnemia: %s\nJaundice: %s\n", p.BloodPressure, p.Anemia, p.Jaundice)
	fmt.Fprintf(&b, "Fetal Position: %s\nFetal Movement: %s\nFetal Heartbeat: %d\n", p.FetalPosition, p.FetalMovement, p.FetalHeartbeat)
	fmt.Fprintf(&b, "Urine Test Albumin: %s\nUrine Test Sugar: %t\n", p.UrineTestAlbumin, p.UrineTestSugar)
	fmt.Fprintf(&b, "VDRL: %s\nHRsAG: %s\nHigh-Risk Pregnancy: %t\n", p.VDRL, p.HRsAG, p.HighRiskPregnancy)
	fmt.Fprintf(&b, "\nQuestion: %s", message)
	return b.String()
}

// BabyReply はTalkToBabyの結果
type BabyReply struct {
	Response string
	Mood     string
	Username string
}

// TalkToBaby は母親のメッセージから気分を推定し、お腹の赤ちゃんに
// なりきった返事を生成します。気分推定に失敗したらCalm扱い。
func (cs *ChatService) TalkToBaby(ctx context.Context, userID int, message string) (BabyReply, error) {
	patient, err := cs.records.FindPatient(ctx, userID)
	if err != nil {
		return BabyReply{}, err
	}

	mood := fallbackMood
	moodPrompt := fmt.Sprintf(
		"Analyze the mood of the following message from a pregnant mother and return only one word (e.g., happy, sad, anxious, calm, excited, tired, loved):\n\nMessage: %s",
		message)
	if raw, err := cs.generateWith(ctx, moodPrompt, DefaultGenerationConfig()); err == nil {
		if words := strings.Fields(raw); len(words) > 0 {
			mood = capitalize(words[0])
		}
	}

	babyPrompt := fmt.Sprintf(
		"Imagine you are an unborn baby in the womb of your mother. Respond sweetly, lovingly, and emotionally to what she says.\n\n"+
			"Patient Info:\nName: %s\nGestational Age: %g %s\n\n"+
			"Mother's Message: %s\n\n"+
			"Respond like a baby who loves their mom and is excited to meet her.",
		patient.Name, patient.GestationalAge, patient.GestationalAgeUnits, message)

	reply, err := cs.generateWith(ctx, babyPrompt, DefaultGenerationConfig())
	if err != nil {
		logrus.Warnf("Baby response generation failed, using fallback: %v", err)
		reply = fallbackBabyResponse
	}

	return BabyReply{Response: reply, Mood: mood, Username: patient.Name}, nil
}

// PartnerTips はパートナー向けのサポート提案を生成します
func (cs *ChatService) PartnerTips(ctx context.Context, userID int) (string, error) {
	patient, err := cs.records.FindPatient(ctx, userID)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Suggest emotional, physical, and practical support ideas for the partner of a pregnant woman named %s, who is %g %s pregnant.",
		patient.Name, patient.GestationalAge, patient.GestationalAgeUnits)

	tips, err := cs.generateWith(ctx, prompt, DefaultGenerationConfig())
	if err != nil {
		logrus.Warnf("Partner tips generation failed, using fallback: %v", err)
		return fallbackPartnerTips, nil
	}
	return tips, nil
}

// ChecklistResult はTrimesterChecklistの結果
type ChecklistResult struct {
	Trimester string
	Checklist string
}

// TrimesterChecklist は妊娠週数から期を判定してチェックリストを生成します
func (cs *ChatService) TrimesterChecklist(ctx context.Context, userID int) (ChecklistResult, error) {
	patient, err := cs.records.FindPatient(ctx, userID)
	if err != nil {
		return ChecklistResult{}, err
	}

	gestationalAge := int(patient.GestationalAge)
	trimester := "Third Trimester"
	switch {
	case gestationalAge <= 12:
		trimester = "First Trimester"
	case gestationalAge <= 28:
		trimester = "Second Trimester"
	}

	prompt := fmt.Sprintf(
		"Give a simple checklist for %s pregnancy. Include doctor visits, symptoms to track, nutrition, and self-care tips.",
		trimester)

	checklist, err := cs.generateWith(ctx, prompt, DefaultGenerationConfig())
	if err != nil {
		logrus.Warnf("Checklist generation failed, using fallback: %v", err)
		checklist = fallbackChecklist
	}
	return ChecklistResult{Trimester: trimester, Checklist: checklist}, nil
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}
