package services

import "context"

// GenerationConfig は生成系サービスへ渡すオプション
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
	// ResponseMIMEType は応答形式（プレーンテキストか構造化か）
	ResponseMIMEType string
}

// DefaultGenerationConfig はチャット応答に使う既定値
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:      0.4,
		TopP:             0.8,
		TopK:             40,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "text/plain",
	}
}

// PrenatalSystemInstruction はアシスタントの人格を定めるシステムプロンプト
const PrenatalSystemInstruction = "You are a professional medical assistant specializing in prenatal care. " +
	"Your role is to provide accurate, safe, and empathetic responses to pregnant women based on their medical data. " +
	"Prioritize patient safety and well-being by offering general advice and encouraging consultation with healthcare providers for serious concerns. " +
	"Communicate in a warm, supportive, and professional tone using simple, clear language. " +
	"Break down guidance into actionable steps and calmly reassure patients if they express worry. " +
	"Use positive, encouraging language to promote healthy habits and overall well-being, ensuring every response is clear, concise, and focused on patient care."

// Generator は外部の文章生成サービスの抽象。プロバイダーを
// 差し替えてもオーケストレーター側には手を入れずに済むようにする。
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)
}
