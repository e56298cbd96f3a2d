// Package critic は生成画像のレビュー呼び出しをラップします。
// レビューは助言的な役割であり、この呼び出しの失敗がパイプラインを
// 中断させることはありません。あらゆる失敗は空の修正リストに縮退します。
package critic

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shouni/eduviz-image-kit/pkg/domain"
	"github.com/shouni/eduviz-image-kit/pkg/prompts"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// DefaultCriticModel はレビューに使うデフォルトのモデル名です。
// 画像生成モデルより軽量なテキスト/ビジョンモデルで十分です。
const DefaultCriticModel = "gemini-2.5-flash"

// GeminiCritic は Gemini を利用したレビュークライアントです。
type GeminiCritic struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewGeminiCritic は GeminiCritic を初期化します。
// aiClient が nil でもエラーにはせず、レビュー時に縮退します（レビューは助言的なため）。
func NewGeminiCritic(aiClient gemini.GenerativeModel, model string) *GeminiCritic {
	if model == "" {
		model = DefaultCriticModel
	}
	return &GeminiCritic{aiClient: aiClient, model: model}
}

// Review は画像と評価ルーブリックを送り、修正指示のリストを受け取ります。
// エラーは返しません。失敗時は Degraded を立てた空のレビュー結果を返し、
// 「問題なし」と「レビュー不能」を呼び出し側が区別できるようにします。
func (c *GeminiCritic) Review(ctx context.Context, img *domain.GeneratedImage, conceptLabel string) domain.Review {
	if c.aiClient == nil {
		return c.degrade(ctx, conceptLabel, "aiClient is not configured")
	}
	if img == nil || len(img.Data) == 0 {
		return c.degrade(ctx, conceptLabel, "レビュー対象の画像がありません")
	}

	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}

	// 画像パーツを先頭に、ルーブリックを2つ目に置く
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: img.Data}},
		{Text: prompts.CritiqueRubric(conceptLabel)},
	}

	resp, err := c.aiClient.GenerateWithParts(ctx, c.model, parts, gemini.GenerateOptions{})
	if err != nil {
		return c.degrade(ctx, conceptLabel, err.Error())
	}

	text, ok := firstTextPart(resp)
	if !ok {
		return c.degrade(ctx, conceptLabel, "応答にテキストが含まれていません")
	}

	fixes, err := parseFixList(text)
	if err != nil {
		return c.degrade(ctx, conceptLabel, err.Error())
	}

	return domain.Review{Fixes: fixes}
}

func (c *GeminiCritic) degrade(ctx context.Context, conceptLabel, cause string) domain.Review {
	slog.WarnContext(ctx, "レビューに失敗したため修正なしとして続行します",
		"concept", conceptLabel, "cause", cause)
	return domain.Review{Degraded: true, Cause: cause}
}

// firstTextPart は最初の候補から最初の非空テキストパーツを取り出します。
func firstTextPart(resp *gemini.Response) (string, bool) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return "", false
	}
	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content == nil {
		return "", false
	}
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			return part.Text, true
		}
	}
	return "", false
}

// parseFixList はモデルの応答テキストを修正指示のリストとして解析します。
// モデルが「余計な文を付けない」指示を無視した場合に備えて
// Markdown のコードフェンスを剥がしてから JSON として解釈します。
func parseFixList(text string) (domain.FixList, error) {
	cleaned := stripCodeFence(text)

	var fixes []string
	if err := json.Unmarshal([]byte(cleaned), &fixes); err != nil {
		return nil, err
	}
	return domain.FixList(fixes), nil
}

// stripCodeFence は応答を囲むコードフェンスを除去します。
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
