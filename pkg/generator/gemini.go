// Package generator は画像生成モデルへの単一の生成呼び出しをラップします。
// リトライは行わず、1要求＝1呼び出しの同期実行です。
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shouni/eduviz-image-kit/pkg/domain"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// DefaultImageModel は画像生成に使うデフォルトのモデル名です。
const DefaultImageModel = "gemini-2.5-flash-image-preview"

// GeminiImageGenerator は Gemini を利用した生成クライアントです。
// テキスト指示1つと参照画像最大1枚からなるマルチモーダル要求を組み立てます。
type GeminiImageGenerator struct {
	aiClient gemini.GenerativeModel
	model    string
	opts     gemini.GenerateOptions
}

// NewGeminiImageGenerator は依存関係を注入して GeminiImageGenerator を初期化します。
// model が空の場合は DefaultImageModel を使います。
func NewGeminiImageGenerator(aiClient gemini.GenerativeModel, model string) (*GeminiImageGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if model == "" {
		model = DefaultImageModel
	}
	return &GeminiImageGenerator{aiClient: aiClient, model: model}, nil
}

// Generate は指示文と任意の参照画像1枚から画像を1枚生成します。
// 参照画像が画像として解釈できない場合は警告ログを残してテキストのみで続行します。
// 失敗は分類付きの *Error として返します。
func (g *GeminiImageGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedImage, error) {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return nil, newError(KindBadRequest, "指示文が空です")
	}

	// テキストパーツを必ず先頭に置く
	parts := []*genai.Part{{Text: instruction}}

	if req.Reference != nil {
		if imgPart := g.toInlinePart(ctx, req.Reference); imgPart != nil {
			parts = append(parts, imgPart)
		}
	}

	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, g.opts)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	return parseImageResponse(resp)
}

// toInlinePart は参照画像を InlineData パーツに変換します。
// MIME タイプは実データから判定し、画像でない場合は nil を返します（縮退動作）。
func (g *GeminiImageGenerator) toInlinePart(ctx context.Context, ref *domain.ReferenceImage) *genai.Part {
	if len(ref.Data) == 0 {
		slog.WarnContext(ctx, "参照画像が空のためテキストのみで続行します")
		return nil
	}

	mimeType := http.DetectContentType(ref.Data)
	if !strings.HasPrefix(mimeType, "image/") {
		slog.WarnContext(ctx, "参照画像を解釈できないためテキストのみで続行します",
			"detected_mime_type", mimeType)
		return nil
	}

	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeType,
			Data:     ref.Data,
		},
	}
}

// parseImageResponse は応答の最初の候補から最初の画像パーツを取り出します。
func parseImageResponse(resp *gemini.Response) (*domain.GeneratedImage, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, newError(KindEmptyResponse, "応答に候補が含まれていません")
	}

	// 現在の仕様では最初の候補のみを利用する
	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, newError(KindEmptyResponse, "応答候補に内容パーツがありません")
	}

	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &domain.GeneratedImage{
				Data:     part.InlineData.Data,
				MimeType: part.InlineData.MIMEType,
			}, nil
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, newError(KindNoImageData, "画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}

	return nil, newError(KindNoImageData, "応答に画像データが見つかりませんでした")
}
