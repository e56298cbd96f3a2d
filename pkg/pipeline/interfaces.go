package pipeline

import (
	"context"

	"github.com/shouni/eduviz-image-kit/pkg/domain"
)

// ImageGenerator は生成クライアントに要求する最小のインターフェースです。
type ImageGenerator interface {
	// Generate は指示文と任意の参照画像1枚から画像を1枚生成します。
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedImage, error)
}

// Critic はレビュークライアントに要求する最小のインターフェースです。
// Review はエラーを返しません。失敗は縮退したレビュー結果として表現されます。
type Critic interface {
	Review(ctx context.Context, img *domain.GeneratedImage, conceptLabel string) domain.Review
}
