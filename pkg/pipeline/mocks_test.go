package pipeline

import (
	"context"

	"github.com/shouni/eduviz-image-kit/pkg/domain"
)

// mockGenerator は ImageGenerator のテスト用モックです。
// 受け取った要求をすべて記録し、呼び出し回数の検証に使います。
type mockGenerator struct {
	generateFunc func(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedImage, error)
	requests     []domain.GenerationRequest
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GeneratedImage, error) {
	m.requests = append(m.requests, req)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &domain.GeneratedImage{Data: []byte("generated"), MimeType: "image/png"}, nil
}

// mockCritic は Critic のテスト用モックです。
type mockCritic struct {
	reviewFunc func(ctx context.Context, img *domain.GeneratedImage, conceptLabel string) domain.Review
	calls      int
}

func (m *mockCritic) Review(ctx context.Context, img *domain.GeneratedImage, conceptLabel string) domain.Review {
	m.calls++
	if m.reviewFunc != nil {
		return m.reviewFunc(ctx, img, conceptLabel)
	}
	return domain.Review{}
}
