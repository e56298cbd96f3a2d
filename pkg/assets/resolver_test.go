package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// テスト用のダミーPNG画像を作成するヘルパー
func dummyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 200, 100, 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode dummy image: %v", err)
	}
	return buf.Bytes()
}

func TestNewReferenceResolver(t *testing.T) {
	t.Run("依存関係が足りない場合はエラーを返すこと", func(t *testing.T) {
		_, err := NewReferenceResolver(nil, &mockReader{}, nil, time.Hour)
		assert.Error(t, err)

		_, err = NewReferenceResolver(&mockHTTPClient{}, nil, nil, time.Hour)
		assert.Error(t, err)
	})

	t.Run("cacheはnilを許容すること", func(t *testing.T) {
		_, err := NewReferenceResolver(&mockHTTPClient{}, &mockReader{}, nil, time.Hour)
		assert.NoError(t, err)
	})
}

func TestReferenceResolver_ResolveBytes(t *testing.T) {
	ctx := context.Background()
	resolver, _ := NewReferenceResolver(&mockHTTPClient{}, &mockReader{}, nil, time.Hour)

	t.Run("正常な画像はJPEGに正規化されること", func(t *testing.T) {
		ref, err := resolver.ResolveBytes(ctx, dummyPNG(t, 10, 10))

		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", ref.MimeType)
		assert.NotEmpty(t, ref.Data)
	})

	t.Run("デコードできないデータはエラーになること", func(t *testing.T) {
		_, err := resolver.ResolveBytes(ctx, []byte("not an image"))
		assert.Error(t, err)
	})
}

func TestReferenceResolver_ResolveURI(t *testing.T) {
	ctx := context.Background()

	t.Run("gs://のURIはreader経由で取得されること", func(t *testing.T) {
		reader := &mockReader{data: dummyPNG(t, 10, 10)}
		resolver, _ := NewReferenceResolver(&mockHTTPClient{}, reader, nil, time.Hour)

		ref, err := resolver.ResolveURI(ctx, "gs://bucket/character.png")

		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", ref.MimeType)
	})

	t.Run("キャッシュヒット時は取得をスキップすること", func(t *testing.T) {
		fetched := false
		httpMock := &mockHTTPClient{
			fetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				fetched = true
				return nil, nil
			},
		}
		cache := &mockCache{data: map[string]any{
			cacheKeyReference + "https://example.com/char.png": dummyPNG(t, 10, 10),
		}}
		resolver, _ := NewReferenceResolver(httpMock, &mockReader{}, cache, time.Hour)

		ref, err := resolver.ResolveURI(ctx, "https://example.com/char.png")

		require.NoError(t, err)
		assert.False(t, fetched, "cache hit must not trigger a fetch")
		assert.NotEmpty(t, ref.Data)
	})

	t.Run("プライベートIPへのURLはブロックされること", func(t *testing.T) {
		resolver, _ := NewReferenceResolver(&mockHTTPClient{}, &mockReader{}, nil, time.Hour)

		_, err := resolver.ResolveURI(ctx, "http://127.0.0.1/evil.png")
		assert.Error(t, err)
	})

	t.Run("取得結果がキャッシュに保存されること", func(t *testing.T) {
		cache := &mockCache{}
		reader := &mockReader{data: dummyPNG(t, 10, 10)}
		resolver, _ := NewReferenceResolver(&mockHTTPClient{}, reader, cache, time.Hour)

		_, err := resolver.ResolveURI(ctx, "gs://bucket/character.png")

		require.NoError(t, err)
		_, ok := cache.Get(cacheKeyReference + "gs://bucket/character.png")
		assert.True(t, ok, "fetched bytes should be cached")
	})
}

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"不正なスキーム", "gopher://example.com", true},
		{"ループバックIP", "http://127.0.0.1/admin", true},
		{"プライベートIP (クラスA)", "http://10.255.255.254/metadata", true},
		{"リンクローカル", "http://169.254.169.254/latest", true},
		{"パース不能", "://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, err := isSafeURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("isSafeURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && safe {
				t.Errorf("%s: unsafe URL was flagged as safe", tt.url)
			}
		})
	}
}
