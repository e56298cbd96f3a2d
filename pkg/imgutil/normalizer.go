package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// DefaultMaxDimension はアップロード参照画像の一辺の上限です。
	DefaultMaxDimension = 1024
	// DefaultJPEGQuality は正規化時の JPEG 品質です。
	DefaultJPEGQuality = 85
)

// NormalizeReference はユーザー由来の画像を参照画像として使える形に正規化します。
// image.Decode がサポートするフォーマット（PNG, GIF, JPEG等）を受け付け、
// 長辺が maxDim を超える場合は縦横比を保ったまま縮小し、
// JPEG（3チャンネル）に再エンコードして MIME タイプと共に返します。
// デコードできないデータはエラーを返します。
func NormalizeReference(data []byte, maxDim, quality int) ([]byte, string, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("参照画像のデコードに失敗しました: %w", err)
	}

	img = scaleToFit(img, maxDim)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("参照画像の再エンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// scaleToFit は長辺が maxDim に収まるように画像を縮小します。
// 既に収まっている場合は入力をそのまま返します（拡大はしません）。
func scaleToFit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
