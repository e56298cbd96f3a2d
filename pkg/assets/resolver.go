// Package assets はユーザー由来の参照画像ソースを取得・正規化して
// セッションで使える参照画像に変換します。
package assets

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/shouni/eduviz-image-kit/pkg/domain"
	"github.com/shouni/eduviz-image-kit/pkg/imgutil"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

const cacheKeyReference = "reference_bytes:"

// ImageCacher は取得済み画像データのキャッシュ操作を抽象化するインターフェースです。
type ImageCacher interface {
	Get(key string) (any, bool)
	Set(key string, value any, d time.Duration)
}

// ReferenceResolver は raw バイト列・http(s) URL・gs:// URI のいずれかから
// 参照画像を解決し、長辺1024px以内の3チャンネルJPEGに正規化します。
type ReferenceResolver struct {
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	cache      ImageCacher
	cacheTTL   time.Duration
}

// NewReferenceResolver は依存関係を注入して ReferenceResolver を初期化します。
// cache は nil を許容します（キャッシュなし動作）。
func NewReferenceResolver(httpClient httpkit.ClientInterface, reader remoteio.InputReader, cache ImageCacher, cacheTTL time.Duration) (*ReferenceResolver, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	return &ReferenceResolver{
		httpClient: httpClient,
		reader:     reader,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}, nil
}

// ResolveBytes はアップロードされたバイト列を正規化して参照画像にします。
// デコードできないデータはエラーを返します（呼び出し側で縮退を選べます）。
func (r *ReferenceResolver) ResolveBytes(ctx context.Context, data []byte) (*domain.ReferenceImage, error) {
	normalized, mimeType, err := imgutil.NormalizeReference(data, imgutil.DefaultMaxDimension, imgutil.DefaultJPEGQuality)
	if err != nil {
		return nil, err
	}
	return &domain.ReferenceImage{Data: normalized, MimeType: mimeType}, nil
}

// ResolveURI は URI から画像を取得し、正規化して参照画像にします。
func (r *ReferenceResolver) ResolveURI(ctx context.Context, uri string) (*domain.ReferenceImage, error) {
	data, err := r.fetchImageData(ctx, uri)
	if err != nil {
		return nil, err
	}
	return r.ResolveBytes(ctx, data)
}

// fetchImageData は gs:// と http(s) の両方のソースからバイト列を取得します。
func (r *ReferenceResolver) fetchImageData(ctx context.Context, uri string) ([]byte, error) {
	if r.cache != nil {
		if cached, found := r.cache.Get(cacheKeyReference + uri); found {
			if data, ok := cached.([]byte); ok {
				return data, nil
			}
		}
	}

	var data []byte
	if strings.HasPrefix(uri, "gs://") {
		rc, err := r.reader.Open(ctx, uri)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
	} else {
		if safe, err := isSafeURL(uri); err != nil || !safe {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
		}
		var err error
		data, err = r.httpClient.FetchBytes(ctx, uri)
		if err != nil {
			return nil, err
		}
	}

	if r.cache != nil {
		r.cache.Set(cacheKeyReference+uri, data, r.cacheTTL)
	}
	return data, nil
}

// isSafeURL は SSRF 対策として URL を検証します。
// 名前解決されたすべての IP アドレスに対してプライベート IP チェックを行います。
func isSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP

	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("名前解決失敗: %w", err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
