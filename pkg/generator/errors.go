package generator

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// FailureKind は生成失敗の構造化された分類です。
// 呼び出し側がエラーメッセージの文字列を覗き見せずにヒントを出し分けられるようにします。
type FailureKind int

const (
	// KindUnknown は分類できなかった失敗です。
	KindUnknown FailureKind = iota
	// KindConfiguration は認証情報の不備など、実行前の設定不良です。
	KindConfiguration
	// KindRateLimited はレートリミットやクォータ超過です。
	KindRateLimited
	// KindBadRequest は指示文やモデル指定の不備です。
	KindBadRequest
	// KindEmptyResponse は候補や内容パーツを一切含まない応答です。
	KindEmptyResponse
	// KindNoImageData は内容パーツはあるが画像データを含まない応答です。
	KindNoImageData
)

func (k FailureKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindRateLimited:
		return "rate_limited"
	case KindBadRequest:
		return "bad_request"
	case KindEmptyResponse:
		return "empty_response"
	case KindNoImageData:
		return "no_image_data"
	default:
		return "unknown"
	}
}

// Error は生成失敗を分類付きで表します。上流の原因は Unwrap で辿れます。
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("画像生成に失敗しました (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind FailureKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf はエラーから FailureKind を取り出します。
// *Error でないエラーは KindUnknown として扱います。
func KindOf(err error) FailureKind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return KindUnknown
}

// classifyTransportError は通信エラーを API のステータスコードから分類します。
func classifyTransportError(err error) *Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Err: err}
		case http.StatusBadRequest:
			return &Error{Kind: KindBadRequest, Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: KindConfiguration, Err: err}
		}
	}
	return &Error{Kind: KindUnknown, Err: err}
}
