package pipeline

import "github.com/shouni/eduviz-image-kit/pkg/domain"

// State はパイプライン実行の状態です。
// Drafting → Reviewing → (Repairing | Accepted) と進み、
// 終端状態は Accepted と GenerationFailed の2つです。
type State int

const (
	// StateDrafting は最初の生成呼び出し中です。
	StateDrafting State = iota
	// StateReviewing はドラフトのレビュー中です。
	StateReviewing
	// StateRepairing は修正指示を適用する再生成中です。
	StateRepairing
	// StateAccepted は最終結果が確定した終端状態です。
	StateAccepted
	// StateGenerationFailed は生成失敗で終了した終端状態です。
	StateGenerationFailed
)

func (s State) String() string {
	switch s {
	case StateDrafting:
		return "drafting"
	case StateReviewing:
		return "reviewing"
	case StateRepairing:
		return "repairing"
	case StateAccepted:
		return "accepted"
	case StateGenerationFailed:
		return "generation_failed"
	default:
		return "unknown"
	}
}

// Outcome はパイプライン実行の結果です。
// 致命的な生成失敗（Err 非nil、State=StateGenerationFailed）と、
// レビュー縮退などの助言的な劣化（Review.Degraded）を区別して持ちます。
type Outcome struct {
	// State は終端状態（Accepted または GenerationFailed）です。
	State State
	// Image は確定した最終画像です（Accepted時のみ非nil）。
	Image *domain.GeneratedImage
	// Draft は最初の生成で得たドラフト画像です。
	// リペア失敗時もここに残り、呼び出し側のフォールバックに使えます。
	Draft *domain.GeneratedImage
	// Review は最後に実施したレビューの結果です。
	Review domain.Review
	// Label は結果が保存されたストア上のラベルです（Accepted時のみ）。
	Label string
	// Err は生成失敗の原因です。State が GenerationFailed のときだけ非nilです。
	Err error
}

// Accepted は実行が最終画像を確定して終わったかどうかを返します。
func (o *Outcome) Accepted() bool {
	return o.State == StateAccepted
}
