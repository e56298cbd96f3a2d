// Package pipeline は 生成 → レビュー → リペア の2段フィードバック実行を
// オーケストレーションします。1回の画像生成呼び出しを、レビューモデルを
// 批評役とする自己修正パイプラインに拡張するのがこのパッケージの役割です。
//
// 実行は同期的で、1セッションにつき同時に1実行だけが走る契約です。
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/eduviz-image-kit/pkg/domain"
	"github.com/shouni/eduviz-image-kit/pkg/prompts"
	"github.com/shouni/eduviz-image-kit/pkg/session"
)

// DefaultMaxRepairPasses はリペアの既定回数です。
// レイテンシと呼び出し回数を抑えるため、既定では1回だけ修正を試みます。
const DefaultMaxRepairPasses = 1

// maxRepairPassesCeiling は設定可能なリペア回数の上限です。
const maxRepairPassesCeiling = 3

// Config はパイプラインの挙動の調整点です。ゼロ値で既定動作になります。
type Config struct {
	// MaxRepairPasses はレビュー→リペアを繰り返す最大回数です。
	// 0 は DefaultMaxRepairPasses、上限は 3 に丸められます。
	MaxRepairPasses int
}

// Pipeline はセッションストアを所有する呼び出し側から依存を注入されて動きます。
// プロセス全体で共有される状態は持ちません。
type Pipeline struct {
	gen             ImageGenerator
	critic          Critic
	store           *session.Store
	maxRepairPasses int
}

// NewPipeline は依存関係を注入して Pipeline を初期化します。
func NewPipeline(gen ImageGenerator, critic Critic, store *session.Store, cfg Config) (*Pipeline, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (ImageGenerator) is required")
	}
	if critic == nil {
		return nil, fmt.Errorf("critic (Critic) is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	passes := cfg.MaxRepairPasses
	if passes <= 0 {
		passes = DefaultMaxRepairPasses
	}
	if passes > maxRepairPassesCeiling {
		passes = maxRepairPassesCeiling
	}

	return &Pipeline{
		gen:             gen,
		critic:          critic,
		store:           store,
		maxRepairPasses: passes,
	}, nil
}

// CreateCharacter は説明文からベースキャラクターを生成し、参照画像として保存します。
// レビューは行いません（キャラクター自体が以後の基準になるため）。
func (p *Pipeline) CreateCharacter(ctx context.Context, description string) *Outcome {
	description = strings.TrimSpace(description)
	if description == "" {
		return failed(fmt.Errorf("キャラクター説明が空です"))
	}

	img, err := p.gen.Generate(ctx, domain.GenerationRequest{
		Instruction: prompts.Character(description),
	})
	if err != nil {
		return failed(fmt.Errorf("ベースキャラクター生成に失敗しました: %w", err))
	}
	p.store.AddCall()

	p.store.SetReference(img.Reference(), description)
	return &Outcome{State: StateAccepted, Image: img}
}

// AdoptReference はリゾルバ等で用意済みの参照画像をセッションに取り込みます。
// 生成呼び出しを伴わないため、呼び出しカウンタは増えません。
func (p *Pipeline) AdoptReference(ref *domain.ReferenceImage, description string) error {
	if ref == nil || len(ref.Data) == 0 {
		return fmt.Errorf("参照画像が空です")
	}
	p.store.SetReference(ref, description)
	return nil
}

// GenerateConcept はコンセプトのシーンを生成し、レビュー結果に応じて
// 1回の結合リペアを行ってからストアに保存します。
//
// ドラフト生成の失敗は実行全体の失敗です（ストアは変更されません）。
// レビューの失敗は空の修正リストに縮退し、実行を止めません。
// リペアの失敗も実行の失敗ですが、ドラフト画像は Outcome に残ります。
func (p *Pipeline) GenerateConcept(ctx context.Context, label string) *Outcome {
	label = strings.TrimSpace(label)
	if label == "" {
		return failed(fmt.Errorf("コンセプトラベルが空です"))
	}

	ref := p.store.Reference()
	if ref == nil {
		return failed(fmt.Errorf("参照画像が未設定です。先にキャラクターを作成してください"))
	}

	// Drafting: 保存済みの参照画像をアンカーにドラフトを生成する
	slog.InfoContext(ctx, "コンセプトシーンのドラフトを生成します", "concept", label)
	draft, err := p.gen.Generate(ctx, domain.GenerationRequest{
		Instruction: prompts.ConceptScene(label),
		Reference:   ref,
	})
	if err != nil {
		return failed(fmt.Errorf("コンセプトシーン生成に失敗しました: %w", err))
	}
	p.store.AddCall()

	current := draft
	var review domain.Review
	for pass := 0; pass < p.maxRepairPasses; pass++ {
		// Reviewing: この呼び出しは実行を失敗させない
		review = p.critic.Review(ctx, current, label)
		if review.Fixes.Empty() {
			break
		}

		// Repairing: すべての修正を1つの指示にまとめ、
		// ドラフト自身（キャラクター参照ではなく）をアンカーに再生成する
		slog.InfoContext(ctx, "レビュー指摘を適用して再生成します",
			"concept", label, "fixes", len(review.Fixes), "pass", pass+1)
		repaired, err := p.gen.Generate(ctx, domain.GenerationRequest{
			Instruction: prompts.Repair(label, review.Fixes),
			Reference:   current.Reference(),
		})
		if err != nil {
			// 直前の良品は捨てない
			return &Outcome{
				State:  StateGenerationFailed,
				Draft:  current,
				Review: review,
				Err:    fmt.Errorf("リペア生成に失敗しました: %w", err),
			}
		}
		p.store.AddCall()
		current = repaired
	}

	p.store.SetConcept(label, current)
	return &Outcome{
		State:  StateAccepted,
		Image:  current,
		Draft:  draft,
		Review: review,
		Label:  label,
	}
}

// ApplyEdit は保存済みのコンセプト画像に自由記述の編集を1回の生成で適用し、
// 元のエントリを残したまま派生ラベルで保存します。レビュー段階はありません。
func (p *Pipeline) ApplyEdit(ctx context.Context, label, instruction string) *Outcome {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return failed(fmt.Errorf("編集内容が空です"))
	}

	target, ok := p.store.Concept(label)
	if !ok {
		return failed(fmt.Errorf("編集対象のコンセプトが存在しません: %s", label))
	}

	// 編集対象の画像そのものをアンカーにする
	edited, err := p.gen.Generate(ctx, domain.GenerationRequest{
		Instruction: prompts.Edit(label, instruction),
		Reference:   target.Reference(),
	})
	if err != nil {
		return failed(fmt.Errorf("編集の適用に失敗しました: %w", err))
	}
	p.store.AddCall()

	editedLabel, err := p.store.SetEditedConcept(label, edited)
	if err != nil {
		return failed(err)
	}

	return &Outcome{State: StateAccepted, Image: edited, Label: editedLabel}
}

func failed(err error) *Outcome {
	return &Outcome{State: StateGenerationFailed, Err: err}
}
