// Package session は1対話セッション分の一時状態を保持します。
// 永続化は行わず、セッション終了とともに破棄される前提です。
package session

import (
	"fmt"
	"sync"

	"github.com/shouni/eduviz-image-kit/pkg/domain"
)

// Store は参照画像・コンセプト別の最新画像・API呼び出し回数を保持します。
// パイプラインは一度に1実行だけ書き込む契約ですが、描画側からの読み取りと
// 安全に共存できるようミューテックスで保護しています。
type Store struct {
	mu          sync.Mutex
	reference   *domain.ReferenceImage
	description string
	concepts    map[string]*domain.GeneratedImage
	order       []string
	calls       int
}

// NewStore は空の Store を作成します。
func NewStore() *Store {
	return &Store{
		concepts: make(map[string]*domain.GeneratedImage),
	}
}

// SetReference は参照画像と元になった説明文を保存します。
// 履歴は持たず、再生成時は常に置き換えです。
func (s *Store) SetReference(ref *domain.ReferenceImage, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reference = ref
	s.description = description
}

// Reference は現在の参照画像を返します。未設定の場合は nil です。
func (s *Store) Reference() *domain.ReferenceImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference
}

// Description は参照画像の元になった説明文を返します。
func (s *Store) Description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.description
}

// SetConcept はコンセプトの最新画像を保存します。既存エントリは上書きされます。
func (s *Store) SetConcept(label string, img *domain.GeneratedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(label, img)
}

// SetEditedConcept は編集結果を派生ラベルで保存し、そのラベルを返します。
// 元のエントリは上書きしません。元のラベルが存在しない場合はエラーです。
func (s *Store) SetEditedConcept(origin string, img *domain.GeneratedImage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.concepts[origin]; !ok {
		return "", fmt.Errorf("編集元のコンセプトが存在しません: %s", origin)
	}

	label := domain.EditedLabel(origin)
	s.set(label, img)
	return label, nil
}

// Concept は指定ラベルの最新画像を返します。
func (s *Store) Concept(label string) (*domain.GeneratedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.concepts[label]
	return img, ok
}

// Labels はギャラリー表示用のラベル一覧を返します。
// 挿入順を保ち、編集済みエントリは元のコンセプトの直後に並びます。
// 編集結果をさらに編集した場合も、派生の連鎖を辿ってすべて列挙します。
func (s *Store) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	labels := make([]string, 0, len(s.order))
	for _, label := range s.order {
		if domain.IsEditedLabel(label) {
			continue
		}
		labels = append(labels, label)
		// 派生エントリは必ず編集元の存在を前提に作られるため、
		// 連鎖を辿れば編集済みエントリをすべて拾える
		for edited := domain.EditedLabel(label); ; edited = domain.EditedLabel(edited) {
			if _, ok := s.concepts[edited]; !ok {
				break
			}
			labels = append(labels, edited)
		}
	}
	return labels
}

// AddCall は生成APIの呼び出し回数を1増やします。
func (s *Store) AddCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
}

// Calls は生成APIの呼び出し回数を返します。
func (s *Store) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// set は呼び出し元がロックを保持している前提の内部ヘルパーです。
func (s *Store) set(label string, img *domain.GeneratedImage) {
	if _, ok := s.concepts[label]; !ok {
		s.order = append(s.order, label)
	}
	s.concepts[label] = img
}
