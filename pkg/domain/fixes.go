package domain

import "strings"

// Fix はレビューで検出された1件の修正指示（短い自然言語）です。
type Fix = string

// FixList はレビュー結果の修正指示の並びです。
// 順序に意味はなく、適用時はすべてを1つの指示にまとめます。
// 空リストは「修正不要」を意味します。
type FixList []Fix

// Empty は修正指示が1件もないかどうかを返します。
func (f FixList) Empty() bool {
	return len(f) == 0
}

// Directive はすべての修正指示を1行1件で連結した単一の指示文を返します。
// リペア生成はこの結合指示を1回の呼び出しで適用します。
func (f FixList) Directive() string {
	items := make([]string, 0, len(f))
	for _, fix := range f {
		fix = strings.TrimSpace(fix)
		if fix == "" {
			continue
		}
		items = append(items, "- "+fix)
	}
	return strings.Join(items, "\n")
}

// Review はレビュー呼び出しの結果です。
// Degraded はレビュー自体が失敗して空リストへ縮退したことを示します。
// 「画像に問題なし」と「レビュー不能」を呼び出し側で区別できるようにしています。
type Review struct {
	Fixes    FixList
	Degraded bool
	Cause    string
}
