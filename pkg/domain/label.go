package domain

import "strings"

// editedPrefix は編集済みエントリを元のコンセプトに紐付ける命名規約です。
const editedPrefix = "Edited_"

// EditedLabel は編集結果を保存するための派生ラベルを返します。
// 元のエントリを上書きせず、ギャラリーで元コンセプトの直後に並べられます。
func EditedLabel(origin string) string {
	return editedPrefix + origin
}

// IsEditedLabel はラベルが編集済みエントリのものかどうかを返します。
func IsEditedLabel(label string) bool {
	return strings.HasPrefix(label, editedPrefix)
}

// OriginLabel は編集済みラベルから元のコンセプトラベルを取り出します。
// 編集済みでないラベルはそのまま返します。
func OriginLabel(label string) string {
	return strings.TrimPrefix(label, editedPrefix)
}
