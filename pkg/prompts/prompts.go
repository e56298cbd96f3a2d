// Package prompts は生成・レビュー・編集の各呼び出しで使うプロンプト文面を組み立てます。
// 文面はテンプレートとして固定し、呼び出し側はコンセプト名などの穴だけを埋めます。
package prompts

import (
	"strings"
	"text/template"

	"github.com/shouni/eduviz-image-kit/pkg/domain"
)

var characterTmpl = template.Must(template.New("character").Parse(
	`Create a detailed full-body image of: {{.Description}}. ` +
		`This character will appear in multiple educational contexts. ` +
		`Focus on distinctive features that will remain consistent across different scenes. ` +
		`Style: Bright, clear educational illustration, suitable for children.`))

var conceptSceneTmpl = template.Must(template.New("concept").Parse(
	`Create an educational illustration showing {{.Concept}}.
IMPORTANT CHARACTER GUIDELINES:
1. Use the provided character image as exact reference.
2. Maintain ALL physical features of the character (appearance, clothing, style).
3. The character should be prominently featured in the scene.
4. Keep the character's proportions and style consistent.

SCENE REQUIREMENTS:
- Style: Clear educational diagram with bright colors.
- Make the concept easy to understand for students.
- Include labeled elements and simple explanations.
- Ensure the character is actively involved in demonstrating the concept.`))

var repairTmpl = template.Must(template.New("repair").Parse(
	`You are given an educational illustration of {{.Concept}}.
Apply ONLY the following corrections to the image:
{{.Directive}}

IMPORTANT INSTRUCTIONS:
1. Preserve the main character's identity exactly (appearance, clothing, style).
2. Do not change anything that is not listed above.
3. Keep the result a clear educational diagram with bright colors.`))

var editTmpl = template.Must(template.New("edit").Parse(
	`You are an expert educational illustrator.
You have been given the following image of {{.Concept}}.
Apply these edits to the image:
{{.Instruction}}

IMPORTANT INSTRUCTIONS:
1. Keep the main character from the original image (use it as a reference).
2. Maintain all physical features of the character (appearance, clothing, style).
3. Make the requested changes clearly visible and relevant to the educational concept.
4. Ensure the final image remains a clear educational diagram.`))

var critiqueRubricTmpl = template.Must(template.New("rubric").Parse(
	`You are reviewing an educational illustration of {{.Concept}}.
Evaluate the image on exactly these four dimensions:
1. Factual and scientific accuracy of the depicted concept.
2. Pedagogical clarity (is the concept easy for students to understand?).
3. Correctness of all text and labels in the image, including spelling.
4. Consistency and engagement of the recurring reference character.

Respond with ONLY a JSON array of short corrective instruction strings,
one string per problem found. If the image needs no corrections, respond
with exactly []. Do not add any other text, explanation or formatting.`))

type promptData struct {
	Description string
	Concept     string
	Directive   string
	Instruction string
}

// Character はベースキャラクター生成用のプロンプトを返します。
func Character(description string) string {
	return render(characterTmpl, promptData{Description: description})
}

// ConceptScene はコンセプトシーン生成（ドラフト）用のプロンプトを返します。
func ConceptScene(concept string) string {
	return render(conceptSceneTmpl, promptData{Concept: concept})
}

// Repair は修正指示一覧を1つの結合指示にまとめたリペア用プロンプトを返します。
func Repair(concept string, fixes domain.FixList) string {
	return render(repairTmpl, promptData{Concept: concept, Directive: fixes.Directive()})
}

// Edit は既存画像への自由編集用のプロンプトを返します。
func Edit(concept, instruction string) string {
	return render(editTmpl, promptData{Concept: concept, Instruction: instruction})
}

// CritiqueRubric はレビュー呼び出しに添える評価ルーブリックを返します。
func CritiqueRubric(concept string) string {
	return render(critiqueRubricTmpl, promptData{Concept: concept})
}

func render(tmpl *template.Template, data promptData) string {
	var b strings.Builder
	// テンプレートは静的で、フィールドはすべて string のため実行時エラーは起きない
	_ = tmpl.Execute(&b, data)
	return b.String()
}
