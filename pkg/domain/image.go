package domain

// ReferenceImage はセッション内で一貫性保持の基準となる参照画像です。
// 生成またはユーザーアップロードで作成され、以後は読み取り専用として扱います。
type ReferenceImage struct {
	Data     []byte
	MimeType string
}

// GeneratedImage は生成呼び出しの結果として得られた画像データです。
type GeneratedImage struct {
	Data     []byte
	MimeType string
}

// Reference は生成物を参照画像として再利用するための変換です。
// リペアや編集では直前の生成結果そのものをアンカーに使います。
func (g *GeneratedImage) Reference() *ReferenceImage {
	if g == nil {
		return nil
	}
	return &ReferenceImage{Data: g.Data, MimeType: g.MimeType}
}

// GenerationRequest は単一の画像生成要求です。
// Instruction は必須（トリム後に非空）、参照画像は最大1枚までです。
// 利用する API は複数画像の融合をサポートしないため、複数参照は持たせません。
type GenerationRequest struct {
	Instruction string
	Reference   *ReferenceImage
}
