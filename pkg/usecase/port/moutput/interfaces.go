// 指示: miu200521358
package moutput

import "github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"

// SaveOptions は保存時のオプションを表す。
type SaveOptions struct {
	// Overwrite が false の場合は既存ファイルへ上書きしない。
	Overwrite bool
}

// ISceneReader はシーン読み込み契約を表す。
type ISceneReader interface {
	// CanLoad は読み込み可能なパスか判定する。
	CanLoad(path string) bool
	// Load はシーンを読み込む。
	Load(path string) (*scene.Document, error)
}

// ISceneWriter はシーン保存契約を表す。
type ISceneWriter interface {
	// Save はシーンを保存する。
	Save(path string, doc *scene.Document, opts SaveOptions) error
}
