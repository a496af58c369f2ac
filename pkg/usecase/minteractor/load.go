// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/port/moutput"
)

// LoadScene はシーンを読み込み、構造を検証する。
func (uc *AvatarTinkerUsecase) LoadScene(rep moutput.ISceneReader, path string) (*ModelData, error) {
	repo := rep
	if repo == nil {
		repo = uc.sceneReader
	}
	if repo == nil {
		return nil, fmt.Errorf("シーン読み込みリポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("入力シーンパスが未指定です")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("読み込めない形式です: %s", path)
	}
	doc, err := repo.Load(path)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("シーン読み込み結果が空です")
	}
	if err := doc.Validate(); err != nil {
		return nil, merr.NewInvalidScene(err, "シーン構造が不正です: %s", path)
	}
	logTinkerInfo("シーン読み込み: path=%s nodes=%d", path, doc.Scene.NodeCount())
	return doc, nil
}
