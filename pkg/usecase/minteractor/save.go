// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/port/moutput"
)

// SaveScene はシーンを保存する。
func (uc *AvatarTinkerUsecase) SaveScene(rep moutput.ISceneWriter, path string, modelData *ModelData, opts SaveOptions) error {
	writer := rep
	if writer == nil {
		writer = uc.sceneWriter
	}
	if writer == nil {
		return fmt.Errorf("シーン保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if modelData == nil || modelData.Scene == nil {
		return fmt.Errorf("保存対象シーンが未設定です")
	}
	if err := writer.Save(path, modelData, opts); err != nil {
		return err
	}
	logTinkerInfo("シーン保存: path=%s nodes=%d", path, modelData.Scene.NodeCount())
	return nil
}
