// 指示: miu200521358
package io_scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/logging"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/port/moutput"
	"gopkg.in/yaml.v3"
)

// LoadProgressEventType はシーン読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeYamlParsed はYAML解析完了イベントを表す。
	LoadProgressEventTypeYamlParsed LoadProgressEventType = "yaml_parsed"
	// LoadProgressEventTypeCompleted はシーン構築完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はシーン読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type           LoadProgressEventType
	FileSizeBytes  int
	NodeCount      int
	ComponentCount int
}

// SceneRepository はYAMLシーンファイルの読み書きを行う。
type SceneRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewSceneRepository はSceneRepositoryを生成する。
func NewSceneRepository() *SceneRepository {
	return &SceneRepository{}
}

// SetLoadProgressReporter は読込進捗通知コールバックを設定する。
func (r *SceneRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読込可否を判定する。
func (r *SceneRepository) CanLoad(path string) bool {
	ext := filepath.Ext(path)
	return strings.EqualFold(ext, ".yaml") || strings.EqualFold(ext, ".yml")
}

// InferName は拡張子を除いたファイル名を返す。
func (r *SceneRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はYAMLシーンファイルを読み込み、ドキュメントを返す。
func (r *SceneRepository) Load(path string) (*scene.Document, error) {
	if !r.CanLoad(path) {
		return nil, merr.NewIoExtInvalid(path, nil)
	}
	logSceneInfo("シーン読込開始: file=%s", path)

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, merr.NewIoFileNotFound(path, err)
		}
		return nil, merr.NewIoParseFailed("シーンファイルの読み込みに失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeFileReadComplete,
		FileSizeBytes: len(b),
	})

	file := sceneFile{}
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, merr.NewIoParseFailed("シーンファイルの解析に失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeYamlParsed,
		FileSizeBytes: len(b),
		NodeCount:     len(file.Nodes),
	})
	logSceneDebug("シーン読込ステップ: YAML解析完了 nodes=%d", len(file.Nodes))

	doc, err := buildDocument(path, &file)
	if err != nil {
		return nil, err
	}
	componentCount := len(doc.Scene.ComponentsInChildren(doc.Avatar.Root))
	r.reportLoadProgress(LoadProgressEvent{
		Type:           LoadProgressEventTypeCompleted,
		FileSizeBytes:  len(b),
		NodeCount:      doc.Scene.NodeCount(),
		ComponentCount: componentCount,
	})
	logSceneInfo("シーン読込完了: file=%s nodes=%d components=%d",
		r.InferName(path), doc.Scene.NodeCount(), componentCount)
	return doc, nil
}

// Save はドキュメントをYAMLシーンファイルへ書き出す。
func (r *SceneRepository) Save(path string, doc *scene.Document, opts moutput.SaveOptions) error {
	if !r.CanLoad(path) {
		return merr.NewIoExtInvalid(path, nil)
	}
	if doc == nil || doc.Scene == nil || doc.Avatar == nil {
		return merr.NewIoSaveFailed("保存対象のシーンが未設定です", nil)
	}
	if !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return merr.NewIoSaveFailed(fmt.Sprintf("出力先が既に存在します: %s", path), nil)
		}
	}
	file, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(file); err != nil {
		return merr.NewIoSaveFailed("シーンファイルのシリアライズに失敗しました", err)
	}
	if err := encoder.Close(); err != nil {
		return merr.NewIoSaveFailed("シーンファイルのシリアライズに失敗しました", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return merr.NewIoSaveFailed("出力先フォルダの作成に失敗しました", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return merr.NewIoSaveFailed("シーンファイルの書き込みに失敗しました", err)
	}
	logSceneInfo("シーン保存完了: file=%s nodes=%d", path, len(file.Nodes))
	return nil
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *SceneRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// logSceneInfo はシーン入出力のINFOログを出力する。
func logSceneInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logSceneDebug はシーン入出力のデバッグログを出力する。
func logSceneDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// logSceneWarn はシーン入出力の警告ログを出力する。
func logSceneWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
