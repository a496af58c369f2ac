// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const defaultSceneExt = ".yaml"

var nowFunc = time.Now

// BuildDefaultOutputPath は入力シーンパスから既定の出力パスを生成する。
func BuildDefaultOutputPath(inputPath string) string {
	return buildDefaultOutputPathAt(inputPath, nowFunc())
}

// buildDefaultOutputPathAt は指定時刻で既定の出力パスを生成する。
func buildDefaultOutputPathAt(inputPath string, now time.Time) string {
	dir := filepath.Dir(inputPath)
	ext := filepath.Ext(inputPath)
	base := strings.TrimSpace(strings.TrimSuffix(filepath.Base(inputPath), ext))
	if base == "" {
		return ""
	}
	if ext == "" {
		ext = defaultSceneExt
	}
	stamp := now.Format("20060102150405")
	outDir := filepath.Join(dir, fmt.Sprintf("%s_%s", base, stamp))
	return filepath.Join(outDir, base+ext)
}

// ResolveOutputPath は明示指定・タイムスタンプ指定・上書きの順で出力パスと上書き可否を決める。
func ResolveOutputPath(inputPath string, outputPath string, stamped bool, force bool) (string, bool, error) {
	if trimmed := strings.TrimSpace(outputPath); trimmed != "" {
		return trimmed, force, nil
	}
	if stamped {
		path := BuildDefaultOutputPath(inputPath)
		if path == "" {
			return "", false, fmt.Errorf("出力パスの解決に失敗しました: %s", inputPath)
		}
		return path, force, nil
	}
	if strings.TrimSpace(inputPath) == "" {
		return "", false, fmt.Errorf("保存先パスが未指定です")
	}
	return inputPath, true, nil
}
