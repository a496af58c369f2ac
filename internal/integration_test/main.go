// 指示: miu200521358
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_avatar_tinker/pkg/adapter/io_scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/infra/config"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/minteractor"
	"github.com/spf13/cobra"
)

const (
	batchOutputDirMode = 0o755
)

// batchConfig はバッチ整理の実行設定を表す。
type batchConfig struct {
	OutputRoot   string
	ConfigPath   string
	DryRun       bool
	FailFast     bool
	SkipMerge    bool
	SkipPhysBone bool
	SkipUnused   bool
}

// tinkerEntry は1シーン分の整理入力情報を表す。
type tinkerEntry struct {
	Index      int
	SourcePath string
	SceneName  string
	CaseDir    string
	OutputPath string
}

// tinkerResult は1シーン分の整理結果を表す。
type tinkerResult struct {
	Entry     tinkerEntry
	Status    string
	Duration  time.Duration
	Err       error
	StageInfo string
}

// tinkerProgressCollector は整理処理の進捗イベントを収集する。
type tinkerProgressCollector struct {
	eventCounts map[minteractor.TinkerProgressEventType]int
	bonesMerged int
	nodesCut    int
	physMax     int
}

// main はシーンファイルの一括整理を実行する。
func main() {
	os.Exit(run(os.Args[1:]))
}

// run は実行設定を解決して一括整理を実行し、終了コードを返す。
func run(args []string) int {
	code := 0
	cmd := newBatchCommand(&code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	return code
}

// newBatchCommand は一括整理コマンドを生成する。終了コードは code へ書き込む。
func newBatchCommand(code *int) *cobra.Command {
	cfg := batchConfig{}
	cmd := &cobra.Command{
		Use:           "integration_test <scene.yaml>...",
		Short:         "シーンファイルを一括で整理する",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.OutputRoot = strings.TrimSpace(cfg.OutputRoot)
			if cfg.OutputRoot == "" {
				return errors.New("output-root が空です")
			}
			cfg.OutputRoot = filepath.Clean(cfg.OutputRoot)
			entries := buildTinkerEntries(cfg.OutputRoot, args)
			if len(entries) == 0 {
				fmt.Fprintln(os.Stderr, "整理対象シーンがありません")
				*code = 2
				return nil
			}
			results, err := executeBatch(cfg, entries)
			if err != nil {
				return err
			}
			printBatchSummary(results)
			for _, result := range results {
				if result.Status == "failed" {
					*code = 1
					break
				}
			}
			return nil
		},
	}
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		defaultOutputRoot = "output"
	}
	cmd.Flags().StringVar(&cfg.OutputRoot, "output-root", defaultOutputRoot, "整理結果の出力ルートディレクトリ")
	cmd.Flags().StringVar(&cfg.ConfigPath, "config", "", "設定ファイルのパス")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "実処理せず、入力解決と出力先計画のみ表示する")
	cmd.Flags().BoolVar(&cfg.FailFast, "fail-fast", false, "失敗時に即時終了する")
	cmd.Flags().BoolVar(&cfg.SkipMerge, "skip-merge", false, "冗長ボーン統合を行わない")
	cmd.Flags().BoolVar(&cfg.SkipPhysBone, "skip-physbone", false, "揺れもの一括統合を行わない")
	cmd.Flags().BoolVar(&cfg.SkipUnused, "skip-unused", false, "未使用ボーン削除を行わない")
	return cmd
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// buildTinkerEntries は入力パス一覧から整理対象エントリを生成する。
func buildTinkerEntries(outputRoot string, inputPaths []string) []tinkerEntry {
	entries := make([]tinkerEntry, 0, len(inputPaths))
	for _, rawPath := range inputPaths {
		resolvedInputPath := normalizeInputPath(rawPath)
		if resolvedInputPath == "" {
			continue
		}
		index := len(entries) + 1
		sceneName := resolveSceneName(rawPath)
		safeSceneName := sanitizePathComponent(sceneName)
		caseDir := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", index, safeSceneName))
		entries = append(entries, tinkerEntry{
			Index:      index,
			SourcePath: resolvedInputPath,
			SceneName:  sceneName,
			CaseDir:    caseDir,
			OutputPath: filepath.Join(caseDir, safeSceneName+".yaml"),
		})
	}
	return entries
}

// executeBatch は全シーンの整理処理を順次実行する。
func executeBatch(cfg batchConfig, entries []tinkerEntry) ([]tinkerResult, error) {
	appConfig, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	deps, err := appConfig.UsecaseDeps()
	if err != nil {
		return nil, err
	}
	repo := io_scene.NewSceneRepository()
	deps.SceneReader = repo
	deps.SceneWriter = repo

	results := make([]tinkerResult, 0, len(entries))
	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 整理開始: scene=%s\n", entry.Index, total, entry.SceneName)
		result := tinkerSceneEntry(deps, cfg, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 整理成功: scene=%s output=%s elapsed=%s\n",
				entry.Index, total, entry.SceneName, entry.OutputPath, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.StageInfo) != "" {
				fmt.Printf("[%d/%d] 整理進捗: %s\n", entry.Index, total, result.StageInfo)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: scene=%s input=%s output=%s\n",
				entry.Index, total, entry.SceneName, entry.SourcePath, entry.OutputPath)
		case "skipped_missing":
			fmt.Printf("[%d/%d] 入力不足でスキップ: scene=%s input=%s reason=%v\n",
				entry.Index, total, entry.SceneName, entry.SourcePath, result.Err)
		default:
			fmt.Printf("[%d/%d] 整理失敗: scene=%s reason=%v\n", entry.Index, total, entry.SceneName, result.Err)
			if cfg.FailFast {
				return results, nil
			}
		}
	}
	return results, nil
}

// tinkerSceneEntry は1シーン分の整理を実行する。
func tinkerSceneEntry(deps minteractor.AvatarTinkerUsecaseDeps, cfg batchConfig, entry tinkerEntry) tinkerResult {
	result := tinkerResult{
		Entry:  entry,
		Status: "failed",
	}
	if _, err := os.Stat(entry.SourcePath); err != nil {
		result.Status = "skipped_missing"
		result.Err = err
		return result
	}
	if cfg.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	progressCollector := newTinkerProgressCollector()
	deps.ProgressReporter = progressCollector
	usecase := minteractor.NewAvatarTinkerUsecase(deps)
	doc, err := usecase.LoadScene(nil, entry.SourcePath)
	if err != nil {
		result.Err = fmt.Errorf("LoadSceneに失敗しました: %w", err)
		return result
	}
	if !cfg.SkipMerge {
		if err := mergeAllMeshes(usecase, doc); err != nil {
			result.Err = err
			return result
		}
	}
	if !cfg.SkipPhysBone {
		if _, _, err := usecase.CombineAllPhysBones(doc); err != nil {
			result.Err = fmt.Errorf("CombineAllPhysBonesに失敗しました: %w", err)
			return result
		}
	}
	if !cfg.SkipUnused {
		set, err := usecase.FindUnusedBones(doc, scene.NoNode)
		if err != nil {
			result.Err = fmt.Errorf("FindUnusedBonesに失敗しました: %w", err)
			return result
		}
		if _, err := usecase.DeleteUnusedBones(doc, set); err != nil {
			result.Err = fmt.Errorf("DeleteUnusedBonesに失敗しました: %w", err)
			return result
		}
	}
	doc.Path = entry.OutputPath
	if err := usecase.SaveScene(nil, entry.OutputPath, doc, minteractor.SaveOptions{Overwrite: true}); err != nil {
		result.Err = fmt.Errorf("SaveSceneに失敗しました: %w", err)
		return result
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.StageInfo = progressCollector.Summary()
	return result
}

// mergeAllMeshes はアバター配下の全スキンメッシュについて冗長ボーンを統合する。
func mergeAllMeshes(usecase *minteractor.AvatarTinkerUsecase, doc *scene.Document) error {
	for _, mesh := range doc.Scene.SkinnedMeshesInChildren(doc.Avatar.Root) {
		if _, ok := doc.Scene.Component(mesh.ID()); !ok {
			continue
		}
		set, err := usecase.ClassifyBones(doc, mesh.ID())
		if err != nil {
			return fmt.Errorf("ClassifyBonesに失敗しました: mesh=%s: %w", mesh.SkinnedMesh.Name, err)
		}
		if _, err := usecase.MergeRedundantBones(doc, set); err != nil {
			return fmt.Errorf("MergeRedundantBonesに失敗しました: mesh=%s: %w", mesh.SkinnedMesh.Name, err)
		}
	}
	return nil
}

// printBatchSummary は整理結果の集計を標準出力へ表示する。
func printBatchSummary(results []tinkerResult) {
	succeeded := 0
	failed := 0
	skipped := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		case "skipped_missing":
			skipped++
		default:
			failed++
		}
	}
	fmt.Printf(
		"バッチ整理サマリ: total=%d succeeded=%d failed=%d skipped_missing=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		skipped,
		dryRun,
	)
}

// resolveSceneName は入力パスから拡張子を除いたシーン名を返す。
func resolveSceneName(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	ext := filepath.Ext(base)
	name := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if name == "" {
		return "scene"
	}
	return name
}

// normalizeInputPath は入力パスを実行環境向けに正規化する。
func normalizeInputPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Clean(convertWindowsPathToWsl(path))
}

// convertWindowsPathToWsl は Linux 実行時に Windows パスを WSL パスへ変換する。
func convertWindowsPathToWsl(path string) string {
	trimmed := strings.TrimSpace(path)
	if runtime.GOOS != "linux" {
		return trimmed
	}
	if len(trimmed) < 2 || trimmed[1] != ':' {
		return trimmed
	}
	drive := strings.ToLower(trimmed[:1])
	rest := strings.ReplaceAll(trimmed[2:], "\\", "/")
	if rest == "" {
		return filepath.ToSlash(filepath.Join("/mnt", drive))
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return filepath.ToSlash(filepath.Join("/mnt", drive) + rest)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "scene"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "scene"
	}
	return replaced
}

// newTinkerProgressCollector は整理進捗収集器を生成する。
func newTinkerProgressCollector() *tinkerProgressCollector {
	return &tinkerProgressCollector{
		eventCounts: map[minteractor.TinkerProgressEventType]int{},
	}
}

// ReportTinkerProgress は整理処理の進捗イベントを収集する。
func (collector *tinkerProgressCollector) ReportTinkerProgress(event minteractor.TinkerProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.TinkerProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	switch event.Type {
	case minteractor.TinkerProgressEventTypeBonesMerged:
		collector.bonesMerged += event.BoneCount
	case minteractor.TinkerProgressEventTypeUnusedBonesDeleted:
		collector.nodesCut += event.NodeCount
	}
	if event.PhysCount > collector.physMax {
		collector.physMax = event.PhysCount
	}
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *tinkerProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for stageType := range collector.eventCounts {
		types = append(types, string(stageType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"events=%d merged=%d deleted=%d physMax=%d stages=%s",
		len(collector.eventCounts),
		collector.bonesMerged,
		collector.nodesCut,
		collector.physMax,
		strings.Join(types, ","),
	)
}
