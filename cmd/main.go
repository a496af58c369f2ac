// 指示: miu200521358
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/miu200521358/mu_avatar_tinker/pkg/adapter/io_scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/infra/config"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/logging"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/minteractor"
	"github.com/spf13/cobra"
)

// globalFlags は全サブコマンド共通のフラグを保持する。
type globalFlags struct {
	configPath string
	outputPath string
	logLevel   string
	force      bool
	stamped    bool
	noDummy    bool
}

// main はアバター編集CLIを実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	root := newRootCommand(out, errOut)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.Execute()
}

// newRootCommand はサブコマンドを束ねたルートコマンドを生成する。
func newRootCommand(out io.Writer, errOut io.Writer) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "mu_avatar_tinker",
		Short:         messages.HelpUsage,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", messages.FlagConfig)
	root.PersistentFlags().StringVarP(&flags.outputPath, "out", "o", "", messages.FlagOut)
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", messages.FlagLogLevel)
	root.PersistentFlags().BoolVarP(&flags.force, "force", "f", false, messages.FlagForce)
	root.PersistentFlags().BoolVar(&flags.stamped, "stamp", false, messages.FlagStamp)

	root.AddCommand(
		newClassifyCommand(flags, out, errOut),
		newMergeCommand(flags, out, errOut),
		newPhysBoneCommand(flags, out, errOut),
		newUnusedCommand(flags, out, errOut),
	)
	return root
}

// session は1回のコマンド実行で扱うシーンと依存を保持する。
type session struct {
	flags     *globalFlags
	out       io.Writer
	inputPath string
	repo      *io_scene.SceneRepository
	uc        *minteractor.AvatarTinkerUsecase
	doc       *scene.Document
}

// openSession は設定を読み込み、シーンを開く。
func openSession(flags *globalFlags, inputPath string, out io.Writer, errOut io.Writer) (*session, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("%s", messages.MessageInputRequired)
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.noDummy {
		cfg.PhysBone.CreateDummyParent = false
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(errOut)
	logger.SetLevel(level)
	logging.SetDefaultLogger(logger)

	deps, err := cfg.UsecaseDeps()
	if err != nil {
		return nil, err
	}
	repo := io_scene.NewSceneRepository()
	repo.SetLoadProgressReporter(func(event io_scene.LoadProgressEvent) {
		logger.Debug("読込進捗: type=%s nodes=%d components=%d", event.Type, event.NodeCount, event.ComponentCount)
	})
	deps.SceneReader = repo
	deps.SceneWriter = repo
	deps.ProgressReporter = newCliProgressReporter(logger)
	uc := minteractor.NewAvatarTinkerUsecase(deps)

	doc, err := uc.LoadScene(nil, inputPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", messages.MessageLoadFailed, err)
	}
	logger.Info(messages.LogLoadSuccess, inputPath)
	return &session{flags: flags, out: out, inputPath: inputPath, repo: repo, uc: uc, doc: doc}, nil
}

// save は出力先(未指定時は入力ファイルかタイムスタンプ付きフォルダ)へシーンを保存する。
func (s *session) save() error {
	outputPath, overwrite, err := minteractor.ResolveOutputPath(
		s.inputPath, s.flags.outputPath, s.flags.stamped, s.flags.force)
	if err != nil {
		return fmt.Errorf("%s: %w", messages.MessageSaveFailed, err)
	}
	if err := s.uc.SaveScene(nil, outputPath, s.doc, minteractor.SaveOptions{Overwrite: overwrite}); err != nil {
		return fmt.Errorf("%s: %w", messages.MessageSaveFailed, err)
	}
	logging.DefaultLogger().Info(messages.LogSaveSuccess, outputPath)
	return nil
}

// path は表示用のノードパスを返す。
func (s *session) path(id scene.NodeID) string {
	if !s.doc.Scene.IsAlive(id) {
		return "-"
	}
	return s.doc.Scene.Path(id)
}

// findNode はパスからノードを解決する。
func (s *session) findNode(path string) (scene.NodeID, error) {
	id, ok := s.doc.Scene.FindByPath(path)
	if !ok {
		return scene.NoNode, fmt.Errorf("ノードが見つかりません: %s", path)
	}
	return id, nil
}

// findSkinnedMesh はノードパスからスキンメッシュコンポーネントを解決する。
func (s *session) findSkinnedMesh(path string) (*scene.Component, error) {
	id, ok := s.doc.Scene.FindByPath(path)
	if ok {
		for _, component := range s.doc.Scene.Components(id) {
			if component.IsSkinnedMesh() {
				return component, nil
			}
		}
	}
	return nil, fmt.Errorf(messages.MessageMeshNotFound, path)
}

// cliProgressReporter は進捗イベントをデバッグログへ流す。
type cliProgressReporter struct {
	logger logging.ILogger
}

func newCliProgressReporter(logger logging.ILogger) *cliProgressReporter {
	return &cliProgressReporter{logger: logger}
}

// ReportTinkerProgress は進捗イベントを出力する。
func (r *cliProgressReporter) ReportTinkerProgress(event minteractor.TinkerProgressEvent) {
	if r == nil || r.logger == nil {
		return
	}
	r.logger.Debug("進捗: type=%s bones=%d nodes=%d phys=%d",
		event.Type, event.BoneCount, event.NodeCount, event.PhysCount)
}
