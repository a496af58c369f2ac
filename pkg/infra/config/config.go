// 指示: miu200521358
// Package config は設定ファイルと環境変数から実行設定を読み込む。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/capability"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/logging"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/minteractor"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName は設定ファイルの既定名。
	DefaultFileName = "mu_avatar_tinker.yaml"
	// EnvPrefix は上書き用環境変数の接頭辞。
	EnvPrefix = "MU_AVATAR_TINKER_"
)

// 重要コンポーネント判定の方式。
const (
	PredicateDenyList  = "deny_list"
	PredicateKindTable = "kind_table"
	PredicateAny       = "any"
)

// Config は実行設定を表す。
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Classifier ClassifierConfig `yaml:"classifier"`
	PhysBone   PhysBoneConfig   `yaml:"phys_bone"`
}

// ClassifierConfig はボーン分類の設定を表す。
type ClassifierConfig struct {
	Epsilon     float64  `yaml:"epsilon"`
	Predicate   string   `yaml:"predicate"`
	DenyMarkers []string `yaml:"deny_markers"`
}

// PhysBoneConfig は揺れもの編集の設定を表す。
type PhysBoneConfig struct {
	Destination       string `yaml:"destination"`
	CreateDummyParent bool   `yaml:"create_dummy_parent"`
}

// Default は既定設定を返す。
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Classifier: ClassifierConfig{
			Epsilon:   mmath.DefaultOffsetEpsilon,
			Predicate: PredicateDenyList,
		},
		PhysBone: PhysBoneConfig{
			Destination:       model.PhysBoneDestinationPhysBoneRoot.String(),
			CreateDummyParent: true,
		},
	}
}

// Load は .env、設定ファイル、環境変数の順に設定を重ねて読み込む。
// path が空の場合は既定名のファイルを探し、存在しなければ既定設定を使う。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".env の読み込みに失敗しました: %w", err)
	}

	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFileName
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(b, cfg); err != nil {
			return nil, fmt.Errorf("設定ファイルの解析に失敗しました: %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode はYAMLを既定設定の上へ重ねる。
func decode(b []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv は環境変数で設定を上書きする。
func (c *Config) applyEnv() error {
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookupEnv("EPSILON"); ok {
		epsilon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("環境変数 %sEPSILON が不正です: %w", EnvPrefix, err)
		}
		c.Classifier.Epsilon = epsilon
	}
	if v, ok := lookupEnv("PREDICATE"); ok {
		c.Classifier.Predicate = v
	}
	if v, ok := lookupEnv("DENY_MARKERS"); ok {
		markers := make([]string, 0)
		for _, marker := range strings.Split(v, ",") {
			if marker = strings.TrimSpace(marker); marker != "" {
				markers = append(markers, marker)
			}
		}
		c.Classifier.DenyMarkers = markers
	}
	if v, ok := lookupEnv("PHYS_BONE_DESTINATION"); ok {
		c.PhysBone.Destination = v
	}
	if v, ok := lookupEnv("CREATE_DUMMY_PARENT"); ok {
		createDummy, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("環境変数 %sCREATE_DUMMY_PARENT が不正です: %w", EnvPrefix, err)
		}
		c.PhysBone.CreateDummyParent = createDummy
	}
	return nil
}

// lookupEnv は接頭辞付きの環境変数を取得する。空文字は未設定として扱う。
func lookupEnv(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + name))
	return v, v != ""
}

// Validate は設定値を検証する。
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Classifier.Epsilon <= 0 {
		return fmt.Errorf("classifier.epsilon は正の値で指定してください: %v", c.Classifier.Epsilon)
	}
	if _, err := c.Predicate(); err != nil {
		return err
	}
	if _, err := c.PhysBoneOptions(); err != nil {
		return err
	}
	return nil
}

// Level はログレベルを返す。
func (c *Config) Level() (logging.LogLevel, error) {
	return logging.ParseLogLevel(c.LogLevel)
}

// Predicate は重要コンポーネント判定を返す。
func (c *Config) Predicate() (capability.Predicate, error) {
	switch strings.ToLower(strings.TrimSpace(c.Classifier.Predicate)) {
	case "", PredicateDenyList:
		return capability.NewDenyList(c.Classifier.DenyMarkers), nil
	case PredicateKindTable:
		return capability.DefaultKindTable(), nil
	case PredicateAny:
		return capability.Any{capability.NewDenyList(c.Classifier.DenyMarkers), capability.DefaultKindTable()}, nil
	}
	return nil, fmt.Errorf("classifier.predicate が不正です: %s", c.Classifier.Predicate)
}

// PhysBoneOptions は揺れもの編集の設定を返す。
func (c *Config) PhysBoneOptions() (minteractor.PhysBoneOptions, error) {
	destination, err := model.ParsePhysBoneDestination(c.PhysBone.Destination)
	if err != nil {
		return minteractor.PhysBoneOptions{}, err
	}
	return minteractor.PhysBoneOptions{
		Destination:       destination,
		CreateDummyParent: c.PhysBone.CreateDummyParent,
	}, nil
}

// UsecaseDeps は設定をユースケースの依存へ反映する。
func (c *Config) UsecaseDeps() (minteractor.AvatarTinkerUsecaseDeps, error) {
	predicate, err := c.Predicate()
	if err != nil {
		return minteractor.AvatarTinkerUsecaseDeps{}, err
	}
	physBoneOptions, err := c.PhysBoneOptions()
	if err != nil {
		return minteractor.AvatarTinkerUsecaseDeps{}, err
	}
	return minteractor.AvatarTinkerUsecaseDeps{
		Predicate:       predicate,
		Epsilon:         c.Classifier.Epsilon,
		PhysBoneOptions: &physBoneOptions,
	}, nil
}
