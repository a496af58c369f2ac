// 指示: miu200521358
package scene

import (
	"encoding/json"
	"fmt"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/tiendc/go-deepcopy"
)

// PhysBoneTypeName は揺れものコンポーネントの型名。
const PhysBoneTypeName = "VRCPhysBone"

// PhysBoneParams は揺れものの物理パラメータを表す。
// グラフ参照(root/除外リスト)を含まないため、設定比較に使える。
type PhysBoneParams struct {
	Pull           float64            `json:"pull" yaml:"pull"`
	Spring         float64            `json:"spring" yaml:"spring"`
	Stiffness      float64            `json:"stiffness" yaml:"stiffness"`
	Gravity        float64            `json:"gravity" yaml:"gravity"`
	GravityFalloff float64            `json:"gravityFalloff" yaml:"gravity_falloff"`
	Immobile       float64            `json:"immobile" yaml:"immobile"`
	Radius         float64            `json:"radius" yaml:"radius"`
	AllowCollision bool               `json:"allowCollision" yaml:"allow_collision"`
	LimitType      string             `json:"limitType" yaml:"limit_type"`
	MaxAngleX      float64            `json:"maxAngleX" yaml:"max_angle_x"`
	MaxAngleZ      float64            `json:"maxAngleZ" yaml:"max_angle_z"`
	Colliders      []ComponentID      `json:"colliders" yaml:"colliders"`
	Extra          map[string]float64 `json:"extra" yaml:"extra"`
}

// PhysBoneSettings は揺れものコンポーネントの設定を表す。
type PhysBoneSettings struct {
	// Root は揺れの起点。NoNode の場合は付与先ノードを起点とする。
	Root           NodeID               `json:"root"`
	Ignore         []NodeID             `json:"ignore"`
	MultiChildType model.MultiChildType `json:"multiChildType"`
	Params         PhysBoneParams       `json:"params"`
}

// Clone は設定の深い複製を返す。
func (s *PhysBoneSettings) Clone() (*PhysBoneSettings, error) {
	if s == nil {
		return nil, fmt.Errorf("揺れもの設定が未設定です")
	}
	cloned := &PhysBoneSettings{
		Root:           s.Root,
		Ignore:         append([]NodeID(nil), s.Ignore...),
		MultiChildType: s.MultiChildType,
	}
	if err := deepcopy.Copy(&cloned.Params, &s.Params); err != nil {
		return nil, fmt.Errorf("揺れもの設定の複製に失敗しました: %w", err)
	}
	return cloned, nil
}

// SettingFingerprint は root と除外リストを空にした設定のシリアライズ結果を返す。
// 同じ物理設定かどうかはこの結果のバイト列一致で判定する。
func (s *PhysBoneSettings) SettingFingerprint() (string, error) {
	blanked, err := s.Clone()
	if err != nil {
		return "", err
	}
	blanked.Root = NoNode
	blanked.Ignore = []NodeID{}
	if blanked.Params.Colliders == nil {
		blanked.Params.Colliders = []ComponentID{}
	}
	if blanked.Params.Extra == nil {
		blanked.Params.Extra = map[string]float64{}
	}
	data, err := json.Marshal(blanked)
	if err != nil {
		return "", fmt.Errorf("揺れもの設定のシリアライズに失敗しました: %w", err)
	}
	return string(data), nil
}

// IsIgnored は除外リストに含まれるか判定する。
func (s *PhysBoneSettings) IsIgnored(id NodeID) bool {
	if s == nil {
		return false
	}
	for _, ignored := range s.Ignore {
		if ignored == id {
			return true
		}
	}
	return false
}
