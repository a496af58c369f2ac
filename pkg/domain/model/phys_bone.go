// 指示: miu200521358
package model

import (
	"fmt"
	"strings"
)

// PhysBoneRole は揺れものコンポーネントの構成状態を表す。
type PhysBoneRole int

const (
	// PhysBoneRoleUnknown は設定未取得を表す。
	PhysBoneRoleUnknown PhysBoneRole = iota
	// PhysBoneRoleComposed は1コンポーネントが除外リストで複数子を制御している状態を表す。
	PhysBoneRoleComposed
	// PhysBoneRoleDisassembled は同設定の兄弟コンポーネントが子ごとに並んでいる状態を表す。
	PhysBoneRoleDisassembled
	// PhysBoneRoleIndependent は有効な子が1つだけの単独コンポーネントを表す。
	PhysBoneRoleIndependent
)

// String は構成状態名を返す。
func (r PhysBoneRole) String() string {
	switch r {
	case PhysBoneRoleComposed:
		return "Composed"
	case PhysBoneRoleDisassembled:
		return "Disassembled"
	case PhysBoneRoleIndependent:
		return "Independent"
	default:
		return "Unknown"
	}
}

// MultiChildType は複数子の扱いを表す。
type MultiChildType int

const (
	// MultiChildTypeIgnore は除外リスト以外の子を個別に揺らす。
	MultiChildTypeIgnore MultiChildType = iota
	// MultiChildTypeFirst は最初の子のみを使う。
	MultiChildTypeFirst
	// MultiChildTypeAverage は子を平均して揺らす。
	MultiChildTypeAverage
)

var multiChildTypeNames = [...]string{"Ignore", "First", "Average"}

// String は種別名を返す。
func (t MultiChildType) String() string {
	if t < MultiChildTypeIgnore || int(t) >= len(multiChildTypeNames) {
		return fmt.Sprintf("MultiChildType(%d)", int(t))
	}
	return multiChildTypeNames[t]
}

// ParseMultiChildType は名前から種別を解決する。
func ParseMultiChildType(name string) (MultiChildType, error) {
	for i, n := range multiChildTypeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return MultiChildType(i), nil
		}
	}
	return MultiChildTypeIgnore, fmt.Errorf("MultiChildType が不正です: %s", name)
}

// PhysBoneDestination は揺れものコンポーネントの移設先を表す。
type PhysBoneDestination int

const (
	// PhysBoneDestinationAvatarRoot はアバタールートへ移設する。
	PhysBoneDestinationAvatarRoot PhysBoneDestination = iota
	// PhysBoneDestinationHipParent は Hips の親へ移設する。
	PhysBoneDestinationHipParent
	// PhysBoneDestinationHipBone は Hips へ移設する。
	PhysBoneDestinationHipBone
	// PhysBoneDestinationPhysBoneRootParent は揺れもの root の親へ移設する。
	PhysBoneDestinationPhysBoneRootParent
	// PhysBoneDestinationPhysBoneRoot は揺れもの root へ移設する。
	PhysBoneDestinationPhysBoneRoot
	// PhysBoneDestinationParentBone は親ボーン候補へ移設する。
	PhysBoneDestinationParentBone
	// PhysBoneDestinationFirstChildBone は先頭の子ボーン候補へ移設する。
	PhysBoneDestinationFirstChildBone
)

var physBoneDestinationNames = [...]string{
	"AvatarRoot",
	"HipParent",
	"HipBone",
	"PhysBoneRootParent",
	"PhysBoneRoot",
	"ParentBone",
	"FirstChildBone",
}

// String は移設先名を返す。
func (d PhysBoneDestination) String() string {
	if d < PhysBoneDestinationAvatarRoot || int(d) >= len(physBoneDestinationNames) {
		return fmt.Sprintf("PhysBoneDestination(%d)", int(d))
	}
	return physBoneDestinationNames[d]
}

// ParsePhysBoneDestination は名前から移設先を解決する。
func ParsePhysBoneDestination(name string) (PhysBoneDestination, error) {
	for i, n := range physBoneDestinationNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return PhysBoneDestination(i), nil
		}
	}
	return PhysBoneDestinationPhysBoneRoot, fmt.Errorf("移設先が不正です: %s", name)
}
