// 指示: miu200521358
package scene

import (
	"fmt"
	"strings"
)

// ComponentID はコンポーネントの識別子を表す。再利用されない。
type ComponentID uint64

// NoComponent は参照なしを表す。
const NoComponent ComponentID = 0

// ComponentKind はコンポーネントの能力タグを表す。
type ComponentKind int

const (
	ComponentKindUnknown ComponentKind = iota
	ComponentKindMeshRenderer
	ComponentKindSkinnedMeshRenderer
	ComponentKindPhysBone
	ComponentKindPhysBoneCollider
	ComponentKindConstraint
	ComponentKindAnimator
	ComponentKindAnimation
	ComponentKindParticle
	ComponentKindTrail
	ComponentKindCloth
	ComponentKindLight
	ComponentKindRigidbody
	ComponentKindJoint
	ComponentKindCamera
	ComponentKindAudio
	ComponentKindIK
	ComponentKindScript
)

var componentKindNames = [...]string{
	"Unknown",
	"MeshRenderer",
	"SkinnedMeshRenderer",
	"PhysBone",
	"PhysBoneCollider",
	"Constraint",
	"Animator",
	"Animation",
	"Particle",
	"Trail",
	"Cloth",
	"Light",
	"Rigidbody",
	"Joint",
	"Camera",
	"Audio",
	"IK",
	"Script",
}

// String は能力タグ名を返す。
func (k ComponentKind) String() string {
	if k < ComponentKindUnknown || int(k) >= len(componentKindNames) {
		return fmt.Sprintf("ComponentKind(%d)", int(k))
	}
	return componentKindNames[k]
}

// ParseComponentKind は名前から能力タグを解決する。未知の名前は Unknown を返す。
func ParseComponentKind(name string) ComponentKind {
	for i, n := range componentKindNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return ComponentKind(i)
		}
	}
	return ComponentKindUnknown
}

// Component はノードに付与されたコンポーネントを表す。
// 型名と能力タグ以外の中身は、明示的に扱う SkinnedMesh と PhysBone のみ保持する。
type Component struct {
	id          ComponentID
	owner       NodeID
	TypeName    string
	Kind        ComponentKind
	SkinnedMesh *SkinnedMesh
	PhysBone    *PhysBoneSettings
}

// NewComponent は型名と能力タグを指定してコンポーネントを生成する。
func NewComponent(typeName string, kind ComponentKind) *Component {
	return &Component{TypeName: typeName, Kind: kind}
}

// NewSkinnedMeshComponent はスキンメッシュコンポーネントを生成する。
func NewSkinnedMeshComponent(mesh *SkinnedMesh) *Component {
	return &Component{
		TypeName:    "SkinnedMeshRenderer",
		Kind:        ComponentKindSkinnedMeshRenderer,
		SkinnedMesh: mesh,
	}
}

// NewPhysBoneComponent は揺れものコンポーネントを生成する。
func NewPhysBoneComponent(settings *PhysBoneSettings) *Component {
	return &Component{
		TypeName: PhysBoneTypeName,
		Kind:     ComponentKindPhysBone,
		PhysBone: settings,
	}
}

// ID はコンポーネントIDを返す。
func (c *Component) ID() ComponentID { return c.id }

// Owner は付与先ノードIDを返す。
func (c *Component) Owner() NodeID { return c.owner }

// IsSkinnedMesh はスキンメッシュを持つか判定する。
func (c *Component) IsSkinnedMesh() bool {
	return c != nil && c.SkinnedMesh != nil
}

// IsPhysBone は揺れもの設定を持つか判定する。
func (c *Component) IsPhysBone() bool {
	return c != nil && c.PhysBone != nil
}
