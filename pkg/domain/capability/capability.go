// 指示: miu200521358
// Package capability は付け替えや削除をしてはいけないコンポーネントの判定を提供する。
package capability

import (
	"strings"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
)

// DefaultMarkers は型名の部分一致で構造上重要とみなす既定の目印。
var DefaultMarkers = []string{
	// DynamicBone, PhysBone, SpringBone
	"Bone",
	"Collider",
	"Constraint",
	"Mesh",
	"Animation",
	"Particle",
	"Animator",
	"Trail",
	"Cloth",
	"Light",
	"RigidBody",
	"Joint",
	"Camera",
	"FlareLayer",
	"GUILayer",
	"AudioSource",
	"IK",
}

// Predicate はコンポーネントが構造上重要か判定する契約を表す。
type Predicate interface {
	// IsSignificant は黙って付け替え・削除してはいけないコンポーネントか判定する。
	IsSignificant(component *scene.Component) bool
}

// DenyList は型名の部分一致で判定する。
type DenyList struct {
	Markers []string
}

// NewDenyList は目印を指定して生成する。空の場合は既定の目印を使う。
func NewDenyList(markers []string) *DenyList {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return &DenyList{Markers: append([]string(nil), markers...)}
}

// IsSignificant は型名に目印のいずれかを含むか判定する。
func (d *DenyList) IsSignificant(component *scene.Component) bool {
	if component == nil {
		return false
	}
	for _, marker := range d.Markers {
		if marker != "" && strings.Contains(component.TypeName, marker) {
			return true
		}
	}
	return false
}

// KindTable は能力タグの表で判定する。
type KindTable map[scene.ComponentKind]bool

// DefaultKindTable は既定の目印と同じ範囲を能力タグで表した表を返す。
func DefaultKindTable() KindTable {
	return KindTable{
		scene.ComponentKindMeshRenderer:        true,
		scene.ComponentKindSkinnedMeshRenderer: true,
		scene.ComponentKindPhysBone:            true,
		scene.ComponentKindPhysBoneCollider:    true,
		scene.ComponentKindConstraint:          true,
		scene.ComponentKindAnimator:            true,
		scene.ComponentKindAnimation:           true,
		scene.ComponentKindParticle:            true,
		scene.ComponentKindTrail:               true,
		scene.ComponentKindCloth:               true,
		scene.ComponentKindLight:               true,
		scene.ComponentKindRigidbody:           true,
		scene.ComponentKindJoint:               true,
		scene.ComponentKindCamera:              true,
		scene.ComponentKindAudio:               true,
		scene.ComponentKindIK:                  true,
	}
}

// IsSignificant は能力タグが表で true か判定する。
func (t KindTable) IsSignificant(component *scene.Component) bool {
	if component == nil {
		return false
	}
	return t[component.Kind]
}

// Any は複数の判定のいずれかが true なら重要とみなす。
type Any []Predicate

// IsSignificant はいずれかの判定が true か判定する。
func (a Any) IsSignificant(component *scene.Component) bool {
	for _, p := range a {
		if p != nil && p.IsSignificant(component) {
			return true
		}
	}
	return false
}

// HasSignificant はノードに重要なコンポーネントが付与されているか判定する。
func HasSignificant(p Predicate, s *scene.Scene, id scene.NodeID) bool {
	if p == nil {
		return false
	}
	for _, component := range s.Components(id) {
		if p.IsSignificant(component) {
			return true
		}
	}
	return false
}
