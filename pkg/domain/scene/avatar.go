// 指示: miu200521358
package scene

import (
	"fmt"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
)

// Avatar はアバタールートと Humanoid 標準ボーン対応(正準スケルトン)を表す。
type Avatar struct {
	Root       NodeID
	humanBones map[model.HumanBone]NodeID
}

// NewAvatar はアバターを生成する。
func NewAvatar(root NodeID) *Avatar {
	return &Avatar{
		Root:       root,
		humanBones: map[model.HumanBone]NodeID{},
	}
}

// SetHumanBone は標準ボーンにノードを対応付ける。同じノードを複数の標準ボーンへは対応付けられない。
func (a *Avatar) SetHumanBone(bone model.HumanBone, id NodeID) error {
	if !bone.Valid() {
		return fmt.Errorf("標準ボーンが不正です: %s", bone)
	}
	if id.IsNone() {
		delete(a.humanBones, bone)
		return nil
	}
	for other, mapped := range a.humanBones {
		if mapped == id && other != bone {
			return fmt.Errorf("ノードは既に標準ボーン %s に対応付け済みです: %s", other, id)
		}
	}
	a.humanBones[bone] = id
	return nil
}

// HumanBone は標準ボーンに対応するノードを返す。未設定時は NoNode を返す。
func (a *Avatar) HumanBone(bone model.HumanBone) NodeID {
	if a == nil {
		return NoNode
	}
	if id, ok := a.humanBones[bone]; ok {
		return id
	}
	return NoNode
}

// Hips は Hips に対応するノードを返す。
func (a *Avatar) Hips() NodeID {
	return a.HumanBone(model.Hips)
}

// HumanBoneNodes は現存する標準ボーンノードから標準ボーンへの対応を返す。
func (a *Avatar) HumanBoneNodes(s *Scene) map[NodeID]model.HumanBone {
	nodes := map[NodeID]model.HumanBone{}
	if a == nil {
		return nodes
	}
	for _, bone := range model.AllHumanBones() {
		id := a.HumanBone(bone)
		if s.IsAlive(id) {
			nodes[id] = bone
		}
	}
	return nodes
}

// Validate は対応付けノードが全てアバタールート配下にあるか検証する。
func (a *Avatar) Validate(s *Scene) error {
	if a == nil {
		return fmt.Errorf("アバターが未設定です")
	}
	if !s.IsAlive(a.Root) {
		return fmt.Errorf("アバタールートが見つかりません: %s", a.Root)
	}
	for _, bone := range model.AllHumanBones() {
		id := a.HumanBone(bone)
		if id.IsNone() {
			continue
		}
		if !s.IsDescendantOrSelf(a.Root, id) {
			return fmt.Errorf("標準ボーン %s がアバタールート配下にありません: %s", bone, s.Name(id))
		}
	}
	return nil
}
