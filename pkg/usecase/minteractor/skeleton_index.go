// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
)

type nodeSet map[scene.NodeID]struct{}

func (s nodeSet) add(id scene.NodeID) { s[id] = struct{}{} }

func (s nodeSet) has(id scene.NodeID) bool {
	_, ok := s[id]
	return ok
}

// SkeletonIndex はシーンの一時点から作る読み取り専用の索引を表す。
// 構造変更後は差分更新せず、必ず作り直す。
type SkeletonIndex struct {
	scene     *scene.Scene
	avatar    *scene.Avatar
	revision  uint64
	hips      scene.NodeID
	humanoid  map[scene.NodeID]model.HumanBone
	meshes    []*scene.Component
	bindBones map[scene.ComponentID]nodeSet
	usedBones map[scene.ComponentID]nodeSet
}

// BuildSkeletonIndex はアバター配下の標準ボーンとスキンメッシュから索引を作る。
func BuildSkeletonIndex(s *scene.Scene, avatar *scene.Avatar) (*SkeletonIndex, error) {
	if s == nil {
		return nil, merr.NewInvalidScene(nil, "シーンが未設定です")
	}
	if err := avatar.Validate(s); err != nil {
		return nil, merr.NewInvalidScene(err, "アバター定義が不正です")
	}

	index := &SkeletonIndex{
		scene:     s,
		avatar:    avatar,
		revision:  s.Revision(),
		hips:      avatar.Hips(),
		humanoid:  avatar.HumanBoneNodes(s),
		meshes:    s.SkinnedMeshesInChildren(avatar.Root),
		bindBones: map[scene.ComponentID]nodeSet{},
		usedBones: map[scene.ComponentID]nodeSet{},
	}
	if !s.IsAlive(index.hips) {
		index.hips = scene.NoNode
	}

	for _, mesh := range index.meshes {
		if err := mesh.SkinnedMesh.Validate(); err != nil {
			return nil, merr.NewInvalidScene(err, "スキンメッシュが不正です")
		}
		bind := nodeSet{}
		for _, bone := range mesh.SkinnedMesh.Bones {
			if !bone.IsNone() {
				bind.add(bone)
			}
		}
		used := nodeSet{}
		for boneIndex := range mesh.SkinnedMesh.UsedBoneIndexes() {
			bone := mesh.SkinnedMesh.Bones[boneIndex]
			if s.IsAlive(bone) {
				used.add(bone)
			}
		}
		index.bindBones[mesh.ID()] = bind
		index.usedBones[mesh.ID()] = used
	}
	return index, nil
}

// Scene は索引元のシーンを返す。
func (ix *SkeletonIndex) Scene() *scene.Scene { return ix.scene }

// Avatar は索引元のアバターを返す。
func (ix *SkeletonIndex) Avatar() *scene.Avatar { return ix.avatar }

// Revision は索引作成時のシーン版数を返す。
func (ix *SkeletonIndex) Revision() uint64 { return ix.revision }

// IsStale は索引作成後にシーンが変更されたか判定する。
func (ix *SkeletonIndex) IsStale() bool {
	return ix.scene.Revision() != ix.revision
}

// Hips は Hips ノードを返す。未設定時は NoNode を返す。
func (ix *SkeletonIndex) Hips() scene.NodeID { return ix.hips }

// IsHumanoid は標準ボーンに対応付けられたノードか判定する。
func (ix *SkeletonIndex) IsHumanoid(id scene.NodeID) bool {
	_, ok := ix.humanoid[id]
	return ok
}

// HumanoidNodes は標準ボーンノードの一覧を返す。
func (ix *SkeletonIndex) HumanoidNodes() []scene.NodeID {
	nodes := make([]scene.NodeID, 0, len(ix.humanoid))
	for _, bone := range model.AllHumanBones() {
		id := ix.avatar.HumanBone(bone)
		if _, ok := ix.humanoid[id]; ok {
			nodes = append(nodes, id)
		}
	}
	return nodes
}

// SkinnedMeshes はアバター配下のスキンメッシュを階層順で返す。
func (ix *SkeletonIndex) SkinnedMeshes() []*scene.Component {
	return append([]*scene.Component(nil), ix.meshes...)
}

// SkinnedMesh はスキンメッシュコンポーネントを返す。
func (ix *SkeletonIndex) SkinnedMesh(id scene.ComponentID) (*scene.Component, bool) {
	for _, mesh := range ix.meshes {
		if mesh.ID() == id {
			return mesh, true
		}
	}
	return nil, false
}

// IsBindBone は指定メッシュのバインドボーンか判定する。
func (ix *SkeletonIndex) IsBindBone(meshID scene.ComponentID, id scene.NodeID) bool {
	return ix.bindBones[meshID].has(id)
}

// IsBindBoneOfOtherMesh は指定メッシュ以外のいずれかのバインドボーンか判定する。
func (ix *SkeletonIndex) IsBindBoneOfOtherMesh(meshID scene.ComponentID, id scene.NodeID) bool {
	for otherID, bind := range ix.bindBones {
		if otherID != meshID && bind.has(id) {
			return true
		}
	}
	return false
}

// IsBoundByAnyMesh はいずれかのメッシュのバインドボーンまたはルートボーンか判定する。
func (ix *SkeletonIndex) IsBoundByAnyMesh(id scene.NodeID) bool {
	for _, mesh := range ix.meshes {
		if mesh.SkinnedMesh.RootBone == id || ix.bindBones[mesh.ID()].has(id) {
			return true
		}
	}
	return false
}

// WeightedBones はいずれかのメッシュで0より大きいウェイトを持つボーン集合を返す。
func (ix *SkeletonIndex) WeightedBones() map[scene.NodeID]struct{} {
	weighted := map[scene.NodeID]struct{}{}
	for _, used := range ix.usedBones {
		for id := range used {
			weighted[id] = struct{}{}
		}
	}
	return weighted
}

// IsWithinArmature はノードが Hips 自身またはその子孫か判定する。
func (ix *SkeletonIndex) IsWithinArmature(id scene.NodeID) bool {
	return ix.scene.IsDescendantOrSelf(ix.hips, id)
}

// IsDescendantOrSelf は node が ancestor 自身またはその子孫か判定する。
func (ix *SkeletonIndex) IsDescendantOrSelf(ancestor scene.NodeID, node scene.NodeID) bool {
	return ix.scene.IsDescendantOrSelf(ancestor, node)
}

// Subtree は root 自身を含む子孫を先行順で返す。
func (ix *SkeletonIndex) Subtree(root scene.NodeID) []scene.NodeID {
	return ix.scene.Subtree(root)
}
