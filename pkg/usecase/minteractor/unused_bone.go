// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/capability"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
)

// UnusedBoneSet は未使用と判定したボーンの一覧を表す。
type UnusedBoneSet struct {
	Revision uint64
	Root     scene.NodeID
	Bones    []scene.NodeID
}

// FindUnusedBones は armature 配下でメッシュにも重要コンポーネントにも使われていないボーンを返す。
// armatureRoot が NoNode の場合は Hips を起点にする。
func FindUnusedBones(
	s *scene.Scene,
	avatar *scene.Avatar,
	armatureRoot scene.NodeID,
	predicate capability.Predicate,
) (*UnusedBoneSet, error) {
	index, err := BuildSkeletonIndex(s, avatar)
	if err != nil {
		return nil, err
	}
	if armatureRoot.IsNone() {
		armatureRoot = index.Hips()
	}
	if !s.IsAlive(armatureRoot) {
		return nil, merr.NewPreconditionViolation("armature の起点ボーンが見つかりません: %s", armatureRoot)
	}
	candidates := s.Subtree(armatureRoot)
	return findUnused(index, armatureRoot, candidates, predicate), nil
}

// FindUnusedSkinnedMeshBones はスキンメッシュのバインドボーンのうち使われていないボーンを返す。
func FindUnusedSkinnedMeshBones(
	s *scene.Scene,
	avatar *scene.Avatar,
	predicate capability.Predicate,
) (*UnusedBoneSet, error) {
	index, err := BuildSkeletonIndex(s, avatar)
	if err != nil {
		return nil, err
	}
	seen := nodeSet{}
	candidates := make([]scene.NodeID, 0)
	for _, mesh := range index.SkinnedMeshes() {
		for _, bone := range mesh.SkinnedMesh.Bones {
			if !s.IsAlive(bone) || seen.has(bone) {
				continue
			}
			seen.add(bone)
			candidates = append(candidates, bone)
		}
	}
	return findUnused(index, avatar.Root, candidates, predicate), nil
}

// findUnused は候補から使用中ボーンとその祖先を取り除いた残りを候補順で返す。
func findUnused(
	index *SkeletonIndex,
	root scene.NodeID,
	candidates []scene.NodeID,
	predicate capability.Predicate,
) *UnusedBoneSet {
	if predicate == nil {
		predicate = capability.NewDenyList(nil)
	}
	s := index.Scene()
	used := nodeSet{}
	markUsed := func(id scene.NodeID) {
		for current := id; !current.IsNone(); current = s.Parent(current) {
			if used.has(current) {
				return
			}
			used.add(current)
		}
	}

	for _, id := range index.HumanoidNodes() {
		markUsed(id)
	}
	for _, component := range s.ComponentsInChildren(index.Avatar().Root) {
		if isPlainMeshRenderer(component) || predicate.IsSignificant(component) {
			markUsed(component.Owner())
		}
	}
	for id := range index.WeightedBones() {
		markUsed(id)
	}

	result := &UnusedBoneSet{
		Revision: index.Revision(),
		Root:     root,
		Bones:    make([]scene.NodeID, 0),
	}
	for _, id := range candidates {
		if !used.has(id) {
			result.Bones = append(result.Bones, id)
		}
	}
	logTinkerInfo("未使用ボーン検出: root=%s candidates=%d unused=%d",
		s.Name(root), len(candidates), len(result.Bones))
	return result
}

// isPlainMeshRenderer はスキンなしメッシュ描画コンポーネントか判定する。
func isPlainMeshRenderer(component *scene.Component) bool {
	return component.Kind == scene.ComponentKindMeshRenderer || component.TypeName == "MeshRenderer"
}

// DeleteUnusedBones は未使用ボーンを削除し、削除したノード数を返す。
// 先に削除した祖先に巻き込まれて消えたボーンは読み飛ばす。
func DeleteUnusedBones(s *scene.Scene, set *UnusedBoneSet) (int, error) {
	if s == nil || set == nil {
		return 0, merr.NewPreconditionViolation("削除対象が未設定です")
	}
	if set.Revision != s.Revision() {
		return 0, merr.NewStaleReference(
			"未使用ボーン一覧が古いため再検出が必要です: set=%d scene=%d", set.Revision, s.Revision())
	}
	before := s.NodeCount()
	for _, id := range set.Bones {
		if !s.IsAlive(id) {
			continue
		}
		if err := s.Destroy(id); err != nil {
			return before - s.NodeCount(), fmt.Errorf("未使用ボーンの削除に失敗しました: %w", err)
		}
	}
	deleted := before - s.NodeCount()
	logTinkerInfo("未使用ボーン削除: deleted=%d", deleted)
	return deleted, nil
}
