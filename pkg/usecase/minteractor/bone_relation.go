// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/capability"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
)

// BoneMapping はメッシュのバインドボーン1件の分類結果を表す。
type BoneMapping struct {
	Bone     scene.NodeID
	BaseBone scene.NodeID
	Relation model.BoneRelation
	Selected bool
}

// BoneMappingSet は1メッシュ分の分類結果を表す。
// Revision が現在のシーン版数と異なる場合は古い結果として扱う。
type BoneMappingSet struct {
	Mesh     scene.ComponentID
	Hips     scene.NodeID
	Revision uint64
	Mappings []BoneMapping
}

// ClassifyOptions はボーン分類の設定を表す。
type ClassifyOptions struct {
	Predicate capability.Predicate
	Epsilon   float64
}

// resolve は未設定項目を既定値で補う。
func (o ClassifyOptions) resolve() ClassifyOptions {
	if o.Predicate == nil {
		o.Predicate = capability.NewDenyList(nil)
	}
	if o.Epsilon <= 0 {
		o.Epsilon = defaultClassifierEpsilon
	}
	return o
}

const defaultClassifierEpsilon = 1e-4

// ClassifyBones は指定メッシュのバインドボーンをバインド順に分類する。
func ClassifyBones(index *SkeletonIndex, meshID scene.ComponentID, opts ClassifyOptions) (*BoneMappingSet, error) {
	if index == nil {
		return nil, merr.NewInvalidScene(nil, "骨格索引が未設定です")
	}
	if index.IsStale() {
		return nil, merr.NewStaleReference("骨格索引の作成後にシーンが変更されています")
	}
	mesh, ok := index.SkinnedMesh(meshID)
	if !ok {
		return nil, merr.NewPreconditionViolation("対象スキンメッシュが見つかりません: %d", meshID)
	}
	opts = opts.resolve()

	set := &BoneMappingSet{
		Mesh:     meshID,
		Hips:     index.Hips(),
		Revision: index.Revision(),
		Mappings: make([]BoneMapping, 0, len(mesh.SkinnedMesh.Bones)),
	}
	for _, bone := range mesh.SkinnedMesh.Bones {
		mapping := classifyBone(index, meshID, bone, opts)
		logTinkerDebug("ボーン分類: mesh=%s bone=%s relation=%s base=%s",
			mesh.SkinnedMesh.Name, index.Scene().Name(bone), mapping.Relation, index.Scene().Name(mapping.BaseBone))
		set.Mappings = append(set.Mappings, mapping)
	}
	if missing := set.CountByRelation()[model.BoneRelationNull]; missing > 0 {
		logTinkerWarn("[%s] バインドボーンが欠損しています: mesh=%s missing=%d",
			model.TinkerWarningMissingBindBone, mesh.SkinnedMesh.Name, missing)
	}
	return set, nil
}

// classifyBone は1ボーンの関係を先勝ちで判定する。
func classifyBone(index *SkeletonIndex, meshID scene.ComponentID, bone scene.NodeID, opts ClassifyOptions) BoneMapping {
	s := index.Scene()
	node, ok := s.Node(bone)
	if !ok {
		return BoneMapping{Bone: scene.NoNode, BaseBone: scene.NoNode, Relation: model.BoneRelationNull, Selected: true}
	}
	mapping := BoneMapping{Bone: bone, Selected: true}

	if index.IsHumanoid(bone) {
		mapping.BaseBone = bone
		mapping.Relation = model.BoneRelationHumanoid
		return mapping
	}

	parent := node.Parent()
	if index.IsBindBone(meshID, parent) {
		if index.IsBindBoneOfOtherMesh(meshID, bone) {
			mapping.BaseBone = bone
			mapping.Relation = model.BoneRelationShared
			return mapping
		}
		mapping.BaseBone = parent
		mapping.Relation = model.BoneRelationIndependentChild
		return mapping
	}

	if index.IsWithinArmature(parent) {
		mapping.BaseBone = parent
		hasTransform := node.Transform().HasOffset(opts.Epsilon)
		isReactive := capability.HasSignificant(opts.Predicate, s, bone)
		if !hasTransform && !isReactive {
			mapping.Relation = model.BoneRelationRedundant
		} else {
			mapping.Relation = model.BoneRelationPositioning
		}
		return mapping
	}

	mapping.BaseBone = index.Hips()
	mapping.Relation = model.BoneRelationUnrelated
	return mapping
}

// SelectMappings は全分類結果の選択状態を一括で設定する。
func SelectMappings(set *BoneMappingSet, selected bool) {
	if set == nil {
		return
	}
	for i := range set.Mappings {
		set.Mappings[i].Selected = selected
	}
}

// RelationsPresent は分類結果に現れた関係を定義順で返す。
func RelationsPresent(set *BoneMappingSet) []model.BoneRelation {
	if set == nil {
		return nil
	}
	present := map[model.BoneRelation]bool{}
	for _, mapping := range set.Mappings {
		present[mapping.Relation] = true
	}
	relations := make([]model.BoneRelation, 0, len(present))
	for _, relation := range model.AllBoneRelations() {
		if present[relation] {
			relations = append(relations, relation)
		}
	}
	return relations
}

// SelectedRedundant は選択済みかつ削減可能な分類結果を返す。
func (set *BoneMappingSet) SelectedRedundant() []BoneMapping {
	if set == nil {
		return nil
	}
	result := make([]BoneMapping, 0)
	for _, mapping := range set.Mappings {
		if mapping.Selected && mapping.Relation.Reducible() {
			result = append(result, mapping)
		}
	}
	return result
}

// CountByRelation は関係ごとの件数を返す。
func (set *BoneMappingSet) CountByRelation() map[model.BoneRelation]int {
	counts := map[model.BoneRelation]int{}
	if set == nil {
		return counts
	}
	for _, mapping := range set.Mappings {
		counts[mapping.Relation]++
	}
	return counts
}
