// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
)

// MergeResult はボーン統合の結果を表す。
type MergeResult struct {
	Merged   int
	Rebound  int
	Mappings *BoneMappingSet
}

// MergeRedundantBones は選択済みの削減可能ボーンを基準ボーンへ統合し、同じメッシュを再分類する。
// 変更開始前に検証を終えるが、変更途中の失敗は巻き戻さない。
func MergeRedundantBones(
	s *scene.Scene,
	avatar *scene.Avatar,
	set *BoneMappingSet,
	opts ClassifyOptions,
) (*MergeResult, error) {
	if s == nil || set == nil {
		return nil, merr.NewPreconditionViolation("統合対象が未設定です")
	}
	if set.Revision != s.Revision() {
		return nil, merr.NewStaleReference(
			"分類結果が古いため再分類が必要です: set=%d scene=%d", set.Revision, s.Revision())
	}
	if err := validateMergeSelection(s, set); err != nil {
		return nil, err
	}

	mappings := append([]BoneMapping(nil), set.Mappings...)
	result := &MergeResult{}
	for i := range mappings {
		mapping := mappings[i]
		if !mapping.Selected || !mapping.Relation.Reducible() {
			continue
		}
		if !s.IsAlive(mapping.Bone) {
			// 同じボーンを指す重複レコードは処理済み
			continue
		}
		rebound, err := mergeBone(s, avatar, mapping.Bone, mapping.BaseBone)
		if err != nil {
			logTinkerError("冗長ボーン統合が途中で失敗しました: merged=%d bone=%s: %v",
				result.Merged, s.Name(mapping.Bone), err)
			return nil, err
		}
		for j := range mappings {
			if j != i && mappings[j].BaseBone == mapping.Bone {
				mappings[j].BaseBone = mapping.BaseBone
			}
		}
		result.Merged++
		result.Rebound += rebound
	}
	logTinkerInfo("冗長ボーン統合: merged=%d rebound=%d", result.Merged, result.Rebound)

	index, err := BuildSkeletonIndex(s, avatar)
	if err != nil {
		return nil, err
	}
	reclassified, err := ClassifyBones(index, set.Mesh, opts)
	if err != nil {
		return nil, err
	}
	result.Mappings = reclassified
	return result, nil
}

// validateMergeSelection は変更前に選択レコードの参照と不変アセット所属を検証する。
func validateMergeSelection(s *scene.Scene, set *BoneMappingSet) error {
	for _, mapping := range set.SelectedRedundant() {
		if !s.IsAlive(mapping.Bone) {
			return merr.NewStaleReference("統合対象ボーンが見つかりません: %s", mapping.Bone)
		}
		if !s.IsAlive(mapping.BaseBone) {
			return merr.NewStaleReference("統合先ボーンが見つかりません: %s", mapping.BaseBone)
		}
		if mapping.Bone == mapping.BaseBone {
			return merr.NewPreconditionViolation("統合先が自身です: %s", s.Name(mapping.Bone))
		}
		if s.IsPackaged(mapping.Bone) {
			return merr.NewPreconditionViolation("不変アセットに属するボーンは統合できません: %s", s.Path(mapping.Bone))
		}
		if s.IsPackaged(mapping.BaseBone) {
			return merr.NewPreconditionViolation("統合先ボーンが不変アセットに属しています: %s", s.Path(mapping.BaseBone))
		}
	}
	return nil
}

// mergeBone は1ボーンを基準ボーンへ統合し、付け替えたバインド参照数を返す。
func mergeBone(s *scene.Scene, avatar *scene.Avatar, bone scene.NodeID, base scene.NodeID) (int, error) {
	if !s.IsAlive(base) {
		return 0, fmt.Errorf("統合先ボーンが見つかりません: bone=%s base=%s", s.Name(bone), base)
	}

	rebound := 0
	for _, mesh := range s.SkinnedMeshesInChildren(avatar.Root) {
		rebound += mesh.SkinnedMesh.ReplaceBone(bone, base)
	}

	children := s.Children(bone)
	baseSiblings := make([]scene.NodeID, 0)
	for _, child := range s.Children(base) {
		if child != bone {
			baseSiblings = append(baseSiblings, child)
		}
	}
	retargetPhysBoneReferences(s, avatar, bone, base, children, baseSiblings)

	for _, child := range children {
		if err := s.SetParent(child, base, true); err != nil {
			return rebound, fmt.Errorf("子ボーンの付け替えに失敗しました: bone=%s child=%s: %w",
				s.Name(bone), s.Name(child), err)
		}
	}
	logTinkerDebug("ボーン統合: bone=%s base=%s children=%d", s.Name(bone), s.Name(base), len(children))

	if err := s.Destroy(bone); err != nil {
		return rebound, fmt.Errorf("統合済みボーンの削除に失敗しました: %w", err)
	}
	return rebound, nil
}

// retargetPhysBoneReferences は統合で消えるボーンを指す揺れもの参照を、影響範囲を保ったまま付け替える。
func retargetPhysBoneReferences(
	s *scene.Scene,
	avatar *scene.Avatar,
	bone scene.NodeID,
	base scene.NodeID,
	children []scene.NodeID,
	baseSiblings []scene.NodeID,
) {
	changed := false
	for _, component := range s.PhysBonesInChildren(avatar.Root) {
		settings := component.PhysBone
		if settings.IsIgnored(bone) {
			ignore := make([]scene.NodeID, 0, len(settings.Ignore)+len(children))
			for _, ignored := range settings.Ignore {
				if ignored != bone {
					ignore = append(ignore, ignored)
				}
			}
			settings.Ignore = appendUniqueNodes(ignore, children...)
			changed = true
		}
		if settings.Root == bone {
			settings.Root = base
			settings.Ignore = appendUniqueNodes(settings.Ignore, baseSiblings...)
			changed = true
		}
	}
	if changed {
		s.Touch()
	}
}

func appendUniqueNodes(ids []scene.NodeID, adds ...scene.NodeID) []scene.NodeID {
	for _, add := range adds {
		found := false
		for _, id := range ids {
			if id == add {
				found = true
				break
			}
		}
		if !found {
			ids = append(ids, add)
		}
	}
	return ids
}
