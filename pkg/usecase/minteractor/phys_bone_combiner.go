// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
)

const physBoneGroupSuffix = "_PBGroup"

// PhysBoneInfo は揺れものコンポーネント1件の構成推定結果を表す。
type PhysBoneInfo struct {
	Target               scene.ComponentID
	Revision             uint64
	Role                 model.PhysBoneRole
	ParentBone           scene.NodeID
	ChildBones           []scene.NodeID
	ChildPhysBones       []scene.ComponentID
	SuspectAutoConverted bool
}

// PhysBoneCollection はアバター配下の揺れもの推定結果一覧を表す。
type PhysBoneCollection struct {
	Revision uint64
	Infos    []PhysBoneInfo
}

// PhysBoneOptions は揺れもの統合・分割の設定を表す。
type PhysBoneOptions struct {
	Destination       model.PhysBoneDestination
	CreateDummyParent bool
}

// DefaultPhysBoneOptions は既定の設定を返す。
func DefaultPhysBoneOptions() PhysBoneOptions {
	return PhysBoneOptions{
		Destination:       model.PhysBoneDestinationPhysBoneRoot,
		CreateDummyParent: true,
	}
}

// Count は指定構成状態の件数を返す。
func (c *PhysBoneCollection) Count(role model.PhysBoneRole) int {
	if c == nil {
		return 0
	}
	count := 0
	for _, info := range c.Infos {
		if info.Role == role {
			count++
		}
	}
	return count
}

// Find は対象コンポーネントの推定結果を返す。
func (c *PhysBoneCollection) Find(target scene.ComponentID) (PhysBoneInfo, bool) {
	if c == nil {
		return PhysBoneInfo{}, false
	}
	for _, info := range c.Infos {
		if info.Target == target {
			return info, true
		}
	}
	return PhysBoneInfo{}, false
}

// firstCombinable は統合可能な最初の推定結果を返す。
func (c *PhysBoneCollection) firstCombinable() (PhysBoneInfo, bool) {
	for _, info := range c.Infos {
		if info.Role == model.PhysBoneRoleDisassembled && len(info.ChildBones) >= 2 {
			return info, true
		}
	}
	return PhysBoneInfo{}, false
}

// firstComposed は分割可能な最初の推定結果を返す。
func (c *PhysBoneCollection) firstComposed() (PhysBoneInfo, bool) {
	for _, info := range c.Infos {
		if info.Role == model.PhysBoneRoleComposed {
			return info, true
		}
	}
	return PhysBoneInfo{}, false
}

// CollectPhysBones はアバター配下の揺れものを収集し、構成状態を推定する。
func CollectPhysBones(s *scene.Scene, avatar *scene.Avatar) (*PhysBoneCollection, error) {
	if s == nil {
		return nil, merr.NewInvalidScene(nil, "シーンが未設定です")
	}
	if err := avatar.Validate(s); err != nil {
		return nil, merr.NewInvalidScene(err, "アバター定義が不正です")
	}

	components := s.PhysBonesInChildren(avatar.Root)
	fingerprints := make(map[scene.ComponentID]string, len(components))
	for _, component := range components {
		fingerprint, err := component.PhysBone.SettingFingerprint()
		if err != nil {
			return nil, err
		}
		fingerprints[component.ID()] = fingerprint
	}
	humanoid := avatar.HumanBoneNodes(s)

	collection := &PhysBoneCollection{
		Revision: s.Revision(),
		Infos:    make([]PhysBoneInfo, 0, len(components)),
	}
	for _, component := range components {
		info := guessPhysBoneInfo(s, component, components, fingerprints)
		info.Revision = collection.Revision
		root := s.PhysBoneRoot(component)
		if _, ok := humanoid[component.Owner()]; ok && s.Parent(root) == component.Owner() {
			info.SuspectAutoConverted = true
			logTinkerWarn("[%s] 自動変換された揺れものの可能性があります: owner=%s root=%s",
				model.TinkerWarningSuspectAutoConverted, s.Name(component.Owner()), s.Name(root))
		}
		collection.Infos = append(collection.Infos, info)
	}
	logTinkerInfo("揺れもの収集: total=%d composed=%d disassembled=%d independent=%d",
		len(collection.Infos),
		collection.Count(model.PhysBoneRoleComposed),
		collection.Count(model.PhysBoneRoleDisassembled),
		collection.Count(model.PhysBoneRoleIndependent))
	return collection, nil
}

// guessPhysBoneInfo は揺れもの1件の構成状態と親子候補を推定する。
func guessPhysBoneInfo(
	s *scene.Scene,
	target *scene.Component,
	components []*scene.Component,
	fingerprints map[scene.ComponentID]string,
) PhysBoneInfo {
	info := PhysBoneInfo{Target: target.ID(), Role: model.PhysBoneRoleUnknown}
	settings := target.PhysBone
	if settings == nil {
		return info
	}
	root := s.PhysBoneRoot(target)

	role := model.PhysBoneRoleDisassembled
	if settings.MultiChildType == model.MultiChildTypeIgnore {
		role = model.PhysBoneRoleComposed
		// 1ボーン1コンポーネントへ自動変換された形は統合済みとみなさない
		if s.ChildCount(root) == 1 && s.ChildCount(s.Parent(root)) > 1 {
			role = model.PhysBoneRoleDisassembled
		}
	}

	switch role {
	case model.PhysBoneRoleComposed:
		info.ParentBone = root
		for _, child := range s.Children(root) {
			if !settings.IsIgnored(child) {
				info.ChildBones = append(info.ChildBones, child)
			}
		}
	case model.PhysBoneRoleDisassembled:
		info.ParentBone = s.Parent(root)
		if info.ParentBone.IsNone() {
			break
		}
		for _, other := range components {
			otherRoot := s.PhysBoneRoot(other)
			if s.Parent(otherRoot) != info.ParentBone {
				continue
			}
			if fingerprints[other.ID()] != fingerprints[target.ID()] {
				continue
			}
			info.ChildPhysBones = append(info.ChildPhysBones, other.ID())
			info.ChildBones = appendUniqueNodes(info.ChildBones, otherRoot)
		}
	}

	if len(info.ChildBones) <= 1 {
		role = model.PhysBoneRoleIndependent
	}
	info.Role = role
	return info
}

// CombinePhysBones は同設定の兄弟揺れものを1コンポーネントへ統合する。
// 子候補が2未満の場合はログを出してシーンを変更せずにエラーを返す。
func CombinePhysBones(
	s *scene.Scene,
	avatar *scene.Avatar,
	info PhysBoneInfo,
	opts PhysBoneOptions,
) (*PhysBoneCollection, error) {
	target, err := resolvePhysBoneTarget(s, info)
	if err != nil {
		return nil, err
	}
	if len(info.ChildBones) < 2 {
		logTinkerError("統合できる子ボーンが2つ未満です: target=%s children=%d",
			s.Name(target.Owner()), len(info.ChildBones))
		return nil, merr.NewInsufficientCandidates(
			"統合できる子ボーンが2つ未満です: target=%s children=%d", s.Name(target.Owner()), len(info.ChildBones))
	}
	if info.Role != model.PhysBoneRoleDisassembled {
		return nil, merr.NewPreconditionViolation("分割状態ではない揺れものは統合できません: role=%s", info.Role)
	}
	siblings := make([]*scene.Component, 0, len(info.ChildPhysBones))
	for _, id := range info.ChildPhysBones {
		component, ok := s.Component(id)
		if !ok || !component.IsPhysBone() {
			return nil, merr.NewStaleReference("統合対象の揺れものが見つかりません: %d", id)
		}
		siblings = append(siblings, component)
	}
	for _, child := range info.ChildBones {
		if !s.IsAlive(child) {
			return nil, merr.NewStaleReference("統合対象の子ボーンが見つかりません: %s", child)
		}
	}
	if !s.IsAlive(info.ParentBone) {
		return nil, merr.NewStaleReference("統合先の親ボーンが見つかりません: %s", info.ParentBone)
	}
	// グループノード作成時は先頭の子と同じ親を持つ位置に root が来る
	plannedRoot := info.ParentBone
	if opts.CreateDummyParent {
		plannedRoot = info.ChildBones[0]
	}
	if _, err := resolvePhysBoneDestination(s, avatar, info, plannedRoot, info.ChildBones[0], opts.Destination); err != nil {
		return nil, err
	}
	settings, err := target.PhysBone.Clone()
	if err != nil {
		return nil, err
	}

	influenced := nodeSet{}
	for _, sibling := range siblings {
		for id := range influencedNodes(s, sibling, true) {
			influenced.add(id)
		}
	}

	parentBone := info.ParentBone
	if opts.CreateDummyParent {
		group, err := s.CreateNode(uniquePhysBoneGroupName(s, parentBone), parentBone, mmath.NewTransform())
		if err != nil {
			return nil, fmt.Errorf("揺れものグループノードの作成に失敗しました: %w", err)
		}
		for _, child := range info.ChildBones {
			if err := s.SetParent(child, group, false); err != nil {
				return nil, fmt.Errorf("子ボーンのグループ移動に失敗しました: child=%s: %w", s.Name(child), err)
			}
		}
		parentBone = group
	}

	settings.MultiChildType = model.MultiChildTypeIgnore
	settings.Ignore = exclusionFrontier(s, parentBone, influenced)
	component, err := addPhysBone(s, avatar, info, target.TypeName, settings, parentBone, parentBone, info.ChildBones[0], opts.Destination)
	if err != nil {
		return nil, err
	}

	for _, sibling := range siblings {
		if err := s.RemoveComponent(sibling.ID()); err != nil {
			return nil, fmt.Errorf("統合元の揺れもの削除に失敗しました: %w", err)
		}
	}
	logTinkerInfo("揺れもの統合: parent=%s children=%d removed=%d component_id=%d",
		s.Name(parentBone), len(info.ChildBones), len(siblings), component)

	return CollectPhysBones(s, avatar)
}

// SplitPhysBones は1コンポーネントで複数子を制御する揺れものを子ごとに分割する。
func SplitPhysBones(
	s *scene.Scene,
	avatar *scene.Avatar,
	info PhysBoneInfo,
	opts PhysBoneOptions,
) (*PhysBoneCollection, error) {
	target, err := resolvePhysBoneTarget(s, info)
	if err != nil {
		return nil, err
	}
	if info.Role != model.PhysBoneRoleComposed {
		return nil, merr.NewPreconditionViolation("統合状態ではない揺れものは分割できません: role=%s", info.Role)
	}
	for _, child := range info.ChildBones {
		if !s.IsAlive(child) {
			return nil, merr.NewStaleReference("分割対象の子ボーンが見つかりません: %s", child)
		}
		if _, err := resolvePhysBoneDestination(s, avatar, info, child, child, opts.Destination); err != nil {
			return nil, err
		}
	}

	affected := influencedNodes(s, target, false)
	created := 0
	for _, child := range info.ChildBones {
		childAffected := nodeSet{}
		for id := range affected {
			if s.IsDescendantOrSelf(child, id) {
				childAffected.add(id)
			}
		}
		if len(childAffected) == 0 {
			continue
		}
		settings, err := target.PhysBone.Clone()
		if err != nil {
			return nil, err
		}
		settings.MultiChildType = model.MultiChildTypeAverage
		settings.Ignore = exclusionFrontier(s, child, childAffected)
		if _, err := addPhysBone(s, avatar, info, target.TypeName, settings, child, info.ParentBone, child, opts.Destination); err != nil {
			return nil, err
		}
		created++
	}

	if err := s.RemoveComponent(target.ID()); err != nil {
		return nil, fmt.Errorf("分割元の揺れもの削除に失敗しました: %w", err)
	}
	dissolved, err := dissolvePhysBoneGroup(s, avatar, info.ParentBone)
	if err != nil {
		return nil, err
	}
	if !dissolved && isPhysBoneGroupName(s.Name(info.ParentBone)) {
		logTinkerWarn("[%s] 揺れものグループノードを解消できませんでした: group=%s",
			model.TinkerWarningGroupKept, s.Name(info.ParentBone))
	}
	logTinkerInfo("揺れもの分割: parent=%s created=%d dissolved=%t", s.Name(info.ParentBone), created, dissolved)

	return CollectPhysBones(s, avatar)
}

// MovePhysBone は揺れもの設定を移設先ノードの新しいコンポーネントへ移し替える。
func MovePhysBone(
	s *scene.Scene,
	avatar *scene.Avatar,
	info PhysBoneInfo,
	destination model.PhysBoneDestination,
) (*PhysBoneCollection, error) {
	target, err := resolvePhysBoneTarget(s, info)
	if err != nil {
		return nil, err
	}
	root := s.PhysBoneRoot(target)
	firstChild := scene.NoNode
	if len(info.ChildBones) > 0 {
		firstChild = info.ChildBones[0]
	}
	settings, err := target.PhysBone.Clone()
	if err != nil {
		return nil, err
	}
	if _, err := addPhysBone(s, avatar, info, target.TypeName, settings, root, info.ParentBone, firstChild, destination); err != nil {
		return nil, err
	}
	if err := s.RemoveComponent(target.ID()); err != nil {
		return nil, fmt.Errorf("移設元の揺れもの削除に失敗しました: %w", err)
	}
	logTinkerInfo("揺れもの移設: root=%s destination=%s", s.Name(root), destination)

	return CollectPhysBones(s, avatar)
}

// CombineAllPhysBones は統合可能な揺れものが無くなるまで統合を繰り返す。
func CombineAllPhysBones(s *scene.Scene, avatar *scene.Avatar, opts PhysBoneOptions) (*PhysBoneCollection, int, error) {
	collection, err := CollectPhysBones(s, avatar)
	if err != nil {
		return nil, 0, err
	}
	combined := 0
	for {
		info, ok := collection.firstCombinable()
		if !ok {
			break
		}
		before := len(collection.Infos)
		collection, err = CombinePhysBones(s, avatar, info, opts)
		if err != nil {
			return nil, combined, err
		}
		if len(collection.Infos) >= before {
			return nil, combined, merr.NewNoProgress("揺れもの一括統合で件数が減りませんでした: before=%d after=%d",
				before, len(collection.Infos))
		}
		combined++
	}
	logTinkerInfo("揺れもの一括統合: combined=%d", combined)
	return collection, combined, nil
}

// SplitAllPhysBones は統合状態の揺れものが無くなるまで分割を繰り返す。
func SplitAllPhysBones(s *scene.Scene, avatar *scene.Avatar, opts PhysBoneOptions) (*PhysBoneCollection, int, error) {
	collection, err := CollectPhysBones(s, avatar)
	if err != nil {
		return nil, 0, err
	}
	split := 0
	for {
		info, ok := collection.firstComposed()
		if !ok {
			break
		}
		before := collection.Count(model.PhysBoneRoleComposed)
		collection, err = SplitPhysBones(s, avatar, info, opts)
		if err != nil {
			return nil, split, err
		}
		if collection.Count(model.PhysBoneRoleComposed) >= before {
			return nil, split, merr.NewNoProgress("揺れもの一括分割で統合状態が減りませんでした: before=%d after=%d",
				before, collection.Count(model.PhysBoneRoleComposed))
		}
		split++
	}
	logTinkerInfo("揺れもの一括分割: split=%d", split)
	return collection, split, nil
}

// resolvePhysBoneTarget は推定結果の版数と対象コンポーネントを検証する。
func resolvePhysBoneTarget(s *scene.Scene, info PhysBoneInfo) (*scene.Component, error) {
	if s == nil {
		return nil, merr.NewInvalidScene(nil, "シーンが未設定です")
	}
	if info.Revision != s.Revision() {
		return nil, merr.NewStaleReference(
			"揺れもの推定結果が古いため再収集が必要です: info=%d scene=%d", info.Revision, s.Revision())
	}
	target, ok := s.Component(info.Target)
	if !ok || !target.IsPhysBone() {
		return nil, merr.NewStaleReference("対象の揺れものが見つかりません: %d", info.Target)
	}
	return target, nil
}

// resolvePhysBoneDestination は移設先種別から付与先ノードを解決する。
func resolvePhysBoneDestination(
	s *scene.Scene,
	avatar *scene.Avatar,
	info PhysBoneInfo,
	physBoneRoot scene.NodeID,
	firstChild scene.NodeID,
	destination model.PhysBoneDestination,
) (scene.NodeID, error) {
	var resolved scene.NodeID
	switch destination {
	case model.PhysBoneDestinationAvatarRoot:
		resolved = avatar.Root
	case model.PhysBoneDestinationHipParent:
		resolved = s.Parent(avatar.Hips())
	case model.PhysBoneDestinationHipBone:
		resolved = avatar.Hips()
	case model.PhysBoneDestinationPhysBoneRootParent:
		resolved = s.Parent(physBoneRoot)
	case model.PhysBoneDestinationPhysBoneRoot:
		resolved = physBoneRoot
	case model.PhysBoneDestinationParentBone:
		resolved = info.ParentBone
	case model.PhysBoneDestinationFirstChildBone:
		resolved = firstChild
	default:
		return scene.NoNode, merr.NewPreconditionViolation("移設先が不正です: %s", destination)
	}
	if !s.IsAlive(resolved) {
		return scene.NoNode, merr.NewPreconditionViolation("移設先ノードを解決できません: %s", destination)
	}
	return resolved, nil
}

// addPhysBone は起点を明示した揺れものを移設先ノードへ付与する。
func addPhysBone(
	s *scene.Scene,
	avatar *scene.Avatar,
	info PhysBoneInfo,
	typeName string,
	settings *scene.PhysBoneSettings,
	physBoneRoot scene.NodeID,
	parentBone scene.NodeID,
	firstChild scene.NodeID,
	destination model.PhysBoneDestination,
) (scene.ComponentID, error) {
	info.ParentBone = parentBone
	owner, err := resolvePhysBoneDestination(s, avatar, info, physBoneRoot, firstChild, destination)
	if err != nil {
		return scene.NoComponent, err
	}
	settings.Root = physBoneRoot
	component := scene.NewPhysBoneComponent(settings)
	if typeName != "" {
		component.TypeName = typeName
	}
	id, err := s.AddComponent(owner, component)
	if err != nil {
		return scene.NoComponent, fmt.Errorf("揺れものの付与に失敗しました: %w", err)
	}
	logTinkerDebug("揺れもの付与: owner=%s root=%s ignore=%d", s.Name(owner), s.Name(physBoneRoot), len(settings.Ignore))
	return id, nil
}

// influencedNodes は揺れものが影響するノード集合を返す。除外リストの子孫は含まない。
func influencedNodes(s *scene.Scene, component *scene.Component, includeRoot bool) nodeSet {
	influenced := nodeSet{}
	root := s.PhysBoneRoot(component)
	var walk func(id scene.NodeID, include bool)
	walk = func(id scene.NodeID, include bool) {
		if include {
			influenced.add(id)
		}
		for _, child := range s.Children(id) {
			if component.PhysBone.IsIgnored(child) {
				continue
			}
			walk(child, true)
		}
	}
	if s.IsAlive(root) {
		walk(root, includeRoot)
	}
	return influenced
}

// exclusionFrontier は root から辿って影響集合に含まれない最初のノードを除外リストとして返す。
func exclusionFrontier(s *scene.Scene, root scene.NodeID, influenced nodeSet) []scene.NodeID {
	frontier := make([]scene.NodeID, 0)
	var walk func(id scene.NodeID)
	walk = func(id scene.NodeID) {
		for _, child := range s.Children(id) {
			if influenced.has(child) {
				walk(child)
				continue
			}
			frontier = append(frontier, child)
		}
	}
	walk(root)
	return frontier
}

// dissolvePhysBoneGroup は統合時に作ったグループノードを解消し、子を元の親へ戻す。
// オフセットを持つノード、標準ボーン、メッシュ参照ボーン、揺れもの以外のコンポーネント付きノードは解消しない。
// グループ上の揺れものは親へ付け替える。
func dissolvePhysBoneGroup(s *scene.Scene, avatar *scene.Avatar, group scene.NodeID) (bool, error) {
	node, ok := s.Node(group)
	if !ok {
		return false, nil
	}
	parent := node.Parent()
	if parent.IsNone() || group == avatar.Root {
		return false, nil
	}
	if node.Transform().HasOffset(mmath.DefaultOffsetEpsilon) {
		return false, nil
	}
	components := s.Components(group)
	for _, component := range components {
		if !component.IsPhysBone() {
			return false, nil
		}
	}
	if _, ok := avatar.HumanBoneNodes(s)[group]; ok {
		return false, nil
	}
	for _, mesh := range s.SkinnedMeshesInChildren(avatar.Root) {
		if mesh.SkinnedMesh.RootBone == group || mesh.SkinnedMesh.ContainsBone(group) {
			return false, nil
		}
	}
	if referencedByPhysBone(s, avatar, group) {
		return false, nil
	}

	for _, child := range s.Children(group) {
		if err := s.SetParent(child, parent, true); err != nil {
			return false, fmt.Errorf("グループ解消時の子ボーン付け替えに失敗しました: child=%s: %w", s.Name(child), err)
		}
	}
	for _, component := range components {
		if err := s.MoveComponent(component.ID(), parent); err != nil {
			return false, fmt.Errorf("グループ解消時の揺れもの付け替えに失敗しました: %w", err)
		}
	}
	if err := s.Destroy(group); err != nil {
		return false, fmt.Errorf("グループノードの削除に失敗しました: %w", err)
	}
	return true, nil
}

// uniquePhysBoneGroupName は親の子と重ならないグループノード名を返す。
func uniquePhysBoneGroupName(s *scene.Scene, parent scene.NodeID) string {
	base := s.Name(parent) + physBoneGroupSuffix
	used := make(map[string]struct{})
	for _, child := range s.Children(parent) {
		used[s.Name(child)] = struct{}{}
	}
	name := base
	for i := 1; ; i++ {
		if _, ok := used[name]; !ok {
			return name
		}
		name = fmt.Sprintf("%s.%d", base, i)
	}
}

// isPhysBoneGroupName は連番付きを含むグループノード名か判定する。
func isPhysBoneGroupName(name string) bool {
	if strings.HasSuffix(name, physBoneGroupSuffix) {
		return true
	}
	dot := strings.LastIndex(name, ".")
	if dot < 0 || !strings.HasSuffix(name[:dot], physBoneGroupSuffix) {
		return false
	}
	_, err := strconv.Atoi(name[dot+1:])
	return err == nil
}

// referencedByPhysBone は揺れものの root または除外リストがノードを指しているか判定する。
func referencedByPhysBone(s *scene.Scene, avatar *scene.Avatar, id scene.NodeID) bool {
	for _, component := range s.PhysBonesInChildren(avatar.Root) {
		if component.PhysBone.Root == id || component.PhysBone.IsIgnored(id) {
			return true
		}
	}
	return false
}
