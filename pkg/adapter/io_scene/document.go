// 指示: miu200521358
package io_scene

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
)

// sceneFormatVersion はシーンファイルの書式版数。
const sceneFormatVersion = 1

// sceneFile はシーンファイルのトップレベル要素を表す。
type sceneFile struct {
	Version int         `yaml:"version"`
	Avatar  avatarEntry `yaml:"avatar"`
	Nodes   []nodeEntry `yaml:"nodes"`
}

// avatarEntry はアバタールートと標準ボーン対応を表す。
type avatarEntry struct {
	Root     string            `yaml:"root"`
	Humanoid map[string]string `yaml:"humanoid,omitempty"`
}

// nodeEntry はノード1件を表す。親は path の末尾を除いた部分で決まる。
type nodeEntry struct {
	Path       string           `yaml:"path"`
	Position   []float64        `yaml:"position,flow,omitempty"`
	Rotation   []float64        `yaml:"rotation,flow,omitempty"`
	Euler      []float64        `yaml:"euler,flow,omitempty"`
	Scale      []float64        `yaml:"scale,flow,omitempty"`
	Packaged   bool             `yaml:"packaged,omitempty"`
	Components []componentEntry `yaml:"components,omitempty"`
}

// componentEntry はコンポーネント1件を表す。
type componentEntry struct {
	Type        string            `yaml:"type"`
	Kind        string            `yaml:"kind,omitempty"`
	PhysBone    *physBoneEntry    `yaml:"phys_bone,omitempty"`
	SkinnedMesh *skinnedMeshEntry `yaml:"skinned_mesh,omitempty"`
}

// physBoneEntry は揺れもの設定を表す。colliders はファイル内のコンポーネント通番(1始まり)で参照する。
type physBoneEntry struct {
	Root           string               `yaml:"root,omitempty"`
	Ignore         []string             `yaml:"ignore,omitempty"`
	MultiChildType string               `yaml:"multi_child_type,omitempty"`
	Params         scene.PhysBoneParams `yaml:"params"`
}

// skinnedMeshEntry はスキンメッシュのバインド情報を表す。bones の空文字は欠損ボーン。
type skinnedMeshEntry struct {
	Name     string          `yaml:"name"`
	RootBone string          `yaml:"root_bone,omitempty"`
	Bones    []string        `yaml:"bones"`
	Weights  [][]weightEntry `yaml:"weights,omitempty"`
}

// weightEntry は頂点1件のボーンウェイトを表す。
type weightEntry struct {
	Index  int     `yaml:"index"`
	Weight float64 `yaml:"weight"`
}

// sceneBuilder はファイル内容からシーンを構築する。
type sceneBuilder struct {
	s          *scene.Scene
	byPath     map[string]scene.NodeID
	byOrdinal  map[int]scene.ComponentID
	physBones  []*scene.Component
	components int
}

// buildDocument はファイル内容からドキュメントを構築する。
func buildDocument(path string, file *sceneFile) (*scene.Document, error) {
	if file.Version > sceneFormatVersion {
		return nil, merr.NewIoParseFailed(fmt.Sprintf("未対応の書式版数です: %d", file.Version), nil)
	}
	if len(file.Nodes) == 0 {
		return nil, merr.NewIoParseFailed("ノードが定義されていません", nil)
	}
	b := &sceneBuilder{
		s:         scene.NewScene(),
		byPath:    map[string]scene.NodeID{},
		byOrdinal: map[int]scene.ComponentID{},
	}
	for i := range file.Nodes {
		if err := b.addNode(&file.Nodes[i]); err != nil {
			return nil, err
		}
	}
	// 参照先ノードが後方で定義されている場合に備え、ノード確定後にコンポーネントを付与する
	for i := range file.Nodes {
		if err := b.addComponents(&file.Nodes[i]); err != nil {
			return nil, err
		}
	}
	if err := b.resolveColliders(); err != nil {
		return nil, err
	}
	avatar, err := b.buildAvatar(&file.Avatar, file.Nodes[0].Path)
	if err != nil {
		return nil, err
	}
	return &scene.Document{Path: path, Scene: b.s, Avatar: avatar}, nil
}

// normalizePath はパス前後の区切り文字と空白を取り除く。
func normalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

// splitPath はパスを親パスと名前に分ける。
func splitPath(path string) (string, string) {
	index := strings.LastIndex(path, "/")
	if index < 0 {
		return "", path
	}
	return path[:index], path[index+1:]
}

// addNode はノード1件を生成する。
func (b *sceneBuilder) addNode(entry *nodeEntry) error {
	path := normalizePath(entry.Path)
	if path == "" {
		return merr.NewIoParseFailed("ノードのパスが空です", nil)
	}
	if _, exists := b.byPath[path]; exists {
		return merr.NewIoParseFailed(fmt.Sprintf("ノードのパスが重複しています: %s", path), nil)
	}
	parentPath, name := splitPath(path)
	parent := scene.NoNode
	if parentPath != "" {
		id, ok := b.byPath[parentPath]
		if !ok {
			return merr.NewIoParseFailed(fmt.Sprintf("親ノードが先に定義されていません: %s", path), nil)
		}
		parent = id
	}
	local, err := decodeTransform(entry)
	if err != nil {
		return merr.NewIoParseFailed(fmt.Sprintf("ノードの姿勢が不正です: %s", path), err)
	}
	id, err := b.s.CreateNode(name, parent, local)
	if err != nil {
		return merr.NewIoParseFailed(fmt.Sprintf("ノードの生成に失敗しました: %s", path), err)
	}
	if entry.Packaged {
		if err := b.s.SetPackaged(id, true); err != nil {
			return merr.NewIoParseFailed(fmt.Sprintf("ノードの生成に失敗しました: %s", path), err)
		}
	}
	b.byPath[path] = id
	return nil
}

// decodeTransform は位置/回転/スケール要素を姿勢へ変換する。
func decodeTransform(entry *nodeEntry) (mmath.Transform, error) {
	local := mmath.NewTransform()
	if len(entry.Position) > 0 {
		if len(entry.Position) != 3 {
			return local, fmt.Errorf("position は3要素で指定してください: %v", entry.Position)
		}
		local.Position = mmath.NewVec3(entry.Position[0], entry.Position[1], entry.Position[2])
	}
	if len(entry.Rotation) > 0 && len(entry.Euler) > 0 {
		return local, fmt.Errorf("rotation と euler は同時に指定できません")
	}
	if len(entry.Rotation) > 0 {
		if len(entry.Rotation) != 4 {
			return local, fmt.Errorf("rotation は4要素(xyzw)で指定してください: %v", entry.Rotation)
		}
		local.Rotation = mmath.NewQuaternionByValues(
			entry.Rotation[0], entry.Rotation[1], entry.Rotation[2], entry.Rotation[3])
	}
	if len(entry.Euler) > 0 {
		if len(entry.Euler) != 3 {
			return local, fmt.Errorf("euler は3要素(度)で指定してください: %v", entry.Euler)
		}
		local.Rotation = mmath.NewQuaternionFromDegrees(entry.Euler[0], entry.Euler[1], entry.Euler[2])
	}
	if len(entry.Scale) > 0 {
		if len(entry.Scale) != 3 {
			return local, fmt.Errorf("scale は3要素で指定してください: %v", entry.Scale)
		}
		local.Scale = mmath.NewVec3(entry.Scale[0], entry.Scale[1], entry.Scale[2])
	}
	return local, nil
}

// resolveNode はパス参照をノードIDへ解決する。空文字は NoNode を返す。
func (b *sceneBuilder) resolveNode(path string) (scene.NodeID, error) {
	normalized := normalizePath(path)
	if normalized == "" {
		return scene.NoNode, nil
	}
	id, ok := b.byPath[normalized]
	if !ok {
		return scene.NoNode, merr.NewIoParseFailed(fmt.Sprintf("参照先ノードが見つかりません: %s", path), nil)
	}
	return id, nil
}

// addComponents はノードのコンポーネントを付与順に生成する。
func (b *sceneBuilder) addComponents(entry *nodeEntry) error {
	owner := b.byPath[normalizePath(entry.Path)]
	for i := range entry.Components {
		component, err := b.buildComponent(&entry.Components[i])
		if err != nil {
			return err
		}
		id, err := b.s.AddComponent(owner, component)
		if err != nil {
			return merr.NewIoParseFailed(fmt.Sprintf("コンポーネントの付与に失敗しました: %s", entry.Path), err)
		}
		b.components++
		b.byOrdinal[b.components] = id
		if component.IsPhysBone() {
			b.physBones = append(b.physBones, component)
		}
	}
	return nil
}

// buildComponent はコンポーネント要素から種別ごとのコンポーネントを生成する。
func (b *sceneBuilder) buildComponent(entry *componentEntry) (*scene.Component, error) {
	if entry.PhysBone != nil && entry.SkinnedMesh != nil {
		return nil, merr.NewIoParseFailed(
			fmt.Sprintf("phys_bone と skinned_mesh は同時に指定できません: %s", entry.Type), nil)
	}
	var component *scene.Component
	switch {
	case entry.SkinnedMesh != nil:
		mesh, err := b.buildSkinnedMesh(entry.SkinnedMesh)
		if err != nil {
			return nil, err
		}
		component = scene.NewSkinnedMeshComponent(mesh)
	case entry.PhysBone != nil:
		settings, err := b.buildPhysBone(entry.PhysBone)
		if err != nil {
			return nil, err
		}
		component = scene.NewPhysBoneComponent(settings)
	default:
		if strings.TrimSpace(entry.Type) == "" {
			return nil, merr.NewIoParseFailed("コンポーネントの type が空です", nil)
		}
		component = scene.NewComponent(entry.Type, scene.ParseComponentKind(entry.Kind))
	}
	if strings.TrimSpace(entry.Type) != "" {
		component.TypeName = entry.Type
	}
	if strings.TrimSpace(entry.Kind) != "" {
		component.Kind = scene.ParseComponentKind(entry.Kind)
	}
	return component, nil
}

// buildSkinnedMesh はスキンメッシュ要素を変換する。
func (b *sceneBuilder) buildSkinnedMesh(entry *skinnedMeshEntry) (*scene.SkinnedMesh, error) {
	mesh := &scene.SkinnedMesh{
		Name:    entry.Name,
		Bones:   make([]scene.NodeID, 0, len(entry.Bones)),
		Weights: make([][]scene.BoneWeight, 0, len(entry.Weights)),
	}
	for _, path := range entry.Bones {
		id, err := b.resolveNode(path)
		if err != nil {
			return nil, err
		}
		mesh.Bones = append(mesh.Bones, id)
	}
	rootBone, err := b.resolveNode(entry.RootBone)
	if err != nil {
		return nil, err
	}
	mesh.RootBone = rootBone
	for _, weights := range entry.Weights {
		vertex := make([]scene.BoneWeight, 0, len(weights))
		for _, w := range weights {
			vertex = append(vertex, scene.BoneWeight{Index: w.Index, Weight: w.Weight})
		}
		mesh.Weights = append(mesh.Weights, vertex)
	}
	if err := mesh.Validate(); err != nil {
		return nil, merr.NewIoParseFailed(fmt.Sprintf("スキンメッシュが不正です: %s", entry.Name), err)
	}
	return mesh, nil
}

// buildPhysBone は揺れもの要素を変換する。
func (b *sceneBuilder) buildPhysBone(entry *physBoneEntry) (*scene.PhysBoneSettings, error) {
	settings := &scene.PhysBoneSettings{
		Ignore: make([]scene.NodeID, 0, len(entry.Ignore)),
		Params: entry.Params,
	}
	root, err := b.resolveNode(entry.Root)
	if err != nil {
		return nil, err
	}
	settings.Root = root
	for _, path := range entry.Ignore {
		id, err := b.resolveNode(path)
		if err != nil {
			return nil, err
		}
		if !id.IsNone() {
			settings.Ignore = append(settings.Ignore, id)
		}
	}
	if strings.TrimSpace(entry.MultiChildType) != "" {
		multiChildType, err := model.ParseMultiChildType(entry.MultiChildType)
		if err != nil {
			return nil, merr.NewIoParseFailed("揺れもの設定が不正です", err)
		}
		settings.MultiChildType = multiChildType
	}
	return settings, nil
}

// resolveColliders は揺れものの colliders をファイル内通番から採番済みIDへ置き換える。
func (b *sceneBuilder) resolveColliders() error {
	for _, component := range b.physBones {
		ordinals := component.PhysBone.Params.Colliders
		if len(ordinals) == 0 {
			continue
		}
		resolved := make([]scene.ComponentID, 0, len(ordinals))
		for _, ordinal := range ordinals {
			id, ok := b.byOrdinal[int(ordinal)]
			if !ok {
				return merr.NewIoParseFailed(fmt.Sprintf("コライダー参照が範囲外です: %d", ordinal), nil)
			}
			resolved = append(resolved, id)
		}
		component.PhysBone.Params.Colliders = resolved
	}
	return nil
}

// buildAvatar はアバタールートと標準ボーン対応を構築する。root 省略時は先頭ノードを使う。
func (b *sceneBuilder) buildAvatar(entry *avatarEntry, firstPath string) (*scene.Avatar, error) {
	rootPath := entry.Root
	if normalizePath(rootPath) == "" {
		rootPath = firstPath
	}
	root, err := b.resolveNode(rootPath)
	if err != nil {
		return nil, err
	}
	avatar := scene.NewAvatar(root)
	for name, path := range entry.Humanoid {
		bone, err := model.ParseHumanBone(name)
		if err != nil {
			return nil, merr.NewIoParseFailed("標準ボーン対応が不正です", err)
		}
		id, err := b.resolveNode(path)
		if err != nil {
			return nil, err
		}
		if err := avatar.SetHumanBone(bone, id); err != nil {
			return nil, merr.NewIoParseFailed("標準ボーン対応が不正です", err)
		}
	}
	return avatar, nil
}

// encodeDocument はドキュメントをファイル内容へ変換する。
func encodeDocument(doc *scene.Document) (*sceneFile, error) {
	s := doc.Scene
	nodes := s.AllNodes()
	paths := make(map[scene.NodeID]string, len(nodes))
	seen := make(map[string]struct{}, len(nodes))
	ordinals := map[scene.ComponentID]int{}
	for _, id := range nodes {
		name := s.Name(id)
		if strings.Contains(name, "/") {
			return nil, merr.NewIoSaveFailed(fmt.Sprintf("ノード名に区切り文字を含められません: %s", name), nil)
		}
		path := s.Path(id)
		if _, exists := seen[path]; exists {
			return nil, merr.NewIoSaveFailed(fmt.Sprintf("同一パスのノードが複数あります: %s", path), nil)
		}
		seen[path] = struct{}{}
		paths[id] = path
		for _, component := range s.Components(id) {
			ordinals[component.ID()] = len(ordinals) + 1
		}
	}

	file := &sceneFile{
		Version: sceneFormatVersion,
		Avatar:  avatarEntry{Root: paths[doc.Avatar.Root], Humanoid: map[string]string{}},
		Nodes:   make([]nodeEntry, 0, len(nodes)),
	}
	for id, bone := range doc.Avatar.HumanBoneNodes(s) {
		file.Avatar.Humanoid[bone.String()] = paths[id]
	}
	for _, id := range nodes {
		node, _ := s.Node(id)
		entry := encodeTransform(node.Transform())
		entry.Path = paths[id]
		entry.Packaged = node.Packaged()
		for _, component := range s.Components(id) {
			encoded, err := encodeComponent(component, paths, ordinals)
			if err != nil {
				return nil, err
			}
			entry.Components = append(entry.Components, encoded)
		}
		file.Nodes = append(file.Nodes, entry)
	}
	return file, nil
}

// encodeTransform は恒等から外れた要素のみを書き出す。
func encodeTransform(local mmath.Transform) nodeEntry {
	entry := nodeEntry{}
	identity := mmath.NewTransform()
	if local.Position != identity.Position {
		entry.Position = []float64{local.Position.X, local.Position.Y, local.Position.Z}
	}
	if local.Rotation != identity.Rotation {
		q := local.Rotation.Quat
		entry.Rotation = []float64{q.V[0], q.V[1], q.V[2], q.W}
	}
	if local.Scale != identity.Scale {
		entry.Scale = []float64{local.Scale.X, local.Scale.Y, local.Scale.Z}
	}
	return entry
}

// encodeComponent はコンポーネントを要素へ変換する。
func encodeComponent(
	component *scene.Component,
	paths map[scene.NodeID]string,
	ordinals map[scene.ComponentID]int,
) (componentEntry, error) {
	entry := componentEntry{Type: component.TypeName, Kind: component.Kind.String()}
	if component.IsSkinnedMesh() {
		mesh := component.SkinnedMesh
		meshEntry := &skinnedMeshEntry{
			Name:     mesh.Name,
			RootBone: paths[mesh.RootBone],
			Bones:    make([]string, 0, len(mesh.Bones)),
		}
		for _, bone := range mesh.Bones {
			meshEntry.Bones = append(meshEntry.Bones, paths[bone])
		}
		for _, weights := range mesh.Weights {
			vertex := make([]weightEntry, 0, len(weights))
			for _, w := range weights {
				vertex = append(vertex, weightEntry{Index: w.Index, Weight: w.Weight})
			}
			meshEntry.Weights = append(meshEntry.Weights, vertex)
		}
		entry.SkinnedMesh = meshEntry
	}
	if component.IsPhysBone() {
		settings, err := component.PhysBone.Clone()
		if err != nil {
			return entry, merr.NewIoSaveFailed("揺れもの設定の書き出しに失敗しました", err)
		}
		physEntry := &physBoneEntry{
			Root:           paths[settings.Root],
			MultiChildType: settings.MultiChildType.String(),
			Params:         settings.Params,
		}
		for _, ignored := range settings.Ignore {
			if path, ok := paths[ignored]; ok {
				physEntry.Ignore = append(physEntry.Ignore, path)
			}
		}
		colliders := make([]scene.ComponentID, 0, len(settings.Params.Colliders))
		for _, collider := range settings.Params.Colliders {
			if ordinal, ok := ordinals[collider]; ok {
				colliders = append(colliders, scene.ComponentID(ordinal))
			} else {
				logSceneWarn("[%s] 存在しないコライダー参照を除外しました: collider=%d",
					model.TinkerWarningColliderDropped, collider)
			}
		}
		physEntry.Params.Colliders = colliders
		entry.PhysBone = physEntry
	}
	return entry, nil
}
