// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/stretchr/testify/require"
)

// avatarFixture はテスト用のアバター構築補助を表す。
type avatarFixture struct {
	t      *testing.T
	doc    *scene.Document
	s      *scene.Scene
	avatar *scene.Avatar
	nodes  map[string]scene.NodeID
}

// newAvatarFixture は Avatar/Armature/Hips/Spine/Chest/Neck を持つアバターを生成する。
func newAvatarFixture(t *testing.T) *avatarFixture {
	t.Helper()
	doc, err := scene.NewDocument("test.yaml", "Avatar")
	require.NoError(t, err)
	f := &avatarFixture{
		t:      t,
		doc:    doc,
		s:      doc.Scene,
		avatar: doc.Avatar,
		nodes:  map[string]scene.NodeID{"Avatar": doc.Avatar.Root},
	}
	f.addNode("Armature", "Avatar", mmath.NewTransform())
	f.addHuman(model.Hips, "Hips", "Armature", mmath.NewTransformAt(0, 1, 0))
	f.addHuman(model.Spine, "Spine", "Hips", mmath.NewTransformAt(0, 0.1, 0))
	f.addHuman(model.Chest, "Chest", "Spine", mmath.NewTransformAt(0, 0.15, 0))
	f.addHuman(model.Neck, "Neck", "Chest", mmath.NewTransformAt(0, 0.2, 0))
	f.addNode("Body", "Avatar", mmath.NewTransform())
	return f
}

// addNode は名前付きノードを追加する。
func (f *avatarFixture) addNode(name string, parent string, local mmath.Transform) scene.NodeID {
	f.t.Helper()
	parentID, ok := f.nodes[parent]
	require.True(f.t, ok, "parent %s", parent)
	id, err := f.s.CreateNode(name, parentID, local)
	require.NoError(f.t, err)
	f.nodes[name] = id
	return id
}

// addHuman は標準ボーンとしてノードを追加する。
func (f *avatarFixture) addHuman(bone model.HumanBone, name string, parent string, local mmath.Transform) scene.NodeID {
	f.t.Helper()
	id := f.addNode(name, parent, local)
	require.NoError(f.t, f.avatar.SetHumanBone(bone, id))
	return id
}

// id は名前からノードIDを返す。
func (f *avatarFixture) id(name string) scene.NodeID {
	f.t.Helper()
	id, ok := f.nodes[name]
	require.True(f.t, ok, "node %s", name)
	return id
}

// addMesh は指定ボーンへ1頂点ずつウェイト1で割り当てたスキンメッシュを追加する。
// ボーン名が空文字の場合は欠落参照とする。
func (f *avatarFixture) addMesh(owner string, meshName string, boneNames ...string) *scene.Component {
	f.t.Helper()
	mesh := &scene.SkinnedMesh{Name: meshName}
	for i, name := range boneNames {
		if name == "" {
			mesh.Bones = append(mesh.Bones, scene.NoNode)
			continue
		}
		mesh.Bones = append(mesh.Bones, f.id(name))
		mesh.Weights = append(mesh.Weights, []scene.BoneWeight{{Index: i, Weight: 1}})
	}
	if len(boneNames) > 0 && boneNames[0] != "" {
		mesh.RootBone = f.id(boneNames[0])
	}
	component := scene.NewSkinnedMeshComponent(mesh)
	_, err := f.s.AddComponent(f.id(owner), component)
	require.NoError(f.t, err)
	return component
}

// addComponent は型名と能力タグを指定してコンポーネントを付与する。
func (f *avatarFixture) addComponent(owner string, typeName string, kind scene.ComponentKind) *scene.Component {
	f.t.Helper()
	component := scene.NewComponent(typeName, kind)
	_, err := f.s.AddComponent(f.id(owner), component)
	require.NoError(f.t, err)
	return component
}

// addPhysBone は root を owner 自身とする揺れものを付与する。
func (f *avatarFixture) addPhysBone(owner string, multiChild model.MultiChildType, pull float64, ignore ...string) *scene.Component {
	f.t.Helper()
	settings := &scene.PhysBoneSettings{
		Root:           f.id(owner),
		MultiChildType: multiChild,
		Params: scene.PhysBoneParams{
			Pull:      pull,
			Spring:    0.2,
			LimitType: "Angle",
			MaxAngleX: 45,
			Extra:     map[string]float64{"stretch": 0.1},
		},
	}
	for _, name := range ignore {
		settings.Ignore = append(settings.Ignore, f.id(name))
	}
	component := scene.NewPhysBoneComponent(settings)
	_, err := f.s.AddComponent(f.id(owner), component)
	require.NoError(f.t, err)
	return component
}

// classify は指定メッシュを分類する。
func (f *avatarFixture) classify(mesh *scene.Component) *BoneMappingSet {
	f.t.Helper()
	index, err := BuildSkeletonIndex(f.s, f.avatar)
	require.NoError(f.t, err)
	set, err := ClassifyBones(index, mesh.ID(), ClassifyOptions{})
	require.NoError(f.t, err)
	return set
}

// mappingOf は指定ボーンの分類結果を返す。
func mappingOf(t *testing.T, set *BoneMappingSet, bone scene.NodeID) BoneMapping {
	t.Helper()
	for _, mapping := range set.Mappings {
		if mapping.Bone == bone {
			return mapping
		}
	}
	t.Fatalf("mapping not found: %s", bone)
	return BoneMapping{}
}
