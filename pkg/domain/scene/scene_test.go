// 指示: miu200521358
package scene

import (
	"testing"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, s *Scene, name string, parent NodeID, x, y, z float64) NodeID {
	t.Helper()
	id, err := s.CreateNode(name, parent, mmath.NewTransformAt(x, y, z))
	require.NoError(t, err)
	return id
}

func TestSceneHierarchyAndPath(t *testing.T) {
	s := NewScene()
	root := mustCreate(t, s, "Avatar", NoNode, 0, 0, 0)
	hips := mustCreate(t, s, "Hips", root, 0, 1, 0)
	spine := mustCreate(t, s, "Spine", hips, 0, 0.1, 0)
	skirt := mustCreate(t, s, "Skirt", hips, 0, -0.1, 0)

	assert.Equal(t, 4, s.NodeCount())
	assert.Equal(t, []NodeID{root}, s.Roots())
	assert.Equal(t, []NodeID{spine, skirt}, s.Children(hips))
	assert.Equal(t, []NodeID{hips, root}, s.Ancestors(spine))
	assert.Equal(t, []NodeID{root, hips, spine, skirt}, s.AllNodes())
	assert.Equal(t, "Avatar/Hips/Skirt", s.Path(skirt))
	assert.True(t, s.IsDescendantOrSelf(hips, skirt))
	assert.False(t, s.IsDescendantOrSelf(spine, skirt))

	found, ok := s.FindByPath("/Avatar/Hips/Spine/")
	require.True(t, ok)
	assert.Equal(t, spine, found)
	_, ok = s.FindByPath("Avatar/Spine")
	assert.False(t, ok)
	_, ok = s.FindByPath("")
	assert.False(t, ok)

	_, err := s.CreateNode("Orphan", NodeID{Index: 99, Generation: 1}, mmath.NewTransform())
	assert.Error(t, err)
}

func TestSceneRevisionAdvancesOnMutation(t *testing.T) {
	s := NewScene()
	root := mustCreate(t, s, "Avatar", NoNode, 0, 0, 0)
	before := s.Revision()

	require.NoError(t, s.Rename(root, "Root"))
	afterRename := s.Revision()
	s.Touch()

	assert.Greater(t, afterRename, before)
	assert.Greater(t, s.Revision(), afterRename)
	assert.Equal(t, "Root", s.Name(root))
}

func TestSceneSetParentKeepsWorldPosition(t *testing.T) {
	s := NewScene()
	root := mustCreate(t, s, "Avatar", NoNode, 0, 0, 2)
	arm := mustCreate(t, s, "Arm", root, 0, 1, 0)
	hand := mustCreate(t, s, "Hand", arm, 1, 0, 0)
	world := mmath.MatrixPosition(s.WorldMatrix(hand))

	require.NoError(t, s.SetParent(hand, root, true))

	node, ok := s.Node(hand)
	require.True(t, ok)
	assert.True(t, node.Transform().Position.NearEquals(mmath.NewVec3(1, 1, 0), 1e-9))
	assert.True(t, mmath.MatrixPosition(s.WorldMatrix(hand)).NearEquals(world, 1e-9))
	assert.Equal(t, []NodeID{arm, hand}, s.Children(root))

	assert.Error(t, s.SetParent(root, hand, true))
}

func TestSceneDestroyScrubsReferences(t *testing.T) {
	s := NewScene()
	root := mustCreate(t, s, "Avatar", NoNode, 0, 0, 0)
	bone := mustCreate(t, s, "Bone", root, 0, 1, 0)
	child := mustCreate(t, s, "Child", bone, 0, 1, 0)
	other := mustCreate(t, s, "Other", root, 1, 0, 0)

	mesh := &SkinnedMesh{Name: "Body", Bones: []NodeID{bone, child, other}, RootBone: bone}
	meshID, err := s.AddComponent(root, NewSkinnedMeshComponent(mesh))
	require.NoError(t, err)
	settings := &PhysBoneSettings{Root: child, Ignore: []NodeID{child, other}}
	_, err = s.AddComponent(other, NewPhysBoneComponent(settings))
	require.NoError(t, err)
	boneComponentID, err := s.AddComponent(child, NewComponent("Marker", ComponentKindScript))
	require.NoError(t, err)

	require.NoError(t, s.Destroy(bone))

	assert.False(t, s.IsAlive(bone))
	assert.False(t, s.IsAlive(child))
	assert.Equal(t, []NodeID{NoNode, NoNode, other}, mesh.Bones)
	assert.Equal(t, NoNode, mesh.RootBone)
	assert.Equal(t, NoNode, settings.Root)
	assert.Equal(t, []NodeID{other}, settings.Ignore)
	_, ok := s.Component(boneComponentID)
	assert.False(t, ok)
	_, ok = s.Component(meshID)
	assert.True(t, ok)
	assert.Equal(t, other, s.PhysBoneRoot(s.Components(other)[0]))

	reused := mustCreate(t, s, "Reused", root, 0, 0, 0)
	assert.Equal(t, child.Index, reused.Index)
	assert.NotEqual(t, child, reused)
	assert.False(t, s.IsAlive(child))
	assert.Error(t, s.Destroy(bone))
}

func TestSceneComponents(t *testing.T) {
	s := NewScene()
	root := mustCreate(t, s, "Avatar", NoNode, 0, 0, 0)
	hips := mustCreate(t, s, "Hips", root, 0, 1, 0)
	collider, err := s.AddComponent(hips, NewComponent("VRCPhysBoneCollider", ComponentKindPhysBoneCollider))
	require.NoError(t, err)
	phys := NewPhysBoneComponent(&PhysBoneSettings{})
	physID, err := s.AddComponent(hips, phys)
	require.NoError(t, err)

	_, err = s.AddComponent(hips, phys)
	assert.Error(t, err)
	assert.Equal(t, hips, phys.Owner())
	assert.Len(t, s.ComponentsInChildren(root), 2)
	assert.Equal(t, []*Component{phys}, s.PhysBonesInChildren(root))
	assert.Empty(t, s.SkinnedMeshesInChildren(root))

	require.NoError(t, s.RemoveComponent(collider))
	assert.Equal(t, []*Component{phys}, s.Components(hips))
	assert.Error(t, s.RemoveComponent(collider))
	assert.Equal(t, physID, phys.ID())
}

func TestSceneMoveComponent(t *testing.T) {
	s := NewScene()
	root := mustCreate(t, s, "Avatar", NoNode, 0, 0, 0)
	hips := mustCreate(t, s, "Hips", root, 0, 1, 0)
	group := mustCreate(t, s, "Hips_PBGroup", hips, 0, 0, 0)
	phys := NewPhysBoneComponent(&PhysBoneSettings{Root: group})
	physID, err := s.AddComponent(group, phys)
	require.NoError(t, err)
	revision := s.Revision()

	require.NoError(t, s.MoveComponent(physID, hips))

	assert.Equal(t, physID, phys.ID())
	assert.Equal(t, hips, phys.Owner())
	assert.Empty(t, s.Components(group))
	assert.Equal(t, []*Component{phys}, s.Components(hips))
	assert.Greater(t, s.Revision(), revision)
	require.NoError(t, s.Destroy(group))
	moved, ok := s.Component(physID)
	require.True(t, ok)
	assert.Equal(t, hips, moved.Owner())

	assert.Error(t, s.MoveComponent(physID, group))
	assert.Error(t, s.MoveComponent(ComponentID(999), hips))
}

func TestSceneValidateWeights(t *testing.T) {
	s := NewScene()
	root := mustCreate(t, s, "Avatar", NoNode, 0, 0, 0)
	mesh := &SkinnedMesh{Name: "Body", Bones: []NodeID{root}, Weights: [][]BoneWeight{{{Index: 0, Weight: 1}}}}
	_, err := s.AddComponent(root, NewSkinnedMeshComponent(mesh))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	mesh.Weights = append(mesh.Weights, []BoneWeight{{Index: 3, Weight: 1}})
	assert.Error(t, s.Validate())
}

func TestSkinnedMeshHelpers(t *testing.T) {
	a := NodeID{Index: 1, Generation: 1}
	b := NodeID{Index: 2, Generation: 1}
	mesh := &SkinnedMesh{
		Bones:    []NodeID{a, b, a},
		RootBone: a,
		Weights:  [][]BoneWeight{{{Index: 0, Weight: 0}, {Index: 1, Weight: 1}}, {{Index: 9, Weight: 1}}},
	}

	assert.Equal(t, map[int]struct{}{1: {}}, mesh.UsedBoneIndexes())
	assert.True(t, mesh.ContainsBone(a))
	assert.False(t, mesh.ContainsBone(NoNode))
	assert.Equal(t, 3, mesh.ReplaceBone(a, b))
	assert.Equal(t, []NodeID{b, b, b}, mesh.Bones)
	assert.Equal(t, b, mesh.RootBone)
}

func TestPhysBoneSettingFingerprint(t *testing.T) {
	a := &PhysBoneSettings{
		Root:           NodeID{Index: 1, Generation: 1},
		Ignore:         []NodeID{{Index: 2, Generation: 1}},
		MultiChildType: model.MultiChildTypeAverage,
		Params:         PhysBoneParams{Pull: 0.2, LimitType: "Angle"},
	}
	b := &PhysBoneSettings{
		Root:           NodeID{Index: 5, Generation: 3},
		MultiChildType: model.MultiChildTypeAverage,
		Params:         PhysBoneParams{Pull: 0.2, LimitType: "Angle", Colliders: []ComponentID{}, Extra: map[string]float64{}},
	}
	c := &PhysBoneSettings{
		MultiChildType: model.MultiChildTypeAverage,
		Params:         PhysBoneParams{Pull: 0.3, LimitType: "Angle"},
	}

	fa, err := a.SettingFingerprint()
	require.NoError(t, err)
	fb, err := b.SettingFingerprint()
	require.NoError(t, err)
	fc, err := c.SettingFingerprint()
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)
	assert.Equal(t, NodeID{Index: 1, Generation: 1}, a.Root)
	assert.Len(t, a.Ignore, 1)

	var nilSettings *PhysBoneSettings
	_, err = nilSettings.SettingFingerprint()
	assert.Error(t, err)
}

func TestPhysBoneSettingsCloneIsDeep(t *testing.T) {
	original := &PhysBoneSettings{
		Ignore: []NodeID{{Index: 1, Generation: 1}},
		Params: PhysBoneParams{Colliders: []ComponentID{3}, Extra: map[string]float64{"stretch": 0.5}},
	}

	cloned, err := original.Clone()
	require.NoError(t, err)
	cloned.Ignore[0] = NoNode
	cloned.Params.Colliders[0] = 9
	cloned.Params.Extra["stretch"] = 1

	assert.Equal(t, NodeID{Index: 1, Generation: 1}, original.Ignore[0])
	assert.Equal(t, ComponentID(3), original.Params.Colliders[0])
	assert.Equal(t, 0.5, original.Params.Extra["stretch"])
}

func TestAvatarHumanBones(t *testing.T) {
	doc, err := NewDocument("a.yaml", "Avatar")
	require.NoError(t, err)
	s := doc.Scene
	hips := mustCreate(t, s, "Hips", doc.Avatar.Root, 0, 1, 0)
	outside := mustCreate(t, s, "Outside", NoNode, 0, 0, 0)

	require.NoError(t, doc.Avatar.SetHumanBone(model.Hips, hips))
	assert.Error(t, doc.Avatar.SetHumanBone(model.Spine, hips))
	assert.Error(t, doc.Avatar.SetHumanBone(model.LastBone, hips))
	assert.Equal(t, hips, doc.Avatar.Hips())
	assert.Equal(t, map[NodeID]model.HumanBone{hips: model.Hips}, doc.Avatar.HumanBoneNodes(s))
	require.NoError(t, doc.Validate())

	require.NoError(t, doc.Avatar.SetHumanBone(model.Spine, outside))
	assert.Error(t, doc.Validate())

	require.NoError(t, doc.Avatar.SetHumanBone(model.Spine, NoNode))
	assert.Equal(t, NoNode, doc.Avatar.HumanBone(model.Spine))
	require.NoError(t, doc.Validate())

	var missing *Avatar
	assert.Equal(t, NoNode, missing.Hips())
}
