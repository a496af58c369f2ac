// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/shared/merr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRedundantBones_ChestCostume(t *testing.T) {
	f := newAvatarFixture(t)
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("Chest_costume", "Chest", mmath.NewTransform())
	costume := f.addMesh("Costume", "Costume", "Chest_costume")
	set := f.classify(costume)
	require.Equal(t, model.BoneRelationRedundant, set.Mappings[0].Relation)
	require.Equal(t, f.id("Chest"), set.Mappings[0].BaseBone)
	before := f.s.NodeCount()

	result, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, 2, result.Rebound)
	assert.Equal(t, before-1, f.s.NodeCount())
	assert.False(t, f.s.IsAlive(f.id("Chest_costume")))
	assert.Equal(t, []scene.NodeID{f.id("Chest")}, costume.SkinnedMesh.Bones)
	assert.Equal(t, f.id("Chest"), costume.SkinnedMesh.RootBone)
	require.NotNil(t, result.Mappings)
	assert.Equal(t, f.s.Revision(), result.Mappings.Revision)
	assert.Equal(t, model.BoneRelationHumanoid, result.Mappings.Mappings[0].Relation)
}

func TestMergeRedundantBones_ChildrenKeepWorldTransform(t *testing.T) {
	f := newAvatarFixture(t)
	rotated := mmath.NewTransformAt(0, 0.15, 0)
	rotated.Rotation = mmath.NewQuaternionFromDegrees(0, 30, 10)
	require.NoError(t, f.s.SetLocalTransform(f.id("Chest"), rotated))
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("Chest_costume", "Chest", mmath.NewTransform())
	left := mmath.NewTransformAt(0.1, 0.05, 0)
	left.Rotation = mmath.NewQuaternionFromDegrees(15, 0, 0)
	f.addNode("Breast_L", "Chest_costume", left)
	f.addNode("Breast_R", "Chest_costume", mmath.NewTransformAt(-0.1, 0.05, 0))
	f.addNode("Breast_L_end", "Breast_L", mmath.NewTransformAt(0, 0, 0.05))
	costume := f.addMesh("Costume", "Costume", "Chest_costume", "Breast_L", "Breast_R", "Breast_L_end")
	set := f.classify(costume)

	worlds := map[string]mgl64.Mat4{}
	for _, name := range []string{"Breast_L", "Breast_R", "Breast_L_end"} {
		worlds[name] = f.s.WorldMatrix(f.id(name))
	}
	before := f.s.NodeCount()

	_, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.NoError(t, err)
	assert.Equal(t, before-1, f.s.NodeCount())
	for _, name := range []string{"Breast_L", "Breast_R"} {
		assert.Equal(t, f.id("Chest"), f.s.Parent(f.id(name)), name)
	}
	assert.Equal(t, f.id("Breast_L"), f.s.Parent(f.id("Breast_L_end")))
	for name, world := range worlds {
		assert.True(t, mmath.MatrixNearEquals(world, f.s.WorldMatrix(f.id(name)), 1e-6), name)
	}
}

func TestMergeRedundantBones_TransitiveCollapse(t *testing.T) {
	f := newAvatarFixture(t)
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("B", "Chest", mmath.NewTransform())
	f.addNode("C", "B", mmath.NewTransform())
	f.addNode("C_child1", "C", mmath.NewTransformAt(0.1, 0, 0))
	f.addNode("C_child2", "C", mmath.NewTransformAt(-0.1, 0, 0))
	costume := f.addMesh("Costume", "Costume", "C_child1", "C_child2")
	set := &BoneMappingSet{
		Mesh:     costume.ID(),
		Hips:     f.id("Hips"),
		Revision: f.s.Revision(),
		Mappings: []BoneMapping{
			{Bone: f.id("B"), BaseBone: f.id("Chest"), Relation: model.BoneRelationRedundant, Selected: true},
			{Bone: f.id("C"), BaseBone: f.id("B"), Relation: model.BoneRelationRedundant, Selected: true},
		},
	}
	before := f.s.NodeCount()

	result, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Merged)
	assert.Equal(t, before-2, f.s.NodeCount())
	assert.False(t, f.s.IsAlive(f.id("B")))
	assert.False(t, f.s.IsAlive(f.id("C")))
	assert.Equal(t, f.id("Chest"), f.s.Parent(f.id("C_child1")))
	assert.Equal(t, f.id("Chest"), f.s.Parent(f.id("C_child2")))
	assert.Equal(t, model.BoneRelationPositioning, result.Mappings.Mappings[0].Relation)
}

func TestMergeRedundantBones_UnselectedIsKept(t *testing.T) {
	f := newAvatarFixture(t)
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("Chest_costume", "Chest", mmath.NewTransform())
	costume := f.addMesh("Costume", "Costume", "Chest_costume")
	set := f.classify(costume)
	SelectMappings(set, false)
	before := f.s.NodeCount()

	result, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Merged)
	assert.Equal(t, before, f.s.NodeCount())
	assert.Equal(t, model.BoneRelationRedundant, result.Mappings.Mappings[0].Relation)
}

func TestMergeRedundantBones_PackagedBoneFailsBeforeMutation(t *testing.T) {
	f := newAvatarFixture(t)
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("Sleeve", "Chest", mmath.NewTransform())
	f.addNode("Chest_costume", "Chest", mmath.NewTransform())
	costume := f.addMesh("Costume", "Costume", "Sleeve", "Chest_costume")
	require.NoError(t, f.s.SetPackaged(f.id("Chest_costume"), true))
	set := f.classify(costume)
	require.Len(t, set.SelectedRedundant(), 2)
	before := f.s.NodeCount()

	_, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.Error(t, err)
	assert.True(t, merr.IsPreconditionViolation(err))
	assert.Equal(t, merr.PreconditionViolationErrorID, merr.ExtractErrorID(err))
	assert.Equal(t, before, f.s.NodeCount())
	assert.True(t, f.s.IsAlive(f.id("Sleeve")))
	assert.Equal(t, f.id("Sleeve"), costume.SkinnedMesh.Bones[0])
}

func TestMergeRedundantBones_PackagedBaseFails(t *testing.T) {
	f := newAvatarFixture(t)
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("Chest_costume", "Chest", mmath.NewTransform())
	costume := f.addMesh("Costume", "Costume", "Chest_costume")
	require.NoError(t, f.s.SetPackaged(f.id("Chest"), true))
	set := f.classify(costume)

	_, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.Error(t, err)
	assert.True(t, merr.IsPreconditionViolation(err))
	assert.True(t, f.s.IsAlive(f.id("Chest_costume")))
}

func TestMergeRedundantBones_StaleSet(t *testing.T) {
	f := newAvatarFixture(t)
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("Chest_costume", "Chest", mmath.NewTransform())
	costume := f.addMesh("Costume", "Costume", "Chest_costume")
	set := f.classify(costume)
	_, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})
	require.NoError(t, err)

	_, err = MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.Error(t, err)
	assert.True(t, merr.IsStaleReference(err))
}

func TestMergeRedundantBones_RebindsEveryMesh(t *testing.T) {
	f := newAvatarFixture(t)
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("Other", "Avatar", mmath.NewTransform())
	f.addNode("Chest_costume", "Chest", mmath.NewTransform())
	costume := f.addMesh("Costume", "Costume", "Chest_costume", "Chest_costume")
	other := f.addMesh("Other", "Other", "Neck", "Chest_costume")
	set := f.classify(costume)

	result, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Merged)
	assert.Equal(t, []scene.NodeID{f.id("Chest"), f.id("Chest")}, costume.SkinnedMesh.Bones)
	assert.Equal(t, []scene.NodeID{f.id("Neck"), f.id("Chest")}, other.SkinnedMesh.Bones)
}

func TestMergeRedundantBones_RetargetsPhysBoneReferences(t *testing.T) {
	f := newAvatarFixture(t)
	f.addNode("Costume", "Avatar", mmath.NewTransform())
	f.addNode("Chest_costume", "Chest", mmath.NewTransform())
	f.addNode("Ribbon", "Chest_costume", mmath.NewTransformAt(0, 0, 0.1))
	f.addNode("Hair", "Neck", mmath.NewTransform())
	f.addNode("Hair_1", "Hair", mmath.NewTransformAt(0, 0, 0.1))
	costume := f.addMesh("Costume", "Costume", "Chest_costume")
	rooted := f.addPhysBone("Hair", model.MultiChildTypeAverage, 0.2)
	rooted.PhysBone.Root = f.id("Chest_costume")
	ignoring := f.addPhysBone("Hair_1", model.MultiChildTypeAverage, 0.2)
	ignoring.PhysBone.Root = f.id("Chest")
	ignoring.PhysBone.Ignore = []scene.NodeID{f.id("Chest_costume")}
	set := f.classify(costume)

	_, err := MergeRedundantBones(f.s, f.avatar, set, ClassifyOptions{})

	require.NoError(t, err)
	assert.Equal(t, f.id("Chest"), rooted.PhysBone.Root)
	assert.Equal(t, []scene.NodeID{f.id("Neck")}, rooted.PhysBone.Ignore)
	assert.Equal(t, []scene.NodeID{f.id("Ribbon")}, ignoring.PhysBone.Ignore)
}
