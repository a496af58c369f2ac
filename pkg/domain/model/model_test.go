// 指示: miu200521358
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHumanBoneNormalizesNames(t *testing.T) {
	testCases := map[string]HumanBone{
		"Hips":           Hips,
		"hips":           Hips,
		"left_upper_leg": LeftUpperLeg,
		"Left Upper Leg": LeftUpperLeg,
		"right-hand":     RightHand,
		"left.eye":       LeftEye,
	}
	for name, want := range testCases {
		got, err := ParseHumanBone(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	wide, err := ParseHumanBone("ＵｐｐｅｒＣｈｅｓｔ")
	require.NoError(t, err)
	assert.Equal(t, UpperChest, wide)

	_, err = ParseHumanBone("Tail")
	assert.Error(t, err)
}

func TestHumanBoneEnumeration(t *testing.T) {
	bones := AllHumanBones()

	assert.Len(t, bones, int(LastBone))
	assert.Equal(t, Hips, bones[0])
	assert.Equal(t, "UpperChest", UpperChest.String())
	assert.False(t, LastBone.Valid())
	assert.Equal(t, "HumanBone(-1)", HumanBone(-1).String())
}

func TestBoneRelationNames(t *testing.T) {
	relations := AllBoneRelations()

	require.Len(t, relations, 7)
	assert.Equal(t, "Null", relations[0].String())
	assert.Equal(t, "IndependentChild", BoneRelationIndependentChild.String())
	assert.Equal(t, "Unknown", BoneRelation(42).String())
	assert.True(t, BoneRelationRedundant.Reducible())
	assert.False(t, BoneRelationPositioning.Reducible())
}

func TestPhysBoneEnumParsing(t *testing.T) {
	multiChildType, err := ParseMultiChildType(" average ")
	require.NoError(t, err)
	assert.Equal(t, MultiChildTypeAverage, multiChildType)
	_, err = ParseMultiChildType("Random")
	assert.Error(t, err)
	assert.Equal(t, "MultiChildType(9)", MultiChildType(9).String())

	destination, err := ParsePhysBoneDestination("hipbone")
	require.NoError(t, err)
	assert.Equal(t, PhysBoneDestinationHipBone, destination)
	assert.Equal(t, "FirstChildBone", PhysBoneDestinationFirstChildBone.String())
	_, err = ParsePhysBoneDestination("Moon")
	assert.Error(t, err)

	assert.Equal(t, "Composed", PhysBoneRoleComposed.String())
	assert.Equal(t, "Unknown", PhysBoneRoleUnknown.String())
}
