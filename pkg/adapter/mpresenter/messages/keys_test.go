// 指示: miu200521358
package messages

import (
	"testing"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/stretchr/testify/assert"
)

func TestHelpKeysAreDefined(t *testing.T) {
	keys := []string{
		HelpClassify,
		HelpMerge,
		HelpPhysBone,
		HelpPhysBoneCollect,
		HelpPhysBoneCombine,
		HelpPhysBoneSplit,
		HelpPhysBoneMove,
		HelpPhysBoneCombineAll,
		HelpPhysBoneSplitAll,
		HelpUnused,
		HelpUnusedFind,
		HelpUnusedDelete,
	}

	seen := map[string]struct{}{}
	for _, key := range keys {
		assert.NotEmpty(t, key)
		_, exists := seen[key]
		assert.False(t, exists, "key should be unique: %s", key)
		seen[key] = struct{}{}
	}
}

func TestBoneRelationLabel(t *testing.T) {
	seen := map[string]struct{}{}
	for _, relation := range model.AllBoneRelations() {
		label := BoneRelationLabel(relation)
		assert.NotEqual(t, relation.String(), label, relation.String())
		seen[label] = struct{}{}
	}
	assert.Len(t, seen, len(model.AllBoneRelations()))
	assert.Equal(t, "Unknown", BoneRelationLabel(model.BoneRelation(99)))
}

func TestPhysBoneRoleLabel(t *testing.T) {
	assert.Equal(t, "統合済み", PhysBoneRoleLabel(model.PhysBoneRoleComposed))
	assert.Equal(t, "分解済み", PhysBoneRoleLabel(model.PhysBoneRoleDisassembled))
	assert.Equal(t, "独立", PhysBoneRoleLabel(model.PhysBoneRoleIndependent))
}
