// 指示: miu200521358
package model

// BoneRelation は衣装ボーンと素体 Humanoid の関係を表す。
type BoneRelation int

const (
	// BoneRelationNull はボーン参照が欠落していることを表す。
	BoneRelationNull BoneRelation = iota
	// BoneRelationUnrelated はアバターの armature 外にあることを表す。
	BoneRelationUnrelated
	// BoneRelationHumanoid は Humanoid を構成するボーンであることを表す。
	BoneRelationHumanoid
	// BoneRelationShared は他メッシュと共有している装飾ボーンであることを表す。
	BoneRelationShared
	// BoneRelationRedundant は入れ子式着せ替えで生じた削減可能ボーンであることを表す。
	BoneRelationRedundant
	// BoneRelationPositioning は位置調整や揺れものを担うボーンであることを表す。
	BoneRelationPositioning
	// BoneRelationIndependentChild はメッシュ固有の装飾ボーンであることを表す。
	BoneRelationIndependentChild
)

var boneRelationNames = [...]string{
	"Null",
	"Unrelated",
	"Humanoid",
	"Shared",
	"Redundant",
	"Positioning",
	"IndependentChild",
}

// String は関係名を返す。
func (r BoneRelation) String() string {
	if r < BoneRelationNull || int(r) >= len(boneRelationNames) {
		return "Unknown"
	}
	return boneRelationNames[r]
}

// Reducible は削減(統合)可能な関係か判定する。
func (r BoneRelation) Reducible() bool {
	return r == BoneRelationRedundant
}

// AllBoneRelations は全関係を定義順で返す。
func AllBoneRelations() []BoneRelation {
	relations := make([]BoneRelation, 0, len(boneRelationNames))
	for i := range boneRelationNames {
		relations = append(relations, BoneRelation(i))
	}
	return relations
}
