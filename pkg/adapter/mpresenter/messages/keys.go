// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーを提供する。
package messages

import "github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"

// メッセージキー一覧。
const (
	HelpUsageTitle = "使い方"
	HelpUsage      = "アバターのボーン階層と揺れもの構成を整理します"

	HelpClassify           = "衣装メッシュのバインドボーンを分類します"
	HelpMerge              = "冗長ボーンを対応する素体ボーンへ統合します"
	HelpPhysBone           = "揺れものコンポーネントを操作します"
	HelpPhysBoneCollect    = "揺れものの構成を一覧表示します"
	HelpPhysBoneCombine    = "分解状態の揺れものを1つに統合します"
	HelpPhysBoneSplit      = "統合状態の揺れものを子ごとに分解します"
	HelpPhysBoneMove       = "揺れものコンポーネントを別ノードへ移設します"
	HelpPhysBoneCombineAll = "統合可能な揺れものを全て統合します"
	HelpPhysBoneSplitAll   = "統合状態の揺れものを全て分解します"
	HelpUnused             = "未使用ボーンを操作します"
	HelpUnusedFind         = "未使用ボーンを一覧表示します"
	HelpUnusedDelete       = "未使用ボーンを削除します"

	FlagConfig      = "設定ファイルのパス"
	FlagOut         = "出力シーンファイルのパス(省略時は入力を上書き)"
	FlagLogLevel    = "ログレベル(debug/info/warn/error)"
	FlagMesh        = "対象スキンメッシュのノードパス"
	FlagTarget      = "対象揺れものの付与先ノードパス"
	FlagDestination = "移設先(AvatarRoot/HipParent/HipBone/PhysBoneRootParent/PhysBoneRoot/FirstChildBone/ParentBone)"
	FlagNoDummy     = "統合時にグループノードを作成しない"
	FlagRoot        = "探索起点ノードのパス(省略時は Hips)"
	FlagMeshOnly    = "スキンメッシュのバインドボーンのみを対象にする"
	FlagExclude     = "処理対象から除外するノードパス"
	FlagForce       = "出力先が存在する場合に上書きする"
	FlagStamp       = "入力と同じ場所のタイムスタンプ付きフォルダへ出力する"

	MessageLoadFailed     = "読み込み失敗"
	MessageSaveFailed     = "保存失敗"
	MessageMeshNotFound   = "スキンメッシュが見つかりません: %s"
	MessageTargetNotFound = "揺れものが見つかりません: %s"
	MessageInputRequired  = "シーンファイルを指定してください"
	MessageNothingToDo    = "処理対象がありません"

	LogLoadSuccess    = "シーン読み込み成功: %s"
	LogSaveSuccess    = "シーン保存成功: %s"
	LogMergeSummary   = "冗長ボーン統合: merged=%d rebound=%d"
	LogCombineSummary = "揺れもの統合: count=%d"
	LogSplitSummary   = "揺れもの分解: count=%d"
	LogMoveSummary    = "揺れもの移設: destination=%s"
	LogUnusedSummary  = "未使用ボーン: count=%d"
	LogUnusedDeleted  = "未使用ボーン削除: count=%d"
)

var boneRelationLabels = map[model.BoneRelation]string{
	model.BoneRelationNull:             "欠損",
	model.BoneRelationHumanoid:         "標準ボーン",
	model.BoneRelationIndependentChild: "独立した子",
	model.BoneRelationShared:           "共有",
	model.BoneRelationRedundant:        "冗長",
	model.BoneRelationPositioning:      "位置調整",
	model.BoneRelationUnrelated:        "無関係",
}

var physBoneRoleLabels = map[model.PhysBoneRole]string{
	model.PhysBoneRoleUnknown:      "未取得",
	model.PhysBoneRoleIndependent:  "独立",
	model.PhysBoneRoleComposed:     "統合済み",
	model.PhysBoneRoleDisassembled: "分解済み",
}

// BoneRelationLabel はボーン関係の表示名を返す。
func BoneRelationLabel(relation model.BoneRelation) string {
	if label, ok := boneRelationLabels[relation]; ok {
		return label
	}
	return relation.String()
}

// PhysBoneRoleLabel は揺れもの構成状態の表示名を返す。
func PhysBoneRoleLabel(role model.PhysBoneRole) string {
	if label, ok := physBoneRoleLabels[role]; ok {
		return label
	}
	return role.String()
}
