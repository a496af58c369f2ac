// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/port/moutput"
)

// ModelData は編集対象のシーンとアバター定義を表す。
type ModelData = scene.Document

// SaveOptions は保存時オプションを表す。
type SaveOptions = moutput.SaveOptions

// TinkerProgressEventType は編集処理の進捗イベント種別を表す。
type TinkerProgressEventType string

const (
	// TinkerProgressEventTypeBonesClassified はボーン分類完了イベントを表す。
	TinkerProgressEventTypeBonesClassified TinkerProgressEventType = "bones_classified"
	// TinkerProgressEventTypeBonesMerged は冗長ボーン統合完了イベントを表す。
	TinkerProgressEventTypeBonesMerged TinkerProgressEventType = "bones_merged"
	// TinkerProgressEventTypePhysBonesCollected は揺れもの収集完了イベントを表す。
	TinkerProgressEventTypePhysBonesCollected TinkerProgressEventType = "phys_bones_collected"
	// TinkerProgressEventTypePhysBoneCombined は揺れもの統合1件完了イベントを表す。
	TinkerProgressEventTypePhysBoneCombined TinkerProgressEventType = "phys_bone_combined"
	// TinkerProgressEventTypePhysBoneSplit は揺れもの分割1件完了イベントを表す。
	TinkerProgressEventTypePhysBoneSplit TinkerProgressEventType = "phys_bone_split"
	// TinkerProgressEventTypePhysBoneMoved は揺れもの移設完了イベントを表す。
	TinkerProgressEventTypePhysBoneMoved TinkerProgressEventType = "phys_bone_moved"
	// TinkerProgressEventTypeUnusedBonesFound は未使用ボーン検出完了イベントを表す。
	TinkerProgressEventTypeUnusedBonesFound TinkerProgressEventType = "unused_bones_found"
	// TinkerProgressEventTypeUnusedBonesDeleted は未使用ボーン削除完了イベントを表す。
	TinkerProgressEventTypeUnusedBonesDeleted TinkerProgressEventType = "unused_bones_deleted"
)

// TinkerProgressEvent は編集処理の進捗イベントを表す。
type TinkerProgressEvent struct {
	Type      TinkerProgressEventType
	BoneCount int
	NodeCount int
	PhysCount int
}

// ITinkerProgressReporter は編集処理の進捗通知契約を表す。
type ITinkerProgressReporter interface {
	// ReportTinkerProgress は編集処理進捗を通知する。
	ReportTinkerProgress(event TinkerProgressEvent)
}

// reportTinkerProgress は通知先が設定されている場合のみ進捗を通知する。
func reportTinkerProgress(reporter ITinkerProgressReporter, event TinkerProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportTinkerProgress(event)
}
