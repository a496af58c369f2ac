// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/capability"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/model"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/scene"
	"github.com/miu200521358/mu_avatar_tinker/pkg/usecase/port/moutput"
)

// AvatarTinkerUsecaseDeps はアバター編集ユースケースの依存を表す。
// PhysBoneOptions が nil の場合は既定値を使う。
type AvatarTinkerUsecaseDeps struct {
	SceneReader      moutput.ISceneReader
	SceneWriter      moutput.ISceneWriter
	Predicate        capability.Predicate
	Epsilon          float64
	PhysBoneOptions  *PhysBoneOptions
	ProgressReporter ITinkerProgressReporter
}

// AvatarTinkerUsecase はボーン整理と揺れもの編集をまとめたユースケースを表す。
// 呼び出し側が1シーンへの呼び出しを直列化する前提で、内部に排他制御は持たない。
type AvatarTinkerUsecase struct {
	sceneReader      moutput.ISceneReader
	sceneWriter      moutput.ISceneWriter
	classifyOptions  ClassifyOptions
	physBoneOptions  PhysBoneOptions
	progressReporter ITinkerProgressReporter
}

// NewAvatarTinkerUsecase はアバター編集ユースケースを生成する。
func NewAvatarTinkerUsecase(deps AvatarTinkerUsecaseDeps) *AvatarTinkerUsecase {
	physBoneOptions := DefaultPhysBoneOptions()
	if deps.PhysBoneOptions != nil {
		physBoneOptions = *deps.PhysBoneOptions
	}
	return &AvatarTinkerUsecase{
		sceneReader: deps.SceneReader,
		sceneWriter: deps.SceneWriter,
		classifyOptions: ClassifyOptions{
			Predicate: deps.Predicate,
			Epsilon:   deps.Epsilon,
		}.resolve(),
		physBoneOptions:  physBoneOptions,
		progressReporter: deps.ProgressReporter,
	}
}

// PhysBoneOptions は揺れもの編集の設定を返す。
func (uc *AvatarTinkerUsecase) PhysBoneOptions() PhysBoneOptions {
	return uc.physBoneOptions
}

// ClassifyBones は指定メッシュのバインドボーンを分類する。
func (uc *AvatarTinkerUsecase) ClassifyBones(modelData *ModelData, meshID scene.ComponentID) (*BoneMappingSet, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, err
	}
	index, err := BuildSkeletonIndex(modelData.Scene, modelData.Avatar)
	if err != nil {
		return nil, err
	}
	set, err := ClassifyBones(index, meshID, uc.classifyOptions)
	if err != nil {
		return nil, err
	}
	reportTinkerProgress(uc.progressReporter, TinkerProgressEvent{
		Type:      TinkerProgressEventTypeBonesClassified,
		BoneCount: len(set.Mappings),
	})
	return set, nil
}

// MergeRedundantBones は選択済みの削減可能ボーンを統合し、再分類結果を返す。
func (uc *AvatarTinkerUsecase) MergeRedundantBones(modelData *ModelData, set *BoneMappingSet) (*MergeResult, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, err
	}
	result, err := MergeRedundantBones(modelData.Scene, modelData.Avatar, set, uc.classifyOptions)
	if err != nil {
		return nil, err
	}
	reportTinkerProgress(uc.progressReporter, TinkerProgressEvent{
		Type:      TinkerProgressEventTypeBonesMerged,
		BoneCount: result.Merged,
		NodeCount: modelData.Scene.NodeCount(),
	})
	return result, nil
}

// CollectPhysBones は揺れものを収集する。
func (uc *AvatarTinkerUsecase) CollectPhysBones(modelData *ModelData) (*PhysBoneCollection, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, err
	}
	collection, err := CollectPhysBones(modelData.Scene, modelData.Avatar)
	if err != nil {
		return nil, err
	}
	uc.reportPhysBones(TinkerProgressEventTypePhysBonesCollected, collection)
	return collection, nil
}

// CombinePhysBones は対象の揺れもの群を統合する。
func (uc *AvatarTinkerUsecase) CombinePhysBones(modelData *ModelData, info PhysBoneInfo) (*PhysBoneCollection, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, err
	}
	collection, err := CombinePhysBones(modelData.Scene, modelData.Avatar, info, uc.physBoneOptions)
	if err != nil {
		return nil, err
	}
	uc.reportPhysBones(TinkerProgressEventTypePhysBoneCombined, collection)
	return collection, nil
}

// SplitPhysBones は対象の揺れものを子ごとに分割する。
func (uc *AvatarTinkerUsecase) SplitPhysBones(modelData *ModelData, info PhysBoneInfo) (*PhysBoneCollection, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, err
	}
	collection, err := SplitPhysBones(modelData.Scene, modelData.Avatar, info, uc.physBoneOptions)
	if err != nil {
		return nil, err
	}
	uc.reportPhysBones(TinkerProgressEventTypePhysBoneSplit, collection)
	return collection, nil
}

// MovePhysBone は対象の揺れものを移設する。
func (uc *AvatarTinkerUsecase) MovePhysBone(
	modelData *ModelData,
	info PhysBoneInfo,
	destination model.PhysBoneDestination,
) (*PhysBoneCollection, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, err
	}
	collection, err := MovePhysBone(modelData.Scene, modelData.Avatar, info, destination)
	if err != nil {
		return nil, err
	}
	uc.reportPhysBones(TinkerProgressEventTypePhysBoneMoved, collection)
	return collection, nil
}

// CombineAllPhysBones は統合可能な揺れものを全て統合する。
func (uc *AvatarTinkerUsecase) CombineAllPhysBones(modelData *ModelData) (*PhysBoneCollection, int, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, 0, err
	}
	collection, combined, err := CombineAllPhysBones(modelData.Scene, modelData.Avatar, uc.physBoneOptions)
	if err != nil {
		return nil, combined, err
	}
	uc.reportPhysBones(TinkerProgressEventTypePhysBoneCombined, collection)
	return collection, combined, nil
}

// SplitAllPhysBones は統合状態の揺れものを全て分割する。
func (uc *AvatarTinkerUsecase) SplitAllPhysBones(modelData *ModelData) (*PhysBoneCollection, int, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, 0, err
	}
	collection, split, err := SplitAllPhysBones(modelData.Scene, modelData.Avatar, uc.physBoneOptions)
	if err != nil {
		return nil, split, err
	}
	uc.reportPhysBones(TinkerProgressEventTypePhysBoneSplit, collection)
	return collection, split, nil
}

// FindUnusedBones は armature 配下の未使用ボーンを検出する。
func (uc *AvatarTinkerUsecase) FindUnusedBones(modelData *ModelData, armatureRoot scene.NodeID) (*UnusedBoneSet, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, err
	}
	set, err := FindUnusedBones(modelData.Scene, modelData.Avatar, armatureRoot, uc.classifyOptions.Predicate)
	if err != nil {
		return nil, err
	}
	uc.reportUnused(set)
	return set, nil
}

// FindUnusedSkinnedMeshBones はスキンメッシュのバインドボーンから未使用ボーンを検出する。
func (uc *AvatarTinkerUsecase) FindUnusedSkinnedMeshBones(modelData *ModelData) (*UnusedBoneSet, error) {
	if err := requireModelData(modelData); err != nil {
		return nil, err
	}
	set, err := FindUnusedSkinnedMeshBones(modelData.Scene, modelData.Avatar, uc.classifyOptions.Predicate)
	if err != nil {
		return nil, err
	}
	uc.reportUnused(set)
	return set, nil
}

// DeleteUnusedBones は未使用ボーンを削除する。
func (uc *AvatarTinkerUsecase) DeleteUnusedBones(modelData *ModelData, set *UnusedBoneSet) (int, error) {
	if err := requireModelData(modelData); err != nil {
		return 0, err
	}
	deleted, err := DeleteUnusedBones(modelData.Scene, set)
	if err != nil {
		return deleted, err
	}
	reportTinkerProgress(uc.progressReporter, TinkerProgressEvent{
		Type:      TinkerProgressEventTypeUnusedBonesDeleted,
		NodeCount: deleted,
	})
	return deleted, nil
}

func (uc *AvatarTinkerUsecase) reportPhysBones(eventType TinkerProgressEventType, collection *PhysBoneCollection) {
	reportTinkerProgress(uc.progressReporter, TinkerProgressEvent{
		Type:      eventType,
		PhysCount: len(collection.Infos),
	})
}

func (uc *AvatarTinkerUsecase) reportUnused(set *UnusedBoneSet) {
	reportTinkerProgress(uc.progressReporter, TinkerProgressEvent{
		Type:      TinkerProgressEventTypeUnusedBonesFound,
		BoneCount: len(set.Bones),
	})
}

// requireModelData は編集対象が揃っているか検証する。
func requireModelData(modelData *ModelData) error {
	if modelData == nil || modelData.Scene == nil || modelData.Avatar == nil {
		return fmt.Errorf("編集対象シーンが未設定です")
	}
	return nil
}
