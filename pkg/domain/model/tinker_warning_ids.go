// 指示: miu200521358
package model

const (
	// TinkerWarningSuspectAutoConverted は他形式から自動変換された揺れものの疑い警告。
	TinkerWarningSuspectAutoConverted = "TinkerWarningSuspectAutoConverted"
	// TinkerWarningGroupKept は分割後も揺れものグループノードを解消できなかった警告。
	TinkerWarningGroupKept = "TinkerWarningGroupKept"
	// TinkerWarningMissingBindBone はバインドボーン欠損警告。
	TinkerWarningMissingBindBone = "TinkerWarningMissingBindBone"
	// TinkerWarningColliderDropped は保存時に参照先のないコライダーを除外した警告。
	TinkerWarningColliderDropped = "TinkerWarningColliderDropped"
)

// AllTinkerWarningIDs は全警告IDを返す。
func AllTinkerWarningIDs() []string {
	return []string{
		TinkerWarningSuspectAutoConverted,
		TinkerWarningGroupKept,
		TinkerWarningMissingBindBone,
		TinkerWarningColliderDropped,
	}
}
