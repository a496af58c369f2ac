// 指示: miu200521358
package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// HumanBone は Humanoid を構成する標準ボーンを表す。
type HumanBone int

// 標準ボーン一覧。並び順は Humanoid 定義順に合わせる。
const (
	Hips HumanBone = iota
	LeftUpperLeg
	RightUpperLeg
	LeftLowerLeg
	RightLowerLeg
	LeftFoot
	RightFoot
	Spine
	Chest
	Neck
	Head
	LeftShoulder
	RightShoulder
	LeftUpperArm
	RightUpperArm
	LeftLowerArm
	RightLowerArm
	LeftHand
	RightHand
	LeftToes
	RightToes
	LeftEye
	RightEye
	Jaw
	LeftThumbProximal
	LeftThumbIntermediate
	LeftThumbDistal
	LeftIndexProximal
	LeftIndexIntermediate
	LeftIndexDistal
	LeftMiddleProximal
	LeftMiddleIntermediate
	LeftMiddleDistal
	LeftRingProximal
	LeftRingIntermediate
	LeftRingDistal
	LeftLittleProximal
	LeftLittleIntermediate
	LeftLittleDistal
	RightThumbProximal
	RightThumbIntermediate
	RightThumbDistal
	RightIndexProximal
	RightIndexIntermediate
	RightIndexDistal
	RightMiddleProximal
	RightMiddleIntermediate
	RightMiddleDistal
	RightRingProximal
	RightRingIntermediate
	RightRingDistal
	RightLittleProximal
	RightLittleIntermediate
	RightLittleDistal
	UpperChest
	// LastBone は列挙終端を表す。ボーンとしては扱わない。
	LastBone
)

var humanBoneNames = [...]string{
	"Hips",
	"LeftUpperLeg",
	"RightUpperLeg",
	"LeftLowerLeg",
	"RightLowerLeg",
	"LeftFoot",
	"RightFoot",
	"Spine",
	"Chest",
	"Neck",
	"Head",
	"LeftShoulder",
	"RightShoulder",
	"LeftUpperArm",
	"RightUpperArm",
	"LeftLowerArm",
	"RightLowerArm",
	"LeftHand",
	"RightHand",
	"LeftToes",
	"RightToes",
	"LeftEye",
	"RightEye",
	"Jaw",
	"LeftThumbProximal",
	"LeftThumbIntermediate",
	"LeftThumbDistal",
	"LeftIndexProximal",
	"LeftIndexIntermediate",
	"LeftIndexDistal",
	"LeftMiddleProximal",
	"LeftMiddleIntermediate",
	"LeftMiddleDistal",
	"LeftRingProximal",
	"LeftRingIntermediate",
	"LeftRingDistal",
	"LeftLittleProximal",
	"LeftLittleIntermediate",
	"LeftLittleDistal",
	"RightThumbProximal",
	"RightThumbIntermediate",
	"RightThumbDistal",
	"RightIndexProximal",
	"RightIndexIntermediate",
	"RightIndexDistal",
	"RightMiddleProximal",
	"RightMiddleIntermediate",
	"RightMiddleDistal",
	"RightRingProximal",
	"RightRingIntermediate",
	"RightRingDistal",
	"RightLittleProximal",
	"RightLittleIntermediate",
	"RightLittleDistal",
	"UpperChest",
}

// humanBoneNameFolder は名前照合用の大文字小文字畳み込みを行う。
var humanBoneNameFolder = cases.Fold()

// humanBoneByFoldedName は正規化済み名から標準ボーンへの辞書を保持する。
var humanBoneByFoldedName = buildHumanBoneByFoldedName()

// String は標準ボーン名を返す。
func (b HumanBone) String() string {
	if !b.Valid() {
		return fmt.Sprintf("HumanBone(%d)", int(b))
	}
	return humanBoneNames[b]
}

// Valid は列挙範囲内の標準ボーンか判定する。
func (b HumanBone) Valid() bool {
	return b >= Hips && b < LastBone
}

// AllHumanBones は LastBone を除く全標準ボーンを定義順で返す。
func AllHumanBones() []HumanBone {
	bones := make([]HumanBone, 0, int(LastBone))
	for b := Hips; b < LastBone; b++ {
		bones = append(bones, b)
	}
	return bones
}

// ParseHumanBone は名前から標準ボーンを解決する。
// 大文字小文字・全角半角・区切り文字(空白, '_', '-', '.')の差異は無視する。
func ParseHumanBone(name string) (HumanBone, error) {
	if b, ok := humanBoneByFoldedName[foldHumanBoneName(name)]; ok {
		return b, nil
	}
	return LastBone, fmt.Errorf("標準ボーン名が不正です: %s", name)
}

// foldHumanBoneName は照合用に名前を正規化する。
func foldHumanBoneName(name string) string {
	normalized := norm.NFKC.String(strings.TrimSpace(name))
	normalized = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, normalized)
	return humanBoneNameFolder.String(normalized)
}

// buildHumanBoneByFoldedName は正規化済み名の辞書を構築する。
func buildHumanBoneByFoldedName() map[string]HumanBone {
	byName := make(map[string]HumanBone, len(humanBoneNames))
	for i, name := range humanBoneNames {
		byName[foldHumanBoneName(name)] = HumanBone(i)
	}
	return byName
}
