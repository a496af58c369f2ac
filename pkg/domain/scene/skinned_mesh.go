// 指示: miu200521358
package scene

import "fmt"

// BoneWeight は頂点1件のボーン参照とウェイトを表す。
type BoneWeight struct {
	Index  int
	Weight float64
}

// SkinnedMesh はスキンメッシュのバインド情報を表す。
type SkinnedMesh struct {
	Name     string
	Bones    []NodeID
	RootBone NodeID
	// Weights は頂点ごとのボーンウェイト。使用ボーン集合の算出にのみ読む。
	Weights [][]BoneWeight
}

// Validate はウェイトのボーンindexがバインドボーン範囲内か検証する。
func (m *SkinnedMesh) Validate() error {
	if m == nil {
		return fmt.Errorf("スキンメッシュが未設定です")
	}
	for vertexIndex, weights := range m.Weights {
		for _, w := range weights {
			if w.Index < 0 || w.Index >= len(m.Bones) {
				return fmt.Errorf(
					"頂点ウェイトのボーンindexが範囲外です: mesh=%s vertex=%d index=%d bones=%d",
					m.Name, vertexIndex, w.Index, len(m.Bones))
			}
		}
	}
	return nil
}

// UsedBoneIndexes はウェイトが0より大きいボーンindex集合を返す。
func (m *SkinnedMesh) UsedBoneIndexes() map[int]struct{} {
	used := map[int]struct{}{}
	if m == nil {
		return used
	}
	for _, weights := range m.Weights {
		for _, w := range weights {
			if w.Weight <= 0 || w.Index < 0 || w.Index >= len(m.Bones) {
				continue
			}
			used[w.Index] = struct{}{}
		}
	}
	return used
}

// ReplaceBone はバインドボーンとルートボーンの参照を置き換え、置換件数を返す。
func (m *SkinnedMesh) ReplaceBone(from, to NodeID) int {
	if m == nil {
		return 0
	}
	count := 0
	for i, bone := range m.Bones {
		if bone == from {
			m.Bones[i] = to
			count++
		}
	}
	if m.RootBone == from {
		m.RootBone = to
		count++
	}
	return count
}

// ContainsBone はバインドボーンに含まれるか判定する。
func (m *SkinnedMesh) ContainsBone(id NodeID) bool {
	if m == nil || id.IsNone() {
		return false
	}
	for _, bone := range m.Bones {
		if bone == id {
			return true
		}
	}
	return false
}
