// 指示: miu200521358
package scene

import (
	"fmt"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
)

// NodeID はシーン内ノードの世代付きindexを表す。
// 削除されたノードのIDは世代が一致しなくなるため再解決されない。
type NodeID struct {
	Index      uint32
	Generation uint32
}

// NoNode は参照なしを表す。
var NoNode = NodeID{}

// IsNone は参照なしか判定する。
func (id NodeID) IsNone() bool {
	return id.Generation == 0
}

// String は表示用文字列を返す。
func (id NodeID) String() string {
	if id.IsNone() {
		return "None"
	}
	return fmt.Sprintf("#%d.%d", id.Index, id.Generation)
}

// Node はシーングラフの1ノード(ボーン/GameObject相当)を表す。
type Node struct {
	id         NodeID
	name       string
	transform  mmath.Transform
	parent     NodeID
	children   []NodeID
	components []ComponentID
	packaged   bool
}

// ID はノードIDを返す。
func (n *Node) ID() NodeID { return n.id }

// Name はノード名を返す。
func (n *Node) Name() string { return n.name }

// Transform はローカル姿勢を返す。
func (n *Node) Transform() mmath.Transform { return n.transform }

// Parent は親ノードIDを返す。
func (n *Node) Parent() NodeID { return n.parent }

// ChildCount は子ノード数を返す。
func (n *Node) ChildCount() int { return len(n.children) }

// Children は子ノードIDの複製を返す。
func (n *Node) Children() []NodeID {
	return append([]NodeID(nil), n.children...)
}

// ComponentIDs は付与コンポーネントIDの複製を返す。
func (n *Node) ComponentIDs() []ComponentID {
	return append([]ComponentID(nil), n.components...)
}

// Packaged は外部管理の不変アセット参照(プレハブ等)に属するか返す。
func (n *Node) Packaged() bool { return n.packaged }
