// 指示: miu200521358
package scene

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
)

// nodeSlot はアリーナの1区画を表す。
type nodeSlot struct {
	node       *Node
	generation uint32
}

// Scene はノードをアリーナで保持するシーングラフを表す。
// 親子関係は木構造で、各子は親に一意に所有される。
type Scene struct {
	slots           []nodeSlot
	freeIndexes     []uint32
	roots           []NodeID
	components      map[ComponentID]*Component
	nextComponentID ComponentID
	revision        uint64
}

// NewScene は空のシーンを生成する。
func NewScene() *Scene {
	return &Scene{
		components:      map[ComponentID]*Component{},
		nextComponentID: 1,
	}
}

// Revision は構造変更ごとに増える版数を返す。
func (s *Scene) Revision() uint64 {
	return s.revision
}

// NodeCount は生存ノード数を返す。
func (s *Scene) NodeCount() int {
	count := 0
	for _, slot := range s.slots {
		if slot.node != nil {
			count++
		}
	}
	return count
}

// Roots はルートノードIDの複製を返す。
func (s *Scene) Roots() []NodeID {
	return append([]NodeID(nil), s.roots...)
}

// IsAlive はノードIDが現存ノードを指すか判定する。
func (s *Scene) IsAlive(id NodeID) bool {
	_, ok := s.Node(id)
	return ok
}

// Node はノードを取得する。削除済みや世代不一致の場合は false を返す。
func (s *Scene) Node(id NodeID) (*Node, bool) {
	if id.IsNone() || int(id.Index) >= len(s.slots) {
		return nil, false
	}
	slot := s.slots[id.Index]
	if slot.node == nil || slot.generation != id.Generation {
		return nil, false
	}
	return slot.node, true
}

// Name はノード名を返す。解決できない場合は空文字を返す。
func (s *Scene) Name(id NodeID) string {
	if node, ok := s.Node(id); ok {
		return node.name
	}
	return ""
}

// Parent は親ノードIDを返す。解決できない場合は NoNode を返す。
func (s *Scene) Parent(id NodeID) NodeID {
	if node, ok := s.Node(id); ok {
		return node.parent
	}
	return NoNode
}

// Children は子ノードIDの複製を返す。
func (s *Scene) Children(id NodeID) []NodeID {
	if node, ok := s.Node(id); ok {
		return node.Children()
	}
	return nil
}

// ChildCount は子ノード数を返す。
func (s *Scene) ChildCount(id NodeID) int {
	if node, ok := s.Node(id); ok {
		return len(node.children)
	}
	return 0
}

// CreateNode はノードを生成し、親の末尾の子として追加する。親が NoNode の場合はルートに追加する。
func (s *Scene) CreateNode(name string, parent NodeID, local mmath.Transform) (NodeID, error) {
	if !parent.IsNone() && !s.IsAlive(parent) {
		return NoNode, fmt.Errorf("親ノードが見つかりません: name=%s parent=%s", name, parent)
	}

	var id NodeID
	if n := len(s.freeIndexes); n > 0 {
		index := s.freeIndexes[n-1]
		s.freeIndexes = s.freeIndexes[:n-1]
		s.slots[index].generation++
		id = NodeID{Index: index, Generation: s.slots[index].generation}
	} else {
		s.slots = append(s.slots, nodeSlot{generation: 1})
		id = NodeID{Index: uint32(len(s.slots) - 1), Generation: 1}
	}
	s.slots[id.Index].node = &Node{
		id:        id,
		name:      name,
		transform: local,
		parent:    parent,
	}
	s.attachChild(parent, id)
	s.touch()
	return id, nil
}

// Rename はノード名を変更する。
func (s *Scene) Rename(id NodeID, name string) error {
	node, ok := s.Node(id)
	if !ok {
		return fmt.Errorf("ノードが見つかりません: %s", id)
	}
	node.name = name
	s.touch()
	return nil
}

// SetLocalTransform はローカル姿勢を設定する。
func (s *Scene) SetLocalTransform(id NodeID, local mmath.Transform) error {
	node, ok := s.Node(id)
	if !ok {
		return fmt.Errorf("ノードが見つかりません: %s", id)
	}
	node.transform = local
	s.touch()
	return nil
}

// SetPackaged は不変アセット参照フラグを設定する。
func (s *Scene) SetPackaged(id NodeID, packaged bool) error {
	node, ok := s.Node(id)
	if !ok {
		return fmt.Errorf("ノードが見つかりません: %s", id)
	}
	node.packaged = packaged
	s.touch()
	return nil
}

// IsPackaged は不変アセット参照に属するか判定する。
func (s *Scene) IsPackaged(id NodeID) bool {
	if node, ok := s.Node(id); ok {
		return node.packaged
	}
	return false
}

// SetParent は親を付け替える。worldPositionStays が true の場合はワールド姿勢を維持する。
func (s *Scene) SetParent(id NodeID, parent NodeID, worldPositionStays bool) error {
	node, ok := s.Node(id)
	if !ok {
		return fmt.Errorf("ノードが見つかりません: %s", id)
	}
	if !parent.IsNone() {
		if !s.IsAlive(parent) {
			return fmt.Errorf("親ノードが見つかりません: node=%s parent=%s", node.name, parent)
		}
		if s.IsDescendantOrSelf(id, parent) {
			return fmt.Errorf("自身の子孫を親に設定できません: node=%s parent=%s", node.name, s.Name(parent))
		}
	}
	if node.parent == parent {
		return nil
	}

	if worldPositionStays {
		world := s.WorldMatrix(id)
		local := world
		if !parent.IsNone() {
			local = s.WorldMatrix(parent).Inv().Mul4(world)
		}
		node.transform = mmath.TransformFromMatrix(local)
	}

	s.detachChild(node.parent, id)
	node.parent = parent
	s.attachChild(parent, id)
	s.touch()
	return nil
}

// Destroy はノードを子孫ごと削除する。
// 削除ノードを指すスキンメッシュと揺れもの参照は NoNode に置き換える。
func (s *Scene) Destroy(id NodeID) error {
	node, ok := s.Node(id)
	if !ok {
		return fmt.Errorf("ノードが見つかりません: %s", id)
	}

	removed := s.Subtree(id)
	removedSet := make(map[NodeID]struct{}, len(removed))
	for _, rid := range removed {
		removedSet[rid] = struct{}{}
	}

	s.detachChild(node.parent, id)
	for _, rid := range removed {
		removedNode, _ := s.Node(rid)
		for _, cid := range removedNode.components {
			delete(s.components, cid)
		}
		s.slots[rid.Index].node = nil
		s.freeIndexes = append(s.freeIndexes, rid.Index)
	}
	s.scrubReferences(removedSet)
	s.touch()
	return nil
}

// WorldMatrix はワールド変換行列を返す。
func (s *Scene) WorldMatrix(id NodeID) mgl64.Mat4 {
	world := mgl64.Ident4()
	for current := id; !current.IsNone(); {
		node, ok := s.Node(current)
		if !ok {
			break
		}
		world = node.transform.Matrix().Mul4(world)
		current = node.parent
	}
	return world
}

// IsDescendantOrSelf は node が ancestor 自身またはその子孫か判定する。
func (s *Scene) IsDescendantOrSelf(ancestor NodeID, node NodeID) bool {
	if ancestor.IsNone() {
		return false
	}
	for current := node; !current.IsNone(); current = s.Parent(current) {
		if current == ancestor {
			return true
		}
	}
	return false
}

// Ancestors は親から順にルートまでの祖先IDを返す。
func (s *Scene) Ancestors(id NodeID) []NodeID {
	ancestors := make([]NodeID, 0)
	for current := s.Parent(id); !current.IsNone(); current = s.Parent(current) {
		ancestors = append(ancestors, current)
	}
	return ancestors
}

// Subtree は root 自身を含む子孫を深さ優先の先行順で返す。
func (s *Scene) Subtree(root NodeID) []NodeID {
	if !s.IsAlive(root) {
		return nil
	}
	result := make([]NodeID, 0)
	stack := []NodeID{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := s.Node(current)
		if !ok {
			continue
		}
		result = append(result, current)
		for i := len(node.children) - 1; i >= 0; i-- {
			stack = append(stack, node.children[i])
		}
	}
	return result
}

// AllNodes は全ルート配下のノードを深さ優先の先行順で返す。
func (s *Scene) AllNodes() []NodeID {
	result := make([]NodeID, 0, s.NodeCount())
	for _, root := range s.roots {
		result = append(result, s.Subtree(root)...)
	}
	return result
}

// Path はルートからのスラッシュ区切りパスを返す。
func (s *Scene) Path(id NodeID) string {
	if !s.IsAlive(id) {
		return ""
	}
	names := []string{s.Name(id)}
	for _, ancestor := range s.Ancestors(id) {
		names = append(names, s.Name(ancestor))
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// FindByPath はスラッシュ区切りパスからノードを解決する。同名兄弟は先頭を採用する。
func (s *Scene) FindByPath(path string) (NodeID, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return NoNode, false
	}
	candidates := s.roots
	current := NoNode
	for _, part := range parts {
		found := NoNode
		for _, candidate := range candidates {
			if s.Name(candidate) == part {
				found = candidate
				break
			}
		}
		if found.IsNone() {
			return NoNode, false
		}
		current = found
		candidates = s.Children(found)
	}
	return current, true
}

// AddComponent はコンポーネントをノードに付与し、IDを採番する。
func (s *Scene) AddComponent(owner NodeID, component *Component) (ComponentID, error) {
	node, ok := s.Node(owner)
	if !ok {
		return NoComponent, fmt.Errorf("付与先ノードが見つかりません: %s", owner)
	}
	if component == nil {
		return NoComponent, fmt.Errorf("付与するコンポーネントが未設定です")
	}
	if component.id != NoComponent {
		return NoComponent, fmt.Errorf("コンポーネントは既に付与済みです: %d", component.id)
	}
	component.id = s.nextComponentID
	component.owner = owner
	s.nextComponentID++
	s.components[component.id] = component
	node.components = append(node.components, component.id)
	s.touch()
	return component.id, nil
}

// RemoveComponent はコンポーネントを取り除く。
func (s *Scene) RemoveComponent(id ComponentID) error {
	component, ok := s.components[id]
	if !ok {
		return fmt.Errorf("コンポーネントが見つかりません: %d", id)
	}
	if node, ok := s.Node(component.owner); ok {
		for i, cid := range node.components {
			if cid == id {
				node.components = append(node.components[:i], node.components[i+1:]...)
				break
			}
		}
	}
	delete(s.components, id)
	s.touch()
	return nil
}

// MoveComponent はコンポーネントをIDを保ったまま別ノードへ付け替える。
func (s *Scene) MoveComponent(id ComponentID, owner NodeID) error {
	component, ok := s.components[id]
	if !ok {
		return fmt.Errorf("コンポーネントが見つかりません: %d", id)
	}
	target, ok := s.Node(owner)
	if !ok {
		return fmt.Errorf("付け替え先ノードが見つかりません: %s", owner)
	}
	if component.owner == owner {
		return nil
	}
	if node, ok := s.Node(component.owner); ok {
		for i, cid := range node.components {
			if cid == id {
				node.components = append(node.components[:i], node.components[i+1:]...)
				break
			}
		}
	}
	component.owner = owner
	target.components = append(target.components, id)
	s.touch()
	return nil
}

// Component はコンポーネントを取得する。
func (s *Scene) Component(id ComponentID) (*Component, bool) {
	component, ok := s.components[id]
	return component, ok
}

// Components はノードに付与されたコンポーネントを付与順で返す。
func (s *Scene) Components(owner NodeID) []*Component {
	node, ok := s.Node(owner)
	if !ok {
		return nil
	}
	result := make([]*Component, 0, len(node.components))
	for _, cid := range node.components {
		if component, ok := s.components[cid]; ok {
			result = append(result, component)
		}
	}
	return result
}

// ComponentsInChildren は root 配下のコンポーネントを階層順・付与順で返す。
func (s *Scene) ComponentsInChildren(root NodeID) []*Component {
	result := make([]*Component, 0)
	for _, id := range s.Subtree(root) {
		result = append(result, s.Components(id)...)
	}
	return result
}

// SkinnedMeshesInChildren は root 配下のスキンメッシュコンポーネントを返す。
func (s *Scene) SkinnedMeshesInChildren(root NodeID) []*Component {
	result := make([]*Component, 0)
	for _, component := range s.ComponentsInChildren(root) {
		if component.IsSkinnedMesh() {
			result = append(result, component)
		}
	}
	return result
}

// PhysBonesInChildren は root 配下の揺れものコンポーネントを返す。
func (s *Scene) PhysBonesInChildren(root NodeID) []*Component {
	result := make([]*Component, 0)
	for _, component := range s.ComponentsInChildren(root) {
		if component.IsPhysBone() {
			result = append(result, component)
		}
	}
	return result
}

// PhysBoneRoot は揺れものの起点ノードを返す。root 未設定時は付与先ノードを返す。
func (s *Scene) PhysBoneRoot(component *Component) NodeID {
	if component == nil || component.PhysBone == nil {
		return NoNode
	}
	if s.IsAlive(component.PhysBone.Root) {
		return component.PhysBone.Root
	}
	return component.owner
}

// Touch は外部から中身を書き換えた際に版数を進める。
func (s *Scene) Touch() {
	s.touch()
}

// Validate はシーン全体のスキンメッシュ不変条件を検証する。
func (s *Scene) Validate() error {
	for _, component := range s.components {
		if !component.IsSkinnedMesh() {
			continue
		}
		if err := component.SkinnedMesh.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) touch() {
	s.revision++
}

func (s *Scene) attachChild(parent NodeID, id NodeID) {
	if parent.IsNone() {
		s.roots = append(s.roots, id)
		return
	}
	if node, ok := s.Node(parent); ok {
		node.children = append(node.children, id)
	}
}

func (s *Scene) detachChild(parent NodeID, id NodeID) {
	if parent.IsNone() {
		s.roots = removeNodeID(s.roots, id)
		return
	}
	if node, ok := s.Node(parent); ok {
		node.children = removeNodeID(node.children, id)
	}
}

// scrubReferences は削除済みノードを指す参照を除去する。
func (s *Scene) scrubReferences(removed map[NodeID]struct{}) {
	for _, component := range s.components {
		if mesh := component.SkinnedMesh; mesh != nil {
			for i, bone := range mesh.Bones {
				if _, ok := removed[bone]; ok {
					mesh.Bones[i] = NoNode
				}
			}
			if _, ok := removed[mesh.RootBone]; ok {
				mesh.RootBone = NoNode
			}
		}
		if settings := component.PhysBone; settings != nil {
			if _, ok := removed[settings.Root]; ok {
				settings.Root = NoNode
			}
			kept := settings.Ignore[:0]
			for _, ignored := range settings.Ignore {
				if _, ok := removed[ignored]; !ok {
					kept = append(kept, ignored)
				}
			}
			settings.Ignore = kept
		}
	}
}

func removeNodeID(ids []NodeID, target NodeID) []NodeID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
