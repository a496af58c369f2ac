// 指示: miu200521358
package scene

import (
	"fmt"

	"github.com/miu200521358/mu_avatar_tinker/pkg/domain/mmath"
)

// Document は読み込んだシーンとアバター定義の組を表す。
type Document struct {
	Path   string
	Scene  *Scene
	Avatar *Avatar
}

// NewDocument は空のシーンとアバタールートを持つドキュメントを生成する。
func NewDocument(path string, rootName string) (*Document, error) {
	s := NewScene()
	root, err := s.CreateNode(rootName, NoNode, mmath.NewTransform())
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Scene: s, Avatar: NewAvatar(root)}, nil
}

// Validate はシーンとアバター定義の整合を検証する。
func (d *Document) Validate() error {
	if d == nil || d.Scene == nil {
		return fmt.Errorf("シーンが未設定です")
	}
	if err := d.Avatar.Validate(d.Scene); err != nil {
		return err
	}
	return d.Scene.Validate()
}
