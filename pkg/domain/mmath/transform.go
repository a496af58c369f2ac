// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultOffsetEpsilon はオフセット有無判定の既定閾値。
const DefaultOffsetEpsilon = 1e-4

// Transform はローカル姿勢(位置/回転/スケール)を表す。
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
}

// NewTransform は恒等姿勢を生成する。
func NewTransform() Transform {
	return Transform{
		Position: Vec3Zero(),
		Rotation: NewQuaternion(),
		Scale:    Vec3One(),
	}
}

// NewTransformAt は位置のみ指定した姿勢を生成する。
func NewTransformAt(x, y, z float64) Transform {
	t := NewTransform()
	t.Position = NewVec3(x, y, z)
	return t
}

// HasOffset は位置/回転/スケールのいずれかが恒等から外れているか判定する。
func (t Transform) HasOffset(epsilon float64) bool {
	if t.Position.Length() > epsilon {
		return true
	}
	if !t.Rotation.IsIdent() {
		return true
	}
	return t.Scale.Subed(Vec3One()).Length() > epsilon
}

// Matrix はTRS順の変換行列を返す。
func (t Transform) Matrix() mgl64.Mat4 {
	translate := mgl64.Translate3D(t.Position.X, t.Position.Y, t.Position.Z)
	rotate := t.Rotation.Normalize().Mat4()
	scale := mgl64.Scale3D(t.Scale.X, t.Scale.Y, t.Scale.Z)
	return translate.Mul4(rotate).Mul4(scale)
}

// NearEquals は姿勢が閾値以内で一致するか判定する。
func (t Transform) NearEquals(other Transform, epsilon float64) bool {
	return t.Position.NearEquals(other.Position, epsilon) &&
		t.Rotation.NearEquals(other.Rotation, epsilon) &&
		t.Scale.NearEquals(other.Scale, epsilon)
}

// TransformFromMatrix は変換行列を位置/回転/スケールへ分解する。
// せん断成分は保持できないため近似となる。
func TransformFromMatrix(m mgl64.Mat4) Transform {
	position := vec3FromMgl(m.Col(3).Vec3())
	xAxis := m.Col(0).Vec3()
	yAxis := m.Col(1).Vec3()
	zAxis := m.Col(2).Vec3()
	sx, sy, sz := xAxis.Len(), yAxis.Len(), zAxis.Len()
	if m.Det() < 0 {
		sx = -sx
	}

	rotation := NewQuaternion()
	if sx != 0 && sy != 0 && sz != 0 {
		rotationMatrix := mgl64.Mat4FromCols(
			xAxis.Mul(1/sx).Vec4(0),
			yAxis.Mul(1/sy).Vec4(0),
			zAxis.Mul(1/sz).Vec4(0),
			mgl64.Vec4{0, 0, 0, 1},
		)
		rotation = Quaternion{Quat: mgl64.Mat4ToQuat(rotationMatrix).Normalize()}
	}

	return Transform{
		Position: position,
		Rotation: rotation,
		Scale:    NewVec3(sx, sy, sz),
	}
}

// MatrixNearEquals は行列が閾値以内で一致するか判定する。
func MatrixNearEquals(a, b mgl64.Mat4, epsilon float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// MatrixPosition は行列の平行移動成分を返す。
func MatrixPosition(m mgl64.Mat4) Vec3 {
	return vec3FromMgl(m.Col(3).Vec3())
}
