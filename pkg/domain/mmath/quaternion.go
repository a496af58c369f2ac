// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// identityDotThreshold は単位クォータニオン判定に使う内積閾値。
const identityDotThreshold = 1.0 - 1e-6

// Quaternion は回転を表す。
type Quaternion struct {
	mgl64.Quat
}

// NewQuaternion は単位クォータニオンを生成する。
func NewQuaternion() Quaternion {
	return Quaternion{Quat: mgl64.QuatIdent()}
}

// NewQuaternionByValues はxyzw成分からクォータニオンを生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{Quat: mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}}
}

// NewQuaternionFromAxisAngle は軸と角度(ラジアン)からクォータニオンを生成する。
func NewQuaternionFromAxisAngle(axis Vec3, radian float64) Quaternion {
	if axis.Length() == 0 {
		return NewQuaternion()
	}
	return Quaternion{Quat: mgl64.QuatRotate(radian, axis.mgl().Normalize())}
}

// NewQuaternionFromDegrees はオイラー角(度, XYZ順)からクォータニオンを生成する。
func NewQuaternionFromDegrees(x, y, z float64) Quaternion {
	q := mgl64.AnglesToQuat(mgl64.DegToRad(x), mgl64.DegToRad(y), mgl64.DegToRad(z), mgl64.XYZ)
	return Quaternion{Quat: q}
}

// X はx成分を返す。
func (q Quaternion) X() float64 { return q.V[0] }

// Y はy成分を返す。
func (q Quaternion) Y() float64 { return q.V[1] }

// Z はz成分を返す。
func (q Quaternion) Z() float64 { return q.V[2] }

// IsIdent は回転なしとみなせるか判定する。
func (q Quaternion) IsIdent() bool {
	if q.Len() == 0 {
		return true
	}
	return math.Abs(q.Normalize().Dot(mgl64.QuatIdent())) > identityDotThreshold
}

// Muled は回転を合成した結果を返す。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{Quat: q.Mul(other.Quat)}
}

// Rotated はベクトルを回転させた結果を返す。
func (q Quaternion) Rotated(v Vec3) Vec3 {
	return vec3FromMgl(q.Rotate(v.mgl()))
}

// NearEquals は同じ回転とみなせるか判定する。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	return math.Abs(q.Normalize().Dot(other.Normalize())) > 1.0-epsilon
}

// String は表示用文字列を返す。
func (q Quaternion) String() string {
	return fmt.Sprintf("[x=%.5f, y=%.5f, z=%.5f, w=%.5f]", q.X(), q.Y(), q.Z(), q.W)
}
