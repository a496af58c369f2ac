// 指示: miu200521358
package mmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(0, 2, -1)

	assert.Equal(t, NewVec3(1, 4, 2), a.Added(b))
	assert.Equal(t, NewVec3(1, 0, 4), a.Subed(b))
	assert.Equal(t, NewVec3(2, 4, 6), a.MuledScalar(2))
	assert.InDelta(t, 5.0, NewVec3(3, 4, 0).Length(), 1e-12)
	assert.True(t, a.NearEquals(NewVec3(1, 2, 3.00001), 1e-4))
	assert.False(t, a.NearEquals(b, 1e-4))
	assert.Equal(t, "[x=1.00000, y=2.00000, z=3.00000]", a.String())
}

func TestQuaternionRotation(t *testing.T) {
	byAxis := NewQuaternionFromAxisAngle(NewVec3(0, 1, 0), math.Pi/2)
	byDegrees := NewQuaternionFromDegrees(0, 90, 0)

	assert.True(t, byAxis.NearEquals(byDegrees, 1e-9))
	assert.True(t, byAxis.Rotated(NewVec3(1, 0, 0)).NearEquals(NewVec3(0, 0, -1), 1e-9))
	assert.False(t, byAxis.IsIdent())
	assert.True(t, NewQuaternion().IsIdent())
	assert.True(t, NewQuaternionByValues(0, 0, 0, 0).IsIdent())
	assert.True(t, NewQuaternionFromAxisAngle(Vec3Zero(), 1).IsIdent())
	assert.True(t, byAxis.Muled(byAxis).NearEquals(NewQuaternionFromDegrees(0, 180, 0), 1e-9))
}

func TestTransformHasOffset(t *testing.T) {
	assert.False(t, NewTransform().HasOffset(DefaultOffsetEpsilon))
	assert.False(t, NewTransformAt(0, 0.00001, 0).HasOffset(DefaultOffsetEpsilon))
	assert.True(t, NewTransformAt(0, 0.1, 0).HasOffset(DefaultOffsetEpsilon))

	rotated := NewTransform()
	rotated.Rotation = NewQuaternionFromDegrees(10, 0, 0)
	assert.True(t, rotated.HasOffset(DefaultOffsetEpsilon))

	scaled := NewTransform()
	scaled.Scale = NewVec3(1, 2, 1)
	assert.True(t, scaled.HasOffset(DefaultOffsetEpsilon))
}

func TestTransformMatrixRoundTrip(t *testing.T) {
	local := Transform{
		Position: NewVec3(1, 2, 3),
		Rotation: NewQuaternionFromDegrees(0, 90, 0),
		Scale:    NewVec3(1, 2, 1),
	}

	restored := TransformFromMatrix(local.Matrix())

	assert.True(t, restored.NearEquals(local, 1e-6), "restored=%v", restored)
	assert.True(t, MatrixPosition(local.Matrix()).NearEquals(NewVec3(1, 2, 3), 1e-12))
	assert.True(t, MatrixNearEquals(local.Matrix(), restored.Matrix(), 1e-6))
}

func TestTransformMatrixComposesParentChild(t *testing.T) {
	parent := NewTransformAt(0, 1, 0)
	parent.Rotation = NewQuaternionFromDegrees(0, 90, 0)
	child := NewTransformAt(1, 0, 0)

	world := parent.Matrix().Mul4(child.Matrix())

	assert.True(t, MatrixPosition(world).NearEquals(NewVec3(0, 1, -1), 1e-9))
}
