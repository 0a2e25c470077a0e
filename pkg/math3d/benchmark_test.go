package math3d

import (
	"math"
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkRotateAxisDegrees(b *testing.B) {
	axis := V3(1, 1, 0)

	for b.Loop() {
		_ = RotateAxisDegrees(axis, 33)
	}
}

func BenchmarkPerspective(b *testing.B) {
	for b.Loop() {
		_, _ = Perspective(math.Pi/3, 1.333, 0.1, 100.0)
	}
}

func BenchmarkLookAt(b *testing.B) {
	eye := V3(0, 0, -10)
	target := V3(0, 0, 0)
	up := V3(0, 1, 0)

	for b.Loop() {
		_, _ = LookAt(eye, target, up)
	}
}

func BenchmarkModelViewProjection(b *testing.B) {
	// Same composition order the renderer uses: P · V · M
	view, _ := LookAt(V3(0, 0, -10), V3(0, 0, 0), V3(0, 1, 0))
	proj, _ := Perspective(math.Pi/3, 1.333, 0.1, 100.0)
	model := RotateAxisDegrees(V3(0, 1, 0), 30)

	for b.Loop() {
		_ = proj.Mul(view).Mul(model)
	}
}
