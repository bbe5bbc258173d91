package math

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func near(a, b float32) bool {
	return float32(math.Abs(float64(a-b))) < 1e-4
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := range 16 {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("Identity()[%d] = %f, want %f", i, m[i], want)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	got := m.Mul(Identity())
	if got != m {
		t.Errorf("M * I = %v, want %v", got, m)
	}
}

func TestTranslateMulVec4(t *testing.T) {
	p := Translate(5, 10, 15).MulVec4(Vec4{1, 1, 1, 1})
	want := Vec4{6, 11, 16, 1}
	if p != want {
		t.Errorf("Translate * p = %v, want %v", p, want)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(math.Pi/4, 1, 0.1, 100)
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{-3, 0, 0}
	m := LookAt(eye, Vec3{}, Vec3{0, 0, 1})

	p := m.MulVec4(Vec4{eye.X, eye.Y, eye.Z, 1})
	if !near(p[0], 0) || !near(p[1], 0) || !near(p[2], 0) {
		t.Errorf("eye maps to %v, want origin", p)
	}

	// The target lies straight ahead on the -Z view axis.
	o := m.MulVec4(Vec4{0, 0, 0, 1})
	if !near(o[2], -3) {
		t.Errorf("target depth = %f, want -3", o[2])
	}
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"translate", Translate(1, -2, 3)},
		{"perspective", Perspective(0.8, 1.5, 0.01, 100)},
		{"ortho", Ortho(-3, 3, -2, 2, 0.1, 10)},
		{"view", LookAt(Vec3{1, 2, 3}, Vec3{}, Vec3{0, 0, 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if !ok {
				t.Fatal("Inverse reported a singular matrix")
			}
			got := tt.m.Mul(inv)
			id := Identity()
			for i := range 16 {
				if !near(got[i], id[i]) {
					t.Fatalf("M * M^-1 [%d] = %f, want %f", i, got[i], id[i])
				}
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	inv, ok := zero.Inverse()
	if ok {
		t.Error("zero matrix should be singular")
	}
	if inv != Identity() {
		t.Error("singular inverse should fall back to identity")
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	vp := Perspective(0.8, 1, 0.1, 50).Mul(LookAt(Vec3{-3, 0, 0}, Vec3{}, Vec3{0, 0, 1}))
	inv, _ := vp.Inverse()

	p := vp.MulVec4(Vec4{0.2, 0.3, -0.1, 1})
	ndc := Vec3{p[0] / p[3], p[1] / p[3], p[2] / p[3]}
	back := inv.Unproject(ndc)
	if !near(back.X, 0.2) || !near(back.Y, 0.3) || !near(back.Z, -0.1) {
		t.Errorf("Unproject = %v, want (0.2, 0.3, -0.1)", back)
	}
}

func TestVec3(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Errorf("Cross() = %v, want (0, 0, 1)", got)
	}
	if got := (Vec3{3, 4, 0}).Normalize().Length(); !near(got, 1) {
		t.Errorf("Normalize().Length() = %f, want 1", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("zero Normalize() = %v", got)
	}

	v := Vec3{1.5, -2, 0.25}
	if v.R3() != (r3.Vector{X: 1.5, Y: -2, Z: 0.25}) {
		t.Errorf("R3 = %v", v.R3())
	}
}
