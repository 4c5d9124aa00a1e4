package mpc

import (
	"errors"
	"testing"
)

func TestPackLayout(t *testing.T) {
	c := NewControls(2, 3)
	for i := 0; i < 2; i++ {
		for k := 0; k < 3; k++ {
			c.Pitch[i][k] = float64(100 + 10*i + k)
			c.Torque[i][k] = float64(200 + 10*i + k)
		}
	}

	if c.VectorLen() != 8 {
		t.Fatalf("VectorLen = %d, want 8", c.VectorLen())
	}
	x := make([]float64, 8)
	if err := c.Pack(x); err != nil {
		t.Fatal(err)
	}

	// pitch block first, turbine-major within each step, then torque
	want := []float64{101, 111, 102, 112, 201, 211, 202, 212}
	for i := range want {
		if x[i] != want[i] {
			t.Errorf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

func TestUnpackPreservesInitialColumn(t *testing.T) {
	c := NewControls(2, 3)
	c.Pitch[0][0] = 0.15
	c.Torque[1][0] = 38.4

	x := make([]float64, c.VectorLen())
	for i := range x {
		x[i] = float64(i + 1)
	}
	if err := c.Unpack(x); err != nil {
		t.Fatal(err)
	}

	if c.Pitch[0][0] != 0.15 || c.Torque[1][0] != 38.4 {
		t.Error("Unpack touched the fixed initial column")
	}
	if c.Pitch[0][1] != 1 || c.Pitch[1][1] != 2 || c.Pitch[0][2] != 3 {
		t.Error("Unpack layout does not match Pack")
	}
	if c.Torque[0][1] != 5 || c.Torque[1][2] != 8 {
		t.Error("Unpack torque block does not match Pack")
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	c := NewControls(3, 4)
	x := make([]float64, c.VectorLen())
	for i := range x {
		x[i] = 0.5 * float64(i)
	}
	if err := c.Unpack(x); err != nil {
		t.Fatal(err)
	}
	y := make([]float64, c.VectorLen())
	if err := c.Pack(y); err != nil {
		t.Fatal(err)
	}
	for i := range x {
		if x[i] != y[i] {
			t.Errorf("round trip at %d: %v != %v", i, y[i], x[i])
		}
	}
}

func TestPackGradientLayout(t *testing.T) {
	c := NewControls(1, 3)
	c.GradPitch[0][1] = 1.5
	c.GradPitch[0][2] = 2.5
	c.GradTorque[0][1] = -3
	c.GradTorque[0][2] = -4

	g := make([]float64, c.VectorLen())
	if err := c.PackGradient(g); err != nil {
		t.Fatal(err)
	}
	want := []float64{1.5, 2.5, -3, -4}
	for i := range want {
		if g[i] != want[i] {
			t.Errorf("g[%d] = %v, want %v", i, g[i], want[i])
		}
	}
}

func TestVectorLengthErrors(t *testing.T) {
	c := NewControls(2, 3)
	short := make([]float64, c.VectorLen()-1)

	if err := c.Pack(short); !errors.Is(err, ErrControlVectorLength) {
		t.Errorf("Pack: got %v", err)
	}
	if err := c.Unpack(short); !errors.Is(err, ErrControlVectorLength) {
		t.Errorf("Unpack: got %v", err)
	}
	if err := c.PackGradient(short); !errors.Is(err, ErrControlVectorLength) {
		t.Errorf("PackGradient: got %v", err)
	}
}

func TestControlsClone(t *testing.T) {
	c := NewControls(2, 3)
	c.Pitch[0][1] = 0.2
	d := c.Clone()
	d.Pitch[0][1] = 0.9
	d.GradTorque[1][2] = 5
	if c.Pitch[0][1] != 0.2 || c.GradTorque[1][2] != 0 {
		t.Error("clone shares storage with original")
	}
}
