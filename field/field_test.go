package field

import "testing"

func TestNewIsBaseState(t *testing.T) {
	g, err := New(16, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Data) != 16*8*2 {
		t.Fatalf("len = %d, want %d", len(g.Data), 16*8*2)
	}
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if u, v := g.At(x, y); u != 1 || v != 0 {
				t.Fatalf("texel (%d,%d) = (%v,%v), want (1,0)", x, y, u, v)
			}
		}
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(0, 4); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestSeed(t *testing.T) {
	g, _ := New(64, 64)
	g.Seed(400)

	testCases := []struct {
		x, y  int
		wantV float32
	}{
		{32, 32, 1}, // centre
		{51, 32, 1}, // dx=19, 361 < 400
		{52, 32, 0}, // dx=20, 400 is not < 400
		{32, 13, 1}, // dy=-19
		{46, 46, 1}, // 14²+14² = 392
		{47, 47, 0}, // 15²+15² = 450
		{0, 0, 0},   // corner
	}
	for _, tc := range testCases {
		u, v := g.At(tc.x, tc.y)
		if v != tc.wantV {
			t.Errorf("V(%d,%d) = %v, want %v", tc.x, tc.y, v, tc.wantV)
		}
		if u != 1 {
			t.Errorf("U(%d,%d) = %v, want 1", tc.x, tc.y, u)
		}
	}
}

func TestClearRemovesSeed(t *testing.T) {
	g, _ := New(64, 64)
	g.Seed(400)
	g.Clear()
	for i := 0; i < len(g.Data); i += Channels {
		if g.Data[i] != 1 || g.Data[i+1] != 0 {
			t.Fatalf("texel %d = (%v,%v) after Clear", i/Channels, g.Data[i], g.Data[i+1])
		}
	}
}

func TestScatterCountAndRadius(t *testing.T) {
	g, _ := New(128, 96)
	blobs := g.Scatter(NewRand(7), 15, 10, 40)

	if len(blobs) != 15 {
		t.Fatalf("got %d blobs, want 15", len(blobs))
	}
	for i, b := range blobs {
		if b.Radius < 10 || b.Radius >= 40 {
			t.Errorf("blob %d radius %d outside [10,40)", i, b.Radius)
		}
		if b.X < 0 || b.X >= g.W || b.Y < 0 || b.Y >= g.H {
			t.Errorf("blob %d centre (%d,%d) outside grid", i, b.X, b.Y)
		}
		// Centre always lies inside its own disc
		if _, v := g.At(b.X, b.Y); v != 1 {
			t.Errorf("blob %d centre V = %v, want 1", i, v)
		}
	}
}

func TestScatterDeterministic(t *testing.T) {
	a, _ := New(64, 64)
	b, _ := New(64, 64)
	ba := a.Scatter(NewRand(42), 5, 10, 40)
	bb := b.Scatter(NewRand(42), 5, 10, 40)

	for i := range ba {
		if ba[i] != bb[i] {
			t.Errorf("blob %d differs: %+v vs %+v", i, ba[i], bb[i])
		}
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("data differs at %d", i)
		}
	}
}

func TestScatterClipsAtEdges(t *testing.T) {
	g, _ := New(8, 8)
	// Radius far larger than the grid must not index out of range
	g.stampDisc(Blob{X: 0, Y: 7, Radius: 30})
	if _, v := g.At(7, 0); v != 1 {
		t.Errorf("far corner V = %v, want 1", v)
	}
}

func TestScatterZero(t *testing.T) {
	g, _ := New(8, 8)
	g.Seed(400)
	if blobs := g.Scatter(NewRand(1), 0, 10, 40); len(blobs) != 0 {
		t.Errorf("got %d blobs, want 0", len(blobs))
	}
	for i := 1; i < len(g.Data); i += Channels {
		if g.Data[i] != 0 {
			t.Fatal("zero-count scatter should leave the base state")
		}
	}
}
