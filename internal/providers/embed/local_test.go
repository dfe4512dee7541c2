package embed

import (
	"context"
	"math"
	"testing"
)

func TestLocalDeterministic(t *testing.T) {
	e := NewLocal(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "my cat is called Misha")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := e.Embed(ctx, "my cat is called Misha")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs between runs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestLocalDistinguishesTexts(t *testing.T) {
	e := NewLocal(64)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "first text")
	b, _ := e.Embed(ctx, "second text")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestLocalUnitLength(t *testing.T) {
	e := NewLocal(1024)

	vec, err := e.Embed(context.Background(), "normalize me")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 1024 {
		t.Fatalf("len = %d, want 1024", len(vec))
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-4 {
		t.Errorf("vector norm = %f, want 1", math.Sqrt(norm))
	}
}

func TestLocalDimensions(t *testing.T) {
	e := NewLocal(256)
	if e.Dimensions() != 256 {
		t.Errorf("Dimensions() = %d, want 256", e.Dimensions())
	}
}
