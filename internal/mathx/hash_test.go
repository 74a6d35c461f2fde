package mathx

import "testing"

func TestHash3_StableAndSpread(t *testing.T) {
	if Hash3(42, 1, 2, 3) != Hash3(42, 1, 2, 3) {
		t.Fatalf("hash not stable")
	}
	if Hash3(42, 1, 2, 3) == Hash3(42, 1, 2, 4) {
		t.Fatalf("expected different hashes for different inputs")
	}
	if Hash3(42, 1, 2, 3) == Hash3(43, 1, 2, 3) {
		t.Fatalf("expected seed to change hash")
	}
}

func TestSubSeed_DistinctSalts(t *testing.T) {
	a := SubSeed(7, "terrain")
	b := SubSeed(7, "sea")
	if a == b {
		t.Fatalf("salts collided: %d", a)
	}
	if SubSeed(7, "terrain") != a {
		t.Fatalf("sub seed not stable")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 || Clamp(2, 0, 1) != 1 || Clamp(0.5, 0, 1) != 0.5 {
		t.Fatalf("clamp mismatch")
	}
}
