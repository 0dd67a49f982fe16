package glitchmon

import "testing"

// Counter overflow is silent wraparound, never saturation.
func TestDetector_countWraparound(t *testing.T) {
	d, err := NewDetector(7)
	if err != nil {
		t.Fatal(err)
	}
	d.count = ^uint32(0)

	// a 2-tick pulse, glitching on the trailing edge
	glitched := false
	for _, lv := range []bool{true, true, false, false, false} {
		if d.Step(lv, true, false) {
			glitched = true
		}
	}
	if !glitched {
		t.Fatal("expected a glitch")
	}
	if d.count != 0 {
		t.Fatalf("count = %d, want wraparound to 0", d.count)
	}
	if d.width != 2 {
		t.Fatalf("width = %d, want 2", d.width)
	}
}
