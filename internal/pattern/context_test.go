package pattern

import "testing"

func TestContextKey(t *testing.T) {
	ctx := Context{Location: LocationMethod, Operation: OpErrorHandling, Stability: StabilityStable}
	if got := ctx.Key(); got != "method:error:stable" {
		t.Errorf("Key() = %q, want %q", got, "method:error:stable")
	}
}

func TestContextSpaceSize(t *testing.T) {
	// 3 locations x 4 operations x 4 stabilities.
	want := 48
	if got := len(Locations) * len(Operations) * len(Stabilities); got != want {
		t.Errorf("context space = %d, want %d", got, want)
	}
}

func TestContextComparable(t *testing.T) {
	a := Context{LocationTopLevel, OpMutation, StabilityNew}
	b := Context{LocationTopLevel, OpMutation, StabilityNew}
	if a != b {
		t.Error("identical contexts should compare equal")
	}

	seen := map[Context]bool{a: true}
	if !seen[b] {
		t.Error("context should be usable as a map key")
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Operation
		wantOK bool
	}{
		{"external", "external", OpExternalCall, true},
		{"mutation", "mutation", OpMutation, true},
		{"error", "error", OpErrorHandling, true},
		{"computation", "computation", OpComputation, true},
		{"unknown falls back", "frobnicate", OpComputation, false},
		{"empty falls back", "", OpComputation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseOperation(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseOperation(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
