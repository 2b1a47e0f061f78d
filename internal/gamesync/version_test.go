package gamesync

import (
	"reflect"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name           string
		client, server int64
		valid, hasGap  bool
		gap            int64
		requiresSync   bool
	}{
		{"in sync", 7, 7, true, false, 0, false},
		{"one behind", 6, 7, true, true, 1, true},
		{"far behind", 3, 7, true, true, 4, true},
		{"fresh client", 0, 5, true, true, 5, true},
		{"client ahead", 9, 7, false, false, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.client, tt.server)
			if got.Valid != tt.valid || got.HasGap != tt.hasGap || got.GapSize != tt.gap || got.RequiresSync != tt.requiresSync {
				t.Fatalf("Check(%d, %d) = %+v", tt.client, tt.server, got)
			}
		})
	}
}

func TestMissingVersions(t *testing.T) {
	if got := MissingVersions(3, 7); !reflect.DeepEqual(got, []int64{4, 5, 6, 7}) {
		t.Fatalf("MissingVersions(3, 7) = %v", got)
	}
	if got := MissingVersions(7, 7); got != nil {
		t.Fatalf("MissingVersions(7, 7) = %v; want nil", got)
	}
	if got := MissingVersions(9, 7); got != nil {
		t.Fatalf("MissingVersions(9, 7) = %v; want nil", got)
	}
}

func TestIsStale(t *testing.T) {
	if IsStale(5, 10, 5) {
		t.Fatal("gap equal to maxGap reported stale")
	}
	if !IsStale(4, 10, 5) {
		t.Fatal("gap past maxGap not reported stale")
	}
	// maxGap <= 0 falls back to the default.
	if IsStale(0, DefaultMaxGap, 0) {
		t.Fatal("default gap boundary reported stale")
	}
	if !IsStale(0, DefaultMaxGap+1, 0) {
		t.Fatal("past default gap not reported stale")
	}
}

func TestShouldRejectUpdate(t *testing.T) {
	if !ShouldRejectUpdate(5, 5) {
		t.Fatal("equal version not rejected")
	}
	if !ShouldRejectUpdate(5, 4) {
		t.Fatal("lower version not rejected")
	}
	if ShouldRejectUpdate(5, 6) {
		t.Fatal("next version rejected")
	}
}
