package domain

import (
	"testing"
	"time"
)

func TestCategory_Slug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Bottle Drop Point", "bottle_drop_point"},
		{"Trash", "trash"},
		{"Deposit  Return", "deposit_return"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		c := Category{ID: 1, Name: tt.name}
		if got := c.Slug(); got != tt.want {
			t.Errorf("Category(%q).Slug() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDropPoint_IsRemoved(t *testing.T) {
	t.Parallel()

	dp := &DropPoint{Number: 1, CreatedAt: t0}
	if dp.IsRemoved() {
		t.Error("fresh drop point reported as removed")
	}

	removed := t0.Add(time.Hour)
	dp.RemovedAt = &removed
	if !dp.IsRemoved() {
		t.Error("drop point with removal timestamp not reported as removed")
	}
}
