package cooldown

import (
	"testing"
	"time"

	"github.com/nvandessel/ox500/internal/models"
)

func TestDefaultDurations_CoverEveryKey(t *testing.T) {
	d := DefaultDurations()
	for _, k := range models.AllEffectKeys() {
		if _, ok := d[k]; !ok {
			t.Errorf("no cooldown for %s", k)
		}
	}
}

func TestTracker_ReadyAndMark(t *testing.T) {
	tr := NewTracker(DefaultDurations())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if !tr.Ready(models.EffectLineFlip, now) {
		t.Fatal("unfired key should be ready")
	}
	tr.Mark(models.EffectLineFlip, now)

	tests := []struct {
		name    string
		elapsed time.Duration
		ready   bool
		left    time.Duration
	}{
		{"immediately", 0, false, 2400 * time.Millisecond},
		{"partway", time.Second, false, 1400 * time.Millisecond},
		{"just before", 2399 * time.Millisecond, false, time.Millisecond},
		{"exactly elapsed", 2400 * time.Millisecond, true, 0},
		{"long after", time.Minute, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := now.Add(tt.elapsed)
			if got := tr.Ready(models.EffectLineFlip, at); got != tt.ready {
				t.Errorf("Ready() = %v, want %v", got, tt.ready)
			}
			if got := tr.Remaining(models.EffectLineFlip, at); got != tt.left {
				t.Errorf("Remaining() = %v, want %v", got, tt.left)
			}
		})
	}
}

func TestTracker_KeysIndependent(t *testing.T) {
	tr := NewTracker(DefaultDurations())
	now := time.Now()
	tr.Mark(models.EffectTextCorrupt, now)
	if !tr.Ready(models.EffectDiagCorrupt, now) {
		t.Error("marking one key should not affect another")
	}
}

func TestTracker_Fallback(t *testing.T) {
	tr := NewTracker(nil)
	if got := tr.Duration(models.EffectFeedEcho); got != 1800*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.8s fallback", got)
	}
}
