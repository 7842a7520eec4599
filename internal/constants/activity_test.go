package constants

import "testing"

func TestActivity_Valid(t *testing.T) {
	tests := []struct {
		activity Activity
		want     bool
	}{
		{ActivityFeed, true},
		{ActivityPage, true},
		{ActivityLog, true},
		{ActivityGlitch, true},
		{ActivityWhisper, true},
		{Activity("boot"), false},
		{Activity(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.activity), func(t *testing.T) {
			if got := tt.activity.Valid(); got != tt.want {
				t.Errorf("Activity(%q).Valid() = %v, want %v", tt.activity, got, tt.want)
			}
		})
	}
}

func TestActivities(t *testing.T) {
	for _, a := range Activities() {
		if !a.Valid() {
			t.Errorf("Activities() contains invalid %q", a)
		}
	}
}
