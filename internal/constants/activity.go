package constants

// Activity is a kind of external activity a station can be poked with
type Activity string

const (
	// ActivityFeed is a new feed line arriving
	ActivityFeed Activity = "feed"

	// ActivityPage is an archive page being loaded
	ActivityPage Activity = "page"

	// ActivityLog is the active archive entry changing
	ActivityLog Activity = "log"

	// ActivityGlitch is a visual glitch
	ActivityGlitch Activity = "glitch"

	// ActivityWhisper is a whisper-channel glitch
	ActivityWhisper Activity = "whisper"
)

// Valid returns true if the activity is a recognized value.
func (a Activity) Valid() bool {
	switch a {
	case ActivityFeed, ActivityPage, ActivityLog, ActivityGlitch, ActivityWhisper:
		return true
	}
	return false
}

// String returns the string representation of the activity.
func (a Activity) String() string {
	return string(a)
}

// Activities lists every valid activity.
func Activities() []Activity {
	return []Activity{ActivityFeed, ActivityPage, ActivityLog, ActivityGlitch, ActivityWhisper}
}
