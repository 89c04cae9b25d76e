package config

import "slices"

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	SnapshotIntervalChanged bool
	NewSnapshotInterval     int

	ClosingPhrasesChanged bool
	NewClosingPhrases     []string
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Agent.SnapshotIntervalSeconds != new.Agent.SnapshotIntervalSeconds {
		d.SnapshotIntervalChanged = true
		d.NewSnapshotInterval = new.Agent.SnapshotIntervalSeconds
	}

	if !slices.Equal(old.Agent.ClosingPhrases, new.Agent.ClosingPhrases) {
		d.ClosingPhrasesChanged = true
		d.NewClosingPhrases = new.Agent.ClosingPhrases
	}

	return d
}
