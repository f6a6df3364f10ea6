package farcaster

import "time"

// Epoch is the Farcaster protocol reference instant. Hub timestamps count
// seconds from here, not from the Unix epoch.
var Epoch = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// EpochTime converts Farcaster-epoch seconds into a UTC instant.
func EpochTime(seconds int64) time.Time {
	return Epoch.Add(time.Duration(seconds) * time.Second)
}

// EpochSeconds converts an instant into Farcaster-epoch seconds.
func EpochSeconds(t time.Time) int64 {
	return int64(t.UTC().Sub(Epoch) / time.Second)
}
