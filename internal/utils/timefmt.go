package utils

import (
	"time"
)

// Epoch is the read cursor used when a user has never viewed a node's comments.
var Epoch = time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC)

// IsoFormat renders t in UTC the way the web client expects: microseconds
// only when non-zero, no zone suffix.
func IsoFormat(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/1000 == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}
