package domain

import (
	"fmt"

	"leverlab/internal/platform/day"
)

// SnapshotKey addresses a cached Insight. A different active lever yields
// a different ranking, so it is part of the key.
func SnapshotKey(userID string, date day.Date, activeLever string) string {
	if activeLever == "" {
		activeLever = "-"
	}
	return fmt.Sprintf("focus/v1/%s/%s/%s", userID, date, activeLever)
}
