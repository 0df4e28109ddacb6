// Package autoupdate decides when workflows send automated client updates
// and performs one dispatch pass when asked to by an external trigger.
package autoupdate

import (
	"time"

	"kollab-api/internal/models"
)

// CalculateNextSendDate returns from plus one interval of freq: 7 calendar
// days for weekly, 14 for biweekly. Unknown frequencies fall back to weekly.
func CalculateNextSendDate(freq models.AutoUpdateFrequency, from time.Time) time.Time {
	if freq == models.FrequencyBiweekly {
		return from.AddDate(0, 0, 14)
	}
	return from.AddDate(0, 0, 7)
}

// Eligible reports whether w should send an update at now.
func Eligible(w *models.Workflow, now time.Time) bool {
	return w.AutoUpdateEnabled &&
		w.AutoUpdateClientEmail != "" &&
		w.AutoUpdateNextSend != nil &&
		!w.AutoUpdateNextSend.After(now)
}
