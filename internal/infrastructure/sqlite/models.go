package sqlite

import "time"

// PreferenceModel is one row of the preferences table. UpdatedAt is stored
// as Unix seconds.
type PreferenceModel struct {
	Key       string
	Value     string
	UpdatedAt int64
}

// Updated returns UpdatedAt as a time.
func (m PreferenceModel) Updated() time.Time {
	return time.Unix(m.UpdatedAt, 0)
}
