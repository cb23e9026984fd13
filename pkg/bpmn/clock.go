package bpmn

import "time"

// Clock supplies the timestamps stamped onto activity instance rows.
// Injectable so tests can pin StartTime/EndTime.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
