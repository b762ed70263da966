package scroll

import "time"

// Stats summarises session behaviour for instrumentation.
type Stats struct {
	Cycles      uint64
	Updates     uint64
	NoOps       uint64
	Failures    uint64
	AvgDetect   time.Duration
	LastCapture time.Time
}
