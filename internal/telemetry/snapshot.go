// Package telemetry holds the status record reported by the mission
// telemetry service and the pure mapping from that record to the
// parameters the rocket view animates. It is a leaf package with no
// internal imports.
package telemetry

// Status is the mission status tag reported by the service.
type Status string

const (
	StatusInit    Status = "INIT"
	StatusNominal Status = "NOMINAL"
	StatusWarning Status = "WARNING"
)

// Snapshot is the most recently confirmed status record. Values are kept
// exactly as the service reported them; nothing is clamped.
type Snapshot struct {
	FuelLevel     float64 `json:"fuelLevel"`
	CabinPressure float64 `json:"cabinPressure"`
	Trajectory    float64 `json:"trajectory"`
	Status        Status  `json:"status"`
	NodeName      string  `json:"nodeName"`
	Version       string  `json:"version"`
}

// DefaultSnapshot is shown until the first successful poll.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		FuelLevel:     0,
		CabinPressure: 0,
		Trajectory:    0,
		Status:        StatusInit,
		NodeName:      "Unknown",
		Version:       "v1.0.0",
	}
}

// IsWarning reports whether the status is the one alerting value.
// Unknown tags are treated like NOMINAL.
func (s Status) IsWarning() bool {
	return s == StatusWarning
}
