package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mission-control/telemetry/internal/telemetry"
)

// wireSnapshot mirrors telemetry.Snapshot with every field optional so a
// missing key can be told apart from a zero value.
type wireSnapshot struct {
	FuelLevel     *float64 `json:"fuelLevel"`
	CabinPressure *float64 `json:"cabinPressure"`
	Trajectory    *float64 `json:"trajectory"`
	Status        *string  `json:"status"`
	NodeName      *string  `json:"nodeName"`
	Version       *string  `json:"version"`
}

// DecodeSnapshot parses a telemetry response body. The body must be a JSON
// object. Missing fields take their value from telemetry.DefaultSnapshot,
// never from the previously shown snapshot; in strict mode they are
// rejected with ErrDataShape instead.
func DecodeSnapshot(body []byte, strict bool) (telemetry.Snapshot, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return telemetry.Snapshot{}, fmt.Errorf("%w: body is not a JSON object", ErrProtocol)
	}

	var w wireSnapshot
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return telemetry.Snapshot{}, fmt.Errorf("%w: decode body: %v", ErrProtocol, err)
	}

	if strict {
		if missing := w.missing(); len(missing) > 0 {
			return telemetry.Snapshot{}, fmt.Errorf("%w: missing fields %s", ErrDataShape, strings.Join(missing, ", "))
		}
	}

	s := telemetry.DefaultSnapshot()
	if w.FuelLevel != nil {
		s.FuelLevel = *w.FuelLevel
	}
	if w.CabinPressure != nil {
		s.CabinPressure = *w.CabinPressure
	}
	if w.Trajectory != nil {
		s.Trajectory = *w.Trajectory
	}
	if w.Status != nil {
		s.Status = telemetry.Status(*w.Status)
	}
	if w.NodeName != nil {
		s.NodeName = *w.NodeName
	}
	if w.Version != nil {
		s.Version = *w.Version
	}
	return s, nil
}

func (w wireSnapshot) missing() []string {
	var out []string
	if w.FuelLevel == nil {
		out = append(out, "fuelLevel")
	}
	if w.CabinPressure == nil {
		out = append(out, "cabinPressure")
	}
	if w.Trajectory == nil {
		out = append(out, "trajectory")
	}
	if w.Status == nil {
		out = append(out, "status")
	}
	if w.NodeName == nil {
		out = append(out, "nodeName")
	}
	if w.Version == nil {
		out = append(out, "version")
	}
	return out
}
