// Package mock produces simulated telemetry for the local telemetry server.
package mock

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/mission-control/telemetry/internal/telemetry"
)

// FallbackNodeName is reported when neither configuration nor the host
// yields a name.
const FallbackNodeName = "local-dev"

// Pressure below this reports WARNING.
const warningPressure = 14.5

// Generator produces one random snapshot per call. It is safe for
// concurrent use.
type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	nodeName string
	version  string
}

// NewGenerator creates a generator that stamps every snapshot with
// nodeName and version.
func NewGenerator(nodeName, version string, seed int64) *Generator {
	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		nodeName: nodeName,
		version:  version,
	}
}

// Next returns a fresh snapshot: fuel in [71, 100], pressure in
// [14.45, 14.95), trajectory in [0, 360).
func (g *Generator) Next() telemetry.Snapshot {
	g.mu.Lock()
	fuel := 100 - g.rng.Intn(30)
	pressure := 14.7 + g.rng.Float64()*0.5 - 0.25
	trajectory := g.rng.Intn(360)
	g.mu.Unlock()

	return telemetry.Snapshot{
		FuelLevel:     float64(fuel),
		CabinPressure: pressure,
		Trajectory:    float64(trajectory),
		Status:        StatusFor(pressure),
		NodeName:      g.nodeName,
		Version:       g.version,
	}
}

// StatusFor classifies a cabin pressure.
func StatusFor(pressure float64) telemetry.Status {
	if pressure < warningPressure {
		return telemetry.StatusWarning
	}
	return telemetry.StatusNominal
}

// ResolveNodeName returns configured if set, else the host name, else
// FallbackNodeName.
func ResolveNodeName(configured string) string {
	if name := strings.TrimSpace(configured); name != "" {
		return name
	}
	if info, err := host.Info(); err == nil && strings.TrimSpace(info.Hostname) != "" {
		return info.Hostname
	}
	return FallbackNodeName
}
