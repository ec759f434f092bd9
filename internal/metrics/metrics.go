// Package metrics holds the dynamo.Metric implementations for ball tables.
package metrics

import "github.com/san-kum/poolsim/internal/dynamo"

var (
	_ dynamo.Metric = (*Energy)(nil)
	_ dynamo.Metric = (*EnergyDrift)(nil)
	_ dynamo.Metric = (*Containment)(nil)
	_ dynamo.Metric = (*Overlap)(nil)
	_ dynamo.Metric = (*MinSeparation)(nil)
)

// Defaults returns a fresh instance of every metric.
func Defaults() []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewContainment(),
		NewOverlap(),
		NewMinSeparation(),
	}
}
