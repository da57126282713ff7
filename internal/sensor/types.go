// Measurement types and the sensor failure policy
package sensor

import "fmt"

// Measurement is one temperature/humidity reading. It is created fresh
// each tick and consumed immediately; it is never persisted.
type Measurement struct {
	Temperature float64
	Humidity    float64
	Valid       bool
}

// Sentinel reported when the bus transaction fails.
const (
	FailTemperature = -100.0
	FailHumidity    = -100.0
)

// Failed returns the sentinel measurement for a failed bus transaction.
func Failed() Measurement {
	return Measurement{Temperature: FailTemperature, Humidity: FailHumidity}
}

// FailurePolicy decides whether a decoded reading counts as a sensor
// failure. Two variants exist in deployed firmware; the choice is
// explicit configuration, never implied.
type FailurePolicy int

const (
	// FailSentinel treats only the exact bus-failure sentinel as a failure.
	FailSentinel FailurePolicy = iota
	// FailNonPositive treats any non-positive sub-reading as a failure.
	// Kept for parity with the legacy variant; misclassifies legitimate
	// readings at or below zero.
	FailNonPositive
)

// ParseFailurePolicy maps a config string to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "sentinel":
		return FailSentinel, nil
	case "non-positive":
		return FailNonPositive, nil
	}
	return 0, fmt.Errorf("unknown failure policy %q", s)
}

// Failed reports whether m counts as a failed reading under the policy.
func (p FailurePolicy) Failed(m Measurement) bool {
	if p == FailNonPositive {
		return m.Humidity <= 0 || m.Temperature <= 0
	}
	return m.Humidity == FailHumidity || m.Temperature <= FailTemperature
}
