package sensor

import "fmt"

// FailurePayload is published verbatim when the reading is invalid.
const FailurePayload = "failed"

// BuildPayload renders a measurement into the publish payload: a fixed
// failure marker, or temperature and humidity to one decimal place.
func BuildPayload(m Measurement) []byte {
	if !m.Valid {
		return []byte(FailurePayload)
	}
	return fmt.Appendf(nil, "Temp=%.1f°C Hum=%.1f%%", m.Temperature, m.Humidity)
}
