package sensor

import "testing"

func TestBuildPayload_Formats(t *testing.T) {
	m := Measurement{Temperature: 23.44, Humidity: 42.01, Valid: true}
	got := string(BuildPayload(m))
	if got != "Temp=23.4°C Hum=42.0%" {
		t.Errorf("payload = %q", got)
	}
}

func TestBuildPayload_InvalidIsFixedMarker(t *testing.T) {
	if got := string(BuildPayload(Failed())); got != FailurePayload {
		t.Errorf("payload = %q, want %q", got, FailurePayload)
	}
}

func TestBuildPayload_FromKnownFrame(t *testing.T) {
	m := Decode(knownFrame)
	m.Valid = !FailSentinel.Failed(m)
	got := string(BuildPayload(m))
	// raw_h=436200 -> 41.6%, raw_t=216592 -> -8.7°C under the documented
	// fixed-point conversions.
	if got != "Temp=-8.7°C Hum=41.6%" {
		t.Errorf("payload = %q", got)
	}
}
