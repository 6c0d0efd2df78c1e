package eligibility

// HourThresholdPolicy requires a second official driver once a trip's
// duration exceeds the configured threshold for its zone.
type HourThresholdPolicy struct {
	LocalHours  float64
	RemoteHours float64
}

func (p HourThresholdPolicy) RequiresSecondDriver(zone Zone, durationHours float64) bool {
	threshold := p.LocalHours
	if zone == ZoneRemote {
		threshold = p.RemoteHours
	}
	return durationHours > threshold
}
