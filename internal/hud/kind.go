package hud

import (
	"fmt"
	"strings"

	"lapsync/internal/services"
)

// Kind identifies the overlay a box renders.
type Kind string

const (
	KindSpeed          Kind = "speed"
	KindThrottleBrake  Kind = "throttle_brake"
	KindSteering       Kind = "steering"
	KindDelta          Kind = "delta"
	KindLineDelta      Kind = "line_delta"
	KindGearRPM        Kind = "gear_rpm"
	KindUnderOversteer Kind = "under_oversteer"
)

// Kinds lists every kind in display order.
func Kinds() []Kind {
	return []Kind{KindSpeed, KindThrottleBrake, KindSteering, KindDelta, KindLineDelta, KindGearRPM, KindUnderOversteer}
}

// ParseKind accepts the config spelling of a kind ("line-delta" and
// "Line_Delta" both resolve to KindLineDelta).
func ParseKind(value string) (Kind, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_")
	for _, k := range Kinds() {
		if string(k) == normalized {
			return k, nil
		}
	}
	return "", fmt.Errorf("hud: unknown kind %q: %w", value, services.ErrConfiguration)
}

// DefaultTitle returns the title drawn when a box does not set one.
func (k Kind) DefaultTitle() string {
	switch k {
	case KindSpeed:
		return "Speed / Min"
	case KindThrottleBrake:
		return "Throttle / Brake"
	case KindSteering:
		return "Steering"
	case KindDelta:
		return "Delta"
	case KindLineDelta:
		return "Line delta"
	case KindGearRPM:
		return "Gear / RPM"
	case KindUnderOversteer:
		return "Under / Oversteer"
	default:
		return string(k)
	}
}
