package telemetry

// Column names used in telemetry logs.
const (
	ColTime        = "Time_s"
	ColLapDistPct  = "LapDistPct"
	ColSpeed       = "Speed"
	ColThrottle    = "Throttle"
	ColBrake       = "Brake"
	ColSteering    = "SteeringWheelAngle"
	ColGear        = "Gear"
	ColRPM         = "RPM"
	ColYaw         = "Yaw"
	ColYawRate     = "YawRate"
	ColLatAccel    = "LatAccel"
	ColLongAccel   = "LongAccel"
	ColVertAccel   = "VertAccel"
	ColClutch      = "Clutch"
	ColLat         = "Lat"
	ColLon         = "Lon"
	ColABSActive   = "ABSActive"
	ColDRSActive   = "DRSActive"
	ColPosition    = "PositionType"
	ColMinSpeed    = "MinSpeed"
	ColLineOffsetM = "LineOffset"
)

type columnKind int

const (
	kindFloat columnKind = iota
	kindInt
	kindBool
	kindAngle
)

var knownKinds = map[string]columnKind{
	ColGear:      kindInt,
	ColPosition:  kindInt,
	ColABSActive: kindBool,
	ColDRSActive: kindBool,
	ColYaw:       kindAngle,
}

func kindOf(name string) columnKind {
	if k, ok := knownKinds[name]; ok {
		return k
	}
	return kindFloat
}

// discrete reports whether a channel is resampled by nearest neighbour.
func discrete(name string) bool {
	k := kindOf(name)
	return k == kindInt || k == kindBool
}

// angular reports whether a channel holds radians that wrap at +/-pi.
func angular(name string) bool {
	return kindOf(name) == kindAngle
}
