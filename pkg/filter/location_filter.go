package filter

import (
	"math"
	"time"

	"github.com/pandu-nav/pandu/pkg"
	"github.com/pandu-nav/pandu/pkg/datastructure"
	"github.com/pandu-nav/pandu/pkg/util"
	"go.uber.org/zap"
)

// filter tuning
const (
	initialPositionVariance = 10.0
	initialVelocityVariance = 5.0
	processNoisePosition    = 0.01
	processNoiseVelocity    = 0.1
	baseMeasurementNoise    = 5.0

	gainMin = 0.1
	gainMax = 0.9

	// per-step velocity change fence. Velocity state lives in degrees/second,
	// so this is a degrees/s step, not an acceleration.
	maxVelocityChange = 10.0

	velocitySmoothingOld = 0.7
	velocitySmoothingNew = 0.3

	outputAccuracyFactor = 0.8
)

// LocationFilter is a per-dimension constant-velocity Kalman-style smoother
// operating on raw lat/lon as if they were Cartesian. State persists across
// fixes for the lifetime of the engine.
type LocationFilter struct {
	log *zap.Logger
	now func() time.Time

	initialized bool

	lat    float64
	lon    float64
	latVel float64 // degrees/second
	lonVel float64

	positionVariance float64
	velocityVariance float64

	lastTimestamp int64 // milliseconds
}

func NewLocationFilter(log *zap.Logger) *LocationFilter {
	return &LocationFilter{
		log:              log,
		now:              time.Now,
		positionVariance: initialPositionVariance,
		velocityVariance: initialVelocityVariance,
	}
}

// SetClock overrides the wall clock, for tests.
func (f *LocationFilter) SetClock(now func() time.Time) {
	f.now = now
}

// LastTimestampMs returns the fix time of the last processed sample.
func (f *LocationFilter) LastTimestampMs() int64 {
	return f.lastTimestamp
}

// Process smooths one raw fix. The first fix passes through untouched; a
// malformed fix (non-finite coordinate) passes through without updating
// state.
func (f *LocationFilter) Process(raw datastructure.Location) datastructure.Location {
	if !util.IsFiniteCoord(raw.Latitude, raw.Longitude) {
		f.log.Warn("malformed fix, passing through",
			zap.Float64("lat", raw.Latitude), zap.Float64("lon", raw.Longitude))
		return raw
	}

	currentTimestamp := f.now().UnixMilli()

	if !f.initialized {
		f.lat = raw.Latitude
		f.lon = raw.Longitude
		f.latVel = 0
		f.lonVel = 0
		f.initialized = true
		f.lastTimestamp = currentTimestamp

		f.log.Info("filter initialized",
			zap.Float64("lat", f.lat), zap.Float64("lon", f.lon))
		return raw
	}

	dt := float64(currentTimestamp-f.lastTimestamp) / 1000.0
	if dt <= 0 || dt > 10.0 {
		f.log.Debug("degenerate time delta, clamping", zap.Float64("dt", dt))
		dt = 0.1
	}
	f.lastTimestamp = currentTimestamp

	// adaptive measurement noise based on reported accuracy
	adaptedNoise := baseMeasurementNoise
	if raw.Accuracy > 0 {
		adaptedNoise = baseMeasurementNoise * (float64(raw.Accuracy) / 10.0)
	}

	// predict
	predictedLat := f.lat + f.latVel*dt
	predictedLon := f.lon + f.lonVel*dt

	predictedPosVar := f.positionVariance + processNoisePosition + f.velocityVariance*dt*dt
	predictedVelVar := f.velocityVariance + processNoiseVelocity

	// update, same gain for both dimensions
	k := util.Clamp(predictedPosVar/(predictedPosVar+adaptedNoise), gainMin, gainMax)

	f.lat = predictedLat + k*(raw.Latitude-predictedLat)
	f.lon = predictedLon + k*(raw.Longitude-predictedLon)

	newLatVel := (raw.Latitude - predictedLat) / dt
	newLonVel := (raw.Longitude - predictedLon) / dt

	newLatVel = clampVelocityStep(f.latVel, newLatVel)
	newLonVel = clampVelocityStep(f.lonVel, newLonVel)

	f.latVel = f.latVel*velocitySmoothingOld + newLatVel*velocitySmoothingNew
	f.lonVel = f.lonVel*velocitySmoothingOld + newLonVel*velocitySmoothingNew

	f.positionVariance = (1 - k) * predictedPosVar
	f.velocityVariance = (1 - k) * predictedVelVar

	// derive bearing/speed from the velocity estimate
	calculatedBearing := raw.Bearing
	calculatedSpeed := raw.Speed

	velocityMagnitude := math.Sqrt(f.latVel*f.latVel + f.lonVel*f.lonVel)
	if velocityMagnitude > 0.00001 {
		bearing := math.Atan2(f.lonVel, f.latVel) * 180.0 / math.Pi
		if bearing < 0 {
			bearing += 360.0
		}
		calculatedBearing = float32(bearing)
		calculatedSpeed = float32(velocityMagnitude * pkg.METERS_PER_DEGREE)
	}

	filtered := datastructure.Location{
		Latitude:  f.lat,
		Longitude: f.lon,
		Bearing:   raw.Bearing,
		Speed:     raw.Speed,
		Accuracy:  raw.Accuracy * outputAccuracyFactor,
	}
	if !raw.HasBearing() {
		filtered.Bearing = calculatedBearing
	}
	if !raw.HasSpeed() {
		filtered.Speed = calculatedSpeed
	}

	return filtered
}

func clampVelocityStep(prev, next float64) float64 {
	if math.Abs(next-prev) > maxVelocityChange {
		return prev + math.Copysign(maxVelocityChange, next-prev)
	}
	return next
}
