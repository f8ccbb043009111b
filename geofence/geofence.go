// Package geofence menghitung jarak haversine dan cek radius sekolah.
package geofence

import (
	"errors"
	"math"
)

// EarthRadiusM radius bumi (meter) untuk rumus haversine.
const EarthRadiusM = 6371000.0

var ErrInvalidCoordinate = errors.New("INVALID_COORDINATE")

func validCoord(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Distance mengembalikan jarak great-circle (meter) antara dua titik.
func Distance(lat1, lng1, lat2, lng2 float64) (float64, error) {
	if !validCoord(lat1, lng1) || !validCoord(lat2, lng2) {
		return 0, ErrInvalidCoordinate
	}
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c, nil
}

// Contains true jika jarak titik ke pusat <= radius (batas radius termasuk).
func Contains(lat, lng, centerLat, centerLng, radiusM float64) (bool, error) {
	d, err := Distance(lat, lng, centerLat, centerLng)
	if err != nil {
		return false, err
	}
	return d <= radiusM, nil
}

// Fence adalah titik acuan (sekolah) beserta radiusnya.
type Fence struct {
	Lat     float64
	Lng     float64
	RadiusM float64
}

// Result hasil cek lokasi terhadap Fence.
type Result struct {
	Within         bool    `json:"accepted"`
	Distance       float64 `json:"distance"` // meter, dibulatkan
	RequiredRadius float64 `json:"requiredRadius"`
}

// Check menghitung jarak titik ke pusat fence dan memutuskan containment.
func (f Fence) Check(lat, lng float64) (Result, error) {
	d, err := Distance(lat, lng, f.Lat, f.Lng)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Within:         d <= f.RadiusM,
		Distance:       math.Round(d),
		RequiredRadius: f.RadiusM,
	}, nil
}
