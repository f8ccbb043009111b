package geofence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// titik acuan: SMP 1 Kudus
const (
	schoolLat = -6.8057694
	schoolLng = 110.8430016
)

func TestDistance(t *testing.T) {
	t.Run("jarak ke diri sendiri nol", func(t *testing.T) {
		d, err := Distance(schoolLat, schoolLng, schoolLat, schoolLng)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, d)
	})

	t.Run("simetris", func(t *testing.T) {
		d1, err := Distance(schoolLat, schoolLng, -6.81, 110.85)
		assert.NoError(t, err)
		d2, err := Distance(-6.81, 110.85, schoolLat, schoolLng)
		assert.NoError(t, err)
		assert.Equal(t, d1, d2)
	})

	t.Run("kira-kira 500m untuk offset 0.0045 derajat lintang", func(t *testing.T) {
		d, err := Distance(schoolLat, schoolLng, schoolLat+0.0045, schoolLng)
		assert.NoError(t, err)
		assert.InDelta(t, 500, d, 5)
	})

	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
	}{
		{"lintang > 90", 91, 0, 0, 0},
		{"lintang < -90", 0, 0, -90.1, 0},
		{"bujur > 180", 0, 181, 0, 0},
		{"bujur < -180", 0, 0, 0, -180.5},
		{"NaN", math.NaN(), 0, 0, 0},
		{"Inf", 0, math.Inf(1), 0, 0},
	}
	for _, tt := range tests {
		t.Run("koordinat tidak valid: "+tt.name, func(t *testing.T) {
			_, err := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.ErrorIs(t, err, ErrInvalidCoordinate)
		})
	}
}

func TestContains(t *testing.T) {
	// titik ±150m ke utara
	lat2 := schoolLat + 0.00135

	ok, err := Contains(lat2, schoolLng, schoolLat, schoolLng, 100)
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = Contains(lat2, schoolLng, schoolLat, schoolLng, 200)
	assert.NoError(t, err)
	assert.True(t, ok)

	t.Run("batas radius termasuk", func(t *testing.T) {
		d, err := Distance(lat2, schoolLng, schoolLat, schoolLng)
		assert.NoError(t, err)
		ok, err := Contains(lat2, schoolLng, schoolLat, schoolLng, d)
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestFenceCheck(t *testing.T) {
	f := Fence{Lat: schoolLat, Lng: schoolLng, RadiusM: 100}

	res, err := f.Check(schoolLat, schoolLng)
	assert.NoError(t, err)
	assert.True(t, res.Within)
	assert.Equal(t, 0.0, res.Distance)
	assert.Equal(t, 100.0, res.RequiredRadius)

	// ±500m ke utara → di luar, jarak dibulatkan ke meter
	res, err = f.Check(schoolLat+0.0045, schoolLng)
	assert.NoError(t, err)
	assert.False(t, res.Within)
	assert.InDelta(t, 500, res.Distance, 5)
	assert.Equal(t, res.Distance, math.Trunc(res.Distance))

	_, err = f.Check(200, 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}
