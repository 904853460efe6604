// Package cosmo converts redshifts to comoving distances under a flat
// ΛCDM fiducial cosmology, and derives the maximum angular separation a
// correlation run needs to search. Distances are in Mpc/h.
package cosmo

import (
	"fmt"
	"math"
)

// speed of light in km/s
const lightSpeed = 299792.458

// Table resolution. The comoving-distance integrand is smooth, so a
// trapezoidal table at this step interpolates linearly to well below the
// bin widths used downstream.
const (
	tableZMax = 10.0
	tableStep = 1e-3
)

// Model is a flat ΛCDM cosmology: ΩΛ = 1 − Ωm, distances expressed in
// Mpc/h (H0 = 100 h km/s/Mpc). The comoving-distance table is built once
// at construction; a Model is immutable and safe for concurrent use.
type Model struct {
	omegaM, omegaL float64
	dist           []float64 // comoving distance at z = i*tableStep
}

// New builds the model for the given matter density.
func New(omegaM float64) (*Model, error) {
	if math.IsNaN(omegaM) || omegaM < 0 || omegaM > 1 {
		return nil, fmt.Errorf("cosmo: omega_m %v outside [0, 1]", omegaM)
	}
	m := &Model{omegaM: omegaM, omegaL: 1 - omegaM}

	n := int(tableZMax/tableStep) + 1
	m.dist = make([]float64, n)
	prev := m.invHubble(0)
	for i := 1; i < n; i++ {
		cur := m.invHubble(float64(i) * tableStep)
		m.dist[i] = m.dist[i-1] + 0.5*(prev+cur)*tableStep
		prev = cur
	}
	return m, nil
}

// HubbleFrac returns E(z) = H(z)/H0 for a flat universe.
func (m *Model) HubbleFrac(z float64) float64 {
	zp := 1 + z
	return math.Sqrt(m.omegaM*zp*zp*zp + m.omegaL)
}

// integrand of the comoving distance, c/(H0·E(z)) in Mpc/h.
func (m *Model) invHubble(z float64) float64 {
	return lightSpeed / 100 / m.HubbleFrac(z)
}

// DistComoving returns the radial comoving distance to redshift z in
// Mpc/h, by linear interpolation of the precomputed table. Redshifts
// beyond the table range are clamped to its last entry; negative
// redshifts to zero.
func (m *Model) DistComoving(z float64) float64 {
	if z <= 0 {
		return 0
	}
	pos := z / tableStep
	i := int(pos)
	if i >= len(m.dist)-1 {
		return m.dist[len(m.dist)-1]
	}
	frac := pos - float64(i)
	return m.dist[i] + frac*(m.dist[i+1]-m.dist[i])
}

// DistM returns the transverse comoving distance. In a flat universe it
// equals the radial comoving distance.
func (m *Model) DistM(z float64) float64 {
	return m.DistComoving(z)
}

// AngMax returns the maximum angular separation (radians) the
// correlation must search so that no pair with transverse separation
// below rtMax is missed. zMin and zMin2 are the minimum redshifts of the
// two catalogs; pass the same value twice for a same-catalog run. When
// the catalogs are so close that the geometry cannot constrain the
// angle, the whole sky (π) is returned.
func (m *Model) AngMax(rtMax, zMin, zMin2 float64) float64 {
	rMin := m.DistM(zMin)
	rMin2 := m.DistM(zMin2)
	if rMin+rMin2 < rtMax {
		return math.Pi
	}
	return 2 * math.Asin(rtMax/(rMin+rMin2))
}
