// Package planet holds the φ-planet catalogue and the gravity and tick
// tuning profiles derived from it.
package planet

import "math"

// Phi is the golden ratio, the Ω scaling constant for gravity exponents.
const Phi = 1.618033988749895

// Spec describes one hollow planet: a shell world and a core world, with φ
// exponents governing fall and fly acceleration.
type Spec struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ShellWorld   string  `json:"shell_world"`
	CoreWorld    string  `json:"core_world"`
	PhiPowerFall float64 `json:"phi_power_fall"`
	PhiPowerFly  float64 `json:"phi_power_fly"`
}

// GravityProfile is the evaluated φ^k gravity for a planet.
type GravityProfile struct {
	PlanetID     string  `json:"planet_id"`
	PhiPowerFall float64 `json:"phi_power_fall"`
	PhiPowerFly  float64 `json:"phi_power_fly"`
	GFall        float64 `json:"g_fall"`
	GFly         float64 `json:"g_fly"`
}

// TickTuning maps server φ-ticks into client frames so a game client can
// integrate velocity per rendered frame.
type TickTuning struct {
	PlanetID                   string  `json:"planet_id"`
	ClientFPS                  float64 `json:"client_fps"`
	ServerPhiTickRate          float64 `json:"server_phi_tick_rate"`
	TicksPerFrame              float64 `json:"ticks_per_frame"`
	PhiPowerFall               float64 `json:"phi_power_fall"`
	PhiPowerFly                float64 `json:"phi_power_fly"`
	GFall                      float64 `json:"g_fall"`
	GFly                       float64 `json:"g_fly"`
	EffectiveDeltaFallPerFrame float64 `json:"effective_delta_fall_per_frame"`
	EffectiveDeltaFlyPerFrame  float64 `json:"effective_delta_fly_per_frame"`
}

// Defaults returns the canonical planet list.
func Defaults() []Spec {
	return []Spec{
		{ID: "earth", Name: "Earth", ShellWorld: "earth_shell", CoreWorld: "earth_core", PhiPowerFall: 2.0, PhiPowerFly: 1.0},
		{ID: "moon", Name: "Moon", ShellWorld: "moon_shell", CoreWorld: "moon_core", PhiPowerFall: 1.0, PhiPowerFly: 0.5},
		{ID: "mars", Name: "Mars", ShellWorld: "mars_shell", CoreWorld: "mars_core", PhiPowerFall: 1.5, PhiPowerFly: 0.8},
		{ID: "sun", Name: "Sun", ShellWorld: "sun_shell", CoreWorld: "sun_core", PhiPowerFall: 3.0, PhiPowerFly: 2.0},
	}
}

// Lookup finds a planet by id.
func Lookup(id string) (Spec, bool) {
	for _, p := range Defaults() {
		if p.ID == id {
			return p, true
		}
	}
	return Spec{}, false
}

// Gravity evaluates the φ^k profile for a planet id.
func Gravity(id string) (GravityProfile, bool) {
	p, ok := Lookup(id)
	if !ok {
		return GravityProfile{}, false
	}
	return GravityProfile{
		PlanetID:     p.ID,
		PhiPowerFall: p.PhiPowerFall,
		PhiPowerFly:  p.PhiPowerFly,
		GFall:        math.Pow(Phi, p.PhiPowerFall),
		GFly:         math.Pow(Phi, p.PhiPowerFly),
	}, true
}

// Tuning computes how server φ-ticks map into client frames for a planet.
// Returns false when the fps is non-positive or the planet is unknown.
func Tuning(phiTickRate, clientFPS float64, planetID string) (TickTuning, bool) {
	if clientFPS <= 0 {
		return TickTuning{}, false
	}
	profile, ok := Gravity(planetID)
	if !ok {
		return TickTuning{}, false
	}

	ticksPerFrame := phiTickRate / clientFPS
	return TickTuning{
		PlanetID:                   profile.PlanetID,
		ClientFPS:                  clientFPS,
		ServerPhiTickRate:          phiTickRate,
		TicksPerFrame:              ticksPerFrame,
		PhiPowerFall:               profile.PhiPowerFall,
		PhiPowerFly:                profile.PhiPowerFly,
		GFall:                      profile.GFall,
		GFly:                       profile.GFly,
		EffectiveDeltaFallPerFrame: profile.GFall * ticksPerFrame,
		EffectiveDeltaFlyPerFrame:  profile.GFly * ticksPerFrame,
	}, true
}
