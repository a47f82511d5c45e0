// Package bridge holds the Minecraft bridge domain models.
package bridge

import "github.com/dlog-universe/dlogd/internal/app/domain/planet"

// RegisterRequest is sent by a game client when it joins or re-tunes.
type RegisterRequest struct {
	PlayerUUID string  `json:"player_uuid"`
	Nickname   string  `json:"nickname,omitempty"`
	PlanetID   string  `json:"planet_id"`
	World      string  `json:"world"`
	ClientFPS  float64 `json:"client_fps"`
}

// PlayerState is the node's view of one connected game client, keyed by
// player UUID.
type PlayerState struct {
	PlayerUUID string            `json:"player_uuid"`
	Nickname   string            `json:"nickname,omitempty"`
	PlanetID   string            `json:"planet_id"`
	World      string            `json:"world"`
	LastFPS    float64           `json:"last_fps"`
	LastSeenMS int64             `json:"last_seen_ms"`
	LastTuning planet.TickTuning `json:"last_tuning"`
}
