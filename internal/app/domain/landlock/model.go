// Package landlock holds the land-lock domain model.
package landlock

import "math/big"

// Lock is a claim on a square footprint of a world. The tier mirrors the
// in-game material ladder ("iron", "gold", "diamond", "emerald").
type Lock struct {
	ID                   string   `json:"id"`
	OwnerPhone           string   `json:"owner_phone"`
	World                string   `json:"world"` // e.g. "earth_shell", "moon_core"
	Tier                 string   `json:"tier"`
	X                    int64    `json:"x"`
	Z                    int64    `json:"z"`
	Size                 int32    `json:"size"`
	ZillowEstimateAmount *big.Int `json:"zillow_estimate_amount"`
}
