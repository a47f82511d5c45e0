// Package bridge connects Minecraft game clients to the node: player
// registration with φ-tick tuning, and a small frame router that lets the
// game plugin query balances and move value without speaking the REST API.
package bridge

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/tidwall/gjson"

	domainbridge "github.com/dlog-universe/dlogd/internal/app/domain/bridge"
	domainledger "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
	"github.com/dlog-universe/dlogd/internal/app/domain/planet"
	"github.com/dlog-universe/dlogd/internal/app/services/bank"
	"github.com/dlog-universe/dlogd/internal/app/storage"
	"github.com/dlog-universe/dlogd/pkg/logger"
)

// Service manages registered players and routes bridge frames.
type Service struct {
	players     storage.PlayerStore
	bank        *bank.Service
	phiTickRate float64
	log         *logger.Logger
}

// New constructs the bridge service. phiTickRate comes from node config and
// is fixed for the process lifetime.
func New(players storage.PlayerStore, bankSvc *bank.Service, phiTickRate float64, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("bridge")
	}
	return &Service{
		players:     players,
		bank:        bankSvc,
		phiTickRate: phiTickRate,
		log:         log,
	}
}

// Register creates or updates a player record, computing fresh tick tuning
// from the client's frame rate and planet.
func (s *Service) Register(ctx context.Context, req domainbridge.RegisterRequest) (domainbridge.PlayerState, error) {
	if req.PlayerUUID == "" {
		return domainbridge.PlayerState{}, fmt.Errorf("player_uuid is required")
	}
	if req.ClientFPS <= 0 {
		return domainbridge.PlayerState{}, fmt.Errorf("client_fps must be > 0")
	}

	tuning, ok := planet.Tuning(s.phiTickRate, req.ClientFPS, req.PlanetID)
	if !ok {
		return domainbridge.PlayerState{}, fmt.Errorf("unknown planet id %q", req.PlanetID)
	}

	state := domainbridge.PlayerState{
		PlayerUUID: req.PlayerUUID,
		Nickname:   req.Nickname,
		PlanetID:   req.PlanetID,
		World:      req.World,
		LastFPS:    req.ClientFPS,
		LastSeenMS: time.Now().UnixMilli(),
		LastTuning: tuning,
	}

	state, err := s.players.UpsertPlayer(ctx, state)
	if err != nil {
		return domainbridge.PlayerState{}, err
	}

	s.log.WithField("player", req.PlayerUUID).
		WithField("planet", req.PlanetID).
		WithField("fps", req.ClientFPS).
		Info("player registered")
	return state, nil
}

// Player looks up one registered player.
func (s *Service) Player(ctx context.Context, playerUUID string) (domainbridge.PlayerState, error) {
	return s.players.GetPlayer(ctx, playerUUID)
}

// Players lists every registered player.
func (s *Service) Players(ctx context.Context) ([]domainbridge.PlayerState, error) {
	return s.players.ListPlayers(ctx)
}

// HandleFrame routes one raw bridge frame. The payload is free-form JSON
// from the game plugin; only the fields the frame kind needs are extracted.
// The reply is a human-readable status line, mirroring the plugin protocol.
func (s *Service) HandleFrame(ctx context.Context, raw []byte) string {
	if !gjson.ValidBytes(raw) {
		return "bridge::frame rejected (invalid json)"
	}

	kind := gjson.GetBytes(raw, "kind").String()
	switch kind {
	case "balance_query":
		id := domainledger.AccountID{
			Phone: gjson.GetBytes(raw, "phone").String(),
			Label: gjson.GetBytes(raw, "label").String(),
		}
		view := s.bank.BalanceOf(ctx, id)
		return fmt.Sprintf("bank::balance ;%s;%s; = %s", id.Phone, id.Label, view.Balance)

	case "transfer":
		from := domainledger.AccountID{
			Phone: gjson.GetBytes(raw, "from.phone").String(),
			Label: gjson.GetBytes(raw, "from.label").String(),
		}
		to := domainledger.AccountID{
			Phone: gjson.GetBytes(raw, "to.phone").String(),
			Label: gjson.GetBytes(raw, "to.label").String(),
		}
		amount := new(big.Int)
		if _, ok := amount.SetString(gjson.GetBytes(raw, "amount").Raw, 10); !ok {
			amount.SetInt64(gjson.GetBytes(raw, "amount").Int())
		}

		if _, _, err := s.bank.Transfer(ctx, from, to, amount); err != nil {
			return fmt.Sprintf("bank::transfer rejected (%v)", err)
		}
		return fmt.Sprintf("bank::transfer %s ;%s;%s; -> ;%s;%s; ok", amount, from.Phone, from.Label, to.Phone, to.Label)

	default:
		return fmt.Sprintf("bridge::%s routed", kind)
	}
}
