// Package httpapi exposes the node's REST surface: the Ω ledger, the
// planet catalogue, land locks, the Minecraft bridge and the sky
// slideshow.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"

	app "github.com/dlog-universe/dlogd/internal/app"
	domainbridge "github.com/dlog-universe/dlogd/internal/app/domain/bridge"
	domainledger "github.com/dlog-universe/dlogd/internal/app/domain/ledger"
	"github.com/dlog-universe/dlogd/internal/app/domain/landlock"
	"github.com/dlog-universe/dlogd/internal/app/domain/planet"
	"github.com/dlog-universe/dlogd/internal/app/ledger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app    *app.Application
	broker *snapshotBroker
}

// NewHandler returns a mux exposing the core REST API. The snapshot
// broker subscribes to the block ticker so websocket clients see every
// fold.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application, broker: newSnapshotBroker()}
	if application.Ticker != nil {
		application.Ticker.AddListener(h.broker.broadcast)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.health)
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/config", h.config)
	mux.HandleFunc("/balance", h.balance)
	mux.HandleFunc("/transfer", h.transfer)
	mux.HandleFunc("/tick", h.tick)
	mux.HandleFunc("/snapshot", h.snapshot)
	mux.HandleFunc("/journal", h.journal)
	mux.HandleFunc("/omega/master_root", h.snapshot)
	mux.HandleFunc("/omega/label_path", h.labelPath)
	mux.HandleFunc("/planets", h.planets)
	mux.HandleFunc("/phi_gravity", h.phiGravity)
	mux.HandleFunc("/locks", h.locks)
	mux.HandleFunc("/locks/", h.lockByID)
	mux.HandleFunc("/mc/register", h.mcRegister)
	mux.HandleFunc("/mc/frame", h.mcFrame)
	mux.HandleFunc("/sky/current", h.skyCurrent)
	mux.HandleFunc("/ws/snapshots", h.wsSnapshots)
	return mux
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) config(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cfg := h.app.Config()
	writeJSON(w, http.StatusOK, cfg.View())
}

func (h *handler) balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := accountFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Bank.BalanceOf(r.Context(), id))
}

// transferResponse reports both post-transfer balances. On failure the
// balances are the unchanged ones, so clients always see current state.
type transferResponse struct {
	OK          bool     `json:"ok"`
	Error       string   `json:"error,omitempty"`
	FromBalance *big.Int `json:"from_balance"`
	ToBalance   *big.Int `json:"to_balance"`
}

func (h *handler) transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		From   domainledger.AccountID `json:"from"`
		To     domainledger.AccountID `json:"to"`
		Amount *big.Int               `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Amount == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("amount is required"))
		return
	}

	fromBal, toBal, err := h.app.Bank.Transfer(r.Context(), payload.From, payload.To, payload.Amount)
	resp := transferResponse{
		OK:          err == nil,
		FromBalance: fromBal,
		ToBalance:   toBal,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	// Rejected transfers are domain outcomes, not protocol failures, so
	// the status stays 200 and the envelope carries the verdict.
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) tick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Bank.Tick(r.Context()))
}

func (h *handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Bank.Snapshot(r.Context()))
}

func (h *handler) journal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	entries, err := h.app.Bank.Journal(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []domainledger.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) labelPath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := accountFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"phone": id.Phone,
		"label": id.Label,
		"path":  ledger.LabelUniversePath(id),
	})
}

func (h *handler) planets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, planet.Defaults())
}

type phiGravityResponse struct {
	OK      bool                   `json:"ok"`
	Error   string                 `json:"error,omitempty"`
	Profile *planet.GravityProfile `json:"profile,omitempty"`
}

func (h *handler) phiGravity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	profile, ok := planet.Gravity(id)
	if !ok {
		writeJSON(w, http.StatusOK, phiGravityResponse{
			Error: fmt.Sprintf("unknown planet id %q", id),
		})
		return
	}
	writeJSON(w, http.StatusOK, phiGravityResponse{OK: true, Profile: &profile})
}

func (h *handler) locks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload landlock.Lock
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := h.app.Locks.Mint(r.Context(), payload)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		locks, err := h.app.Locks.List(r.Context(), r.URL.Query().Get("world"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if locks == nil {
			locks = []landlock.Lock{}
		}
		writeJSON(w, http.StatusOK, locks)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) lockByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Path[len("/locks/"):]
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	lock, err := h.app.Locks.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, lock)
}

func (h *handler) mcRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload domainbridge.RegisterRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	state, err := h.app.Bridge.Register(r.Context(), payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *handler) mcFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	reply := h.app.Bridge.HandleFrame(r.Context(), raw)
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *handler) skyCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.app.Sky.Current(r.Context()))
}

func accountFromQuery(r *http.Request) (domainledger.AccountID, error) {
	q := r.URL.Query()
	id := domainledger.AccountID{Phone: q.Get("phone"), Label: q.Get("label")}
	if id.Phone == "" || id.Label == "" {
		return domainledger.AccountID{}, fmt.Errorf("phone and label query parameters are required")
	}
	return id, nil
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
