// Package state keeps the bot's durable checkpoint: the last published
// message id per network and the surge-alert ledger. The whole checkpoint
// is stored as one JSON blob so a restart resumes exactly where the
// previous run left off.
package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dexpulse/trendwatch/internal/metrics"
	"github.com/sirupsen/logrus"
)

const stateKey = "bot_state"

// Store is the persistence surface the checkpoint needs
type Store interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
}

type blob struct {
	LastMessageIDs map[string]int64                `json:"last_message_ids"`
	AlertLedger    map[string]map[string]time.Time `json:"alert_ledger"`
}

// State is the in-memory checkpoint backed by a Store. Saves are
// best-effort: a failed write is logged and counted, the in-memory copy
// stays authoritative for the rest of the run.
type State struct {
	store Store
	log   *logrus.Logger
	data  blob
}

// Load reads the checkpoint from the store. A missing or unparseable
// blob yields a fresh empty state rather than an error.
func Load(ctx context.Context, store Store, log *logrus.Logger) (*State, error) {
	s := &State{
		store: store,
		log:   log,
		data: blob{
			LastMessageIDs: make(map[string]int64),
			AlertLedger:    make(map[string]map[string]time.Time),
		},
	}

	raw, err := store.GetState(ctx, stateKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		log.Info("No persisted state found, starting fresh")
		return s, nil
	}

	var data blob
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		log.WithError(err).Warn("Persisted state is unreadable, starting fresh")
		return s, nil
	}
	if data.LastMessageIDs == nil {
		data.LastMessageIDs = make(map[string]int64)
	}
	if data.AlertLedger == nil {
		data.AlertLedger = make(map[string]map[string]time.Time)
	}
	s.data = data

	log.WithField("networks", len(data.LastMessageIDs)).Info("Persisted state loaded")
	return s, nil
}

// LastMessageID returns the last published message id for a network,
// or 0 when none is recorded.
func (s *State) LastMessageID(network string) int64 {
	return s.data.LastMessageIDs[network]
}

// SetLastMessageID records the latest published message id for a network
func (s *State) SetLastMessageID(ctx context.Context, network string, id int64) {
	s.data.LastMessageIDs[network] = id
	s.save(ctx)
}

// LastAlertAt returns when a pool last fired a surge alert. The second
// return reports whether the pool has alerted before.
func (s *State) LastAlertAt(network, poolID string) (time.Time, bool) {
	pools, ok := s.data.AlertLedger[network]
	if !ok {
		return time.Time{}, false
	}
	at, ok := pools[poolID]
	return at, ok
}

// RecordAlert marks a pool as having alerted at the given time
func (s *State) RecordAlert(ctx context.Context, network, poolID string, at time.Time) {
	if s.data.AlertLedger[network] == nil {
		s.data.AlertLedger[network] = make(map[string]time.Time)
	}
	s.data.AlertLedger[network][poolID] = at.UTC()
	s.save(ctx)
}

func (s *State) save(ctx context.Context) {
	raw, err := json.Marshal(s.data)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode state")
		metrics.RecordStateSave(err)
		return
	}
	err = s.store.SetState(ctx, stateKey, string(raw))
	if err != nil {
		s.log.WithError(err).Error("Failed to persist state")
	}
	metrics.RecordStateSave(err)
}
