package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-action-reminder/internal/domain"
)

const (
	actionKeyPrefix = "reminder:action:"
	nextAtKeyPrefix = "reminder:nextat:"
	phaseKeyPrefix  = "reminder:phase:"
)

// actionRecord is the persisted JSON layout. Key names are part of the wire
// contract with older installs and must not change.
type actionRecord struct {
	RequestID       int     `json:"requestId"`
	TriggerAtMillis int64   `json:"triggerAtMillis"`
	SoundName       string  `json:"soundName"`
	Volume01        float64 `json:"volume01"`
	Title           string  `json:"title"`
	ActionText      string  `json:"actionText"`
	Mode            string  `json:"mode"`
	FixedTime       string  `json:"fixedTime"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	IntervalSeconds int     `json:"intervalSeconds"`
	DurationSound   int     `json:"durationSound"`
	IsExecuted      bool    `json:"isExecuted"`
}

func recordFromAction(a *domain.Action) actionRecord {
	return actionRecord{
		RequestID:       a.RequestID,
		TriggerAtMillis: a.TriggerAtMillis,
		SoundName:       a.SoundName,
		Volume01:        domain.ClampVolume(a.Volume01),
		Title:           a.Title,
		ActionText:      a.Text,
		Mode:            a.Mode.String(),
		FixedTime:       a.FixedTime,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		IntervalSeconds: a.IntervalSeconds,
		DurationSound:   a.DurationSound,
		IsExecuted:      a.IsExecuted,
	}
}

func (r actionRecord) toAction() *domain.Action {
	return &domain.Action{
		RequestID:       r.RequestID,
		TriggerAtMillis: r.TriggerAtMillis,
		SoundName:       r.SoundName,
		Volume01:        domain.ClampVolume(r.Volume01),
		Title:           r.Title,
		Text:            r.ActionText,
		Mode:            domain.ParseMode(r.Mode),
		FixedTime:       r.FixedTime,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		IntervalSeconds: r.IntervalSeconds,
		DurationSound:   r.DurationSound,
		IsExecuted:      r.IsExecuted,
	}
}

// actionStore keeps the authoritative state in memory, mirrored to redis on a
// best-effort basis. Persistence failures are logged and swallowed; a cache
// miss re-syncs from redis. With a nil client the store is memory-only, which
// is how the desktop/local mode runs.
type actionStore struct {
	client *redis.Client

	mu      sync.Mutex
	actions map[int]*domain.Action
	nextAt  map[int]int64
	phase   map[int]int64
}

func NewActionStore(client *redis.Client) domain.ActionStore {
	return &actionStore{
		client:  client,
		actions: make(map[int]*domain.Action),
		nextAt:  make(map[int]int64),
		phase:   make(map[int]int64),
	}
}

func (s *actionStore) Put(ctx context.Context, action *domain.Action) error {
	if action == nil || action.RequestID <= 0 {
		return ErrInvalidActionData
	}

	a := action.Clone()
	a.Volume01 = domain.ClampVolume(a.Volume01)
	a.IsExecuted = false

	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions[a.RequestID] = a
	s.persistAction(ctx, a)
	return nil
}

func (s *actionStore) Get(ctx context.Context, requestID int) (*domain.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getLocked(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

func (s *actionStore) GetAll(ctx context.Context) ([]*domain.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncAllLocked(ctx)

	all := make([]*domain.Action, 0, len(s.actions))
	for _, a := range s.actions {
		all = append(all, a.Clone())
	}
	return all, nil
}

func (s *actionStore) SetExecuted(ctx context.Context, requestID int, executed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getLocked(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrActionNotFound) {
			return nil
		}
		return err
	}

	a.IsExecuted = executed
	s.persistAction(ctx, a)
	return nil
}

func (s *actionStore) Remove(ctx context.Context, requestID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.actions, requestID)
	delete(s.nextAt, requestID)
	delete(s.phase, requestID)

	if s.client != nil {
		id := strconv.Itoa(requestID)
		if err := s.client.Del(ctx,
			actionKeyPrefix+id,
			nextAtKeyPrefix+id,
			phaseKeyPrefix+id,
		).Err(); err != nil {
			logPersistFailure("remove", requestID, err)
		}
	}
	return nil
}

func (s *actionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions = make(map[int]*domain.Action)
	s.nextAt = make(map[int]int64)
	s.phase = make(map[int]int64)

	if s.client != nil {
		for _, prefix := range []string{actionKeyPrefix, nextAtKeyPrefix, phaseKeyPrefix} {
			iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
			for iter.Next(ctx) {
				if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
					logPersistFailure("clear", 0, err)
				}
			}
			if err := iter.Err(); err != nil {
				logPersistFailure("clear", 0, err)
			}
		}
	}
	return nil
}

func (s *actionStore) SetPhase(ctx context.Context, requestID int, anchorMillis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase[requestID] = anchorMillis
	s.persistInt64(ctx, phaseKeyPrefix, requestID, anchorMillis)
	return nil
}

func (s *actionStore) Phase(ctx context.Context, requestID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.int64Locked(ctx, s.phase, phaseKeyPrefix, requestID), nil
}

func (s *actionStore) SetNextAt(ctx context.Context, requestID int, atMillis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if atMillis <= 0 {
		delete(s.nextAt, requestID)
		if s.client != nil {
			if err := s.client.Del(ctx, nextAtKeyPrefix+strconv.Itoa(requestID)).Err(); err != nil {
				logPersistFailure("clear next-at", requestID, err)
			}
		}
		return nil
	}

	s.nextAt[requestID] = atMillis
	s.persistInt64(ctx, nextAtKeyPrefix, requestID, atMillis)
	return nil
}

func (s *actionStore) NextAt(ctx context.Context, requestID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.int64Locked(ctx, s.nextAt, nextAtKeyPrefix, requestID), nil
}

// getLocked returns the cached action, falling back to redis on a miss.
// Malformed persisted JSON is treated as absent.
func (s *actionStore) getLocked(ctx context.Context, requestID int) (*domain.Action, error) {
	if a, ok := s.actions[requestID]; ok {
		return a, nil
	}
	if s.client == nil {
		return nil, domain.ErrActionNotFound
	}

	data, err := s.client.Get(ctx, actionKeyPrefix+strconv.Itoa(requestID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logPersistFailure("load", requestID, err)
		}
		return nil, domain.ErrActionNotFound
	}

	var record actionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		slog.Warn("discarding malformed action record",
			slog.Int("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrActionNotFound
	}

	a := record.toAction()
	s.actions[a.RequestID] = a
	return a, nil
}

// syncAllLocked pulls any action ids present in redis but not in the cache.
func (s *actionStore) syncAllLocked(ctx context.Context) {
	if s.client == nil {
		return
	}

	iter := s.client.Scan(ctx, 0, actionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := strconv.Atoi(key[len(actionKeyPrefix):])
		if err != nil {
			continue
		}
		if _, ok := s.actions[id]; ok {
			continue
		}
		// getLocked caches the record as a side effect.
		if _, err := s.getLocked(ctx, id); err != nil && !errors.Is(err, domain.ErrActionNotFound) {
			logPersistFailure("sync", id, err)
		}
	}
	if err := iter.Err(); err != nil {
		logPersistFailure("sync", 0, err)
	}
}

func (s *actionStore) persistAction(ctx context.Context, a *domain.Action) {
	if s.client == nil {
		return
	}

	data, err := json.Marshal(recordFromAction(a))
	if err != nil {
		logPersistFailure("encode", a.RequestID, err)
		return
	}
	if err := s.client.Set(ctx, actionKeyPrefix+strconv.Itoa(a.RequestID), data, 0).Err(); err != nil {
		logPersistFailure("save", a.RequestID, err)
	}
}

func (s *actionStore) persistInt64(ctx context.Context, prefix string, requestID int, v int64) {
	if s.client == nil {
		return
	}
	if err := s.client.Set(ctx, prefix+strconv.Itoa(requestID), v, 0).Err(); err != nil {
		logPersistFailure("save", requestID, err)
	}
}

func (s *actionStore) int64Locked(ctx context.Context, cache map[int]int64, prefix string, requestID int) int64 {
	if v, ok := cache[requestID]; ok {
		return v
	}
	if s.client == nil {
		return 0
	}

	v, err := s.client.Get(ctx, prefix+strconv.Itoa(requestID)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logPersistFailure("load", requestID, err)
		}
		return 0
	}
	cache[requestID] = v
	return v
}

// Persistence failures never propagate: the in-memory view stays
// authoritative and the next restart may simply lose unpersisted updates.
func logPersistFailure(op string, requestID int, err error) {
	slog.Warn("action store persistence failure",
		slog.String("op", op),
		slog.Int("request_id", requestID),
		slog.String("error", err.Error()),
	)
}
