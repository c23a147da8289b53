package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"event-rsvp/backend/internal/attendance/domain"
)

// ErrRedisUnavailable wraps transport and script failures of the Redis store.
var ErrRedisUnavailable = errors.New("attendance: redis unavailable")

const (
	addStatusNotFound  int64 = 0
	addStatusAdded     int64 = 1
	addStatusMember    int64 = 2
	addStatusFull      int64 = 3
	resizeStatusAbsent int64 = 0
	resizeStatusOK     int64 = 1
	resizeStatusBelow  int64 = 2
	removeStatusAbsent int64 = -1
)

// KEYS[1] meta hash, KEYS[2] attendee zset; ARGV[1] user, ARGV[2] join time (unix micros).
const tryAddScript = `
local cap = redis.call("HGET", KEYS[1], "capacity")
if not cap then
  return {0, 0, 0}
end
cap = tonumber(cap)
local count = redis.call("ZCARD", KEYS[2])
if redis.call("ZSCORE", KEYS[2], ARGV[1]) then
  return {2, count, cap}
end
if count >= cap then
  return {3, count, cap}
end
redis.call("ZADD", KEYS[2], ARGV[2], ARGV[1])
return {1, count + 1, cap}
`

const removeScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
return redis.call("ZREM", KEYS[2], ARGV[1])
`

const resizeScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
if redis.call("ZCARD", KEYS[2]) > tonumber(ARGV[1]) then
  return 2
end
redis.call("HSET", KEYS[1], "capacity", ARGV[1])
return 1
`

var (
	tryAddLua = redis.NewScript(tryAddScript)
	removeLua = redis.NewScript(removeScript)
	resizeLua = redis.NewScript(resizeScript)
)

// RedisStore keeps each event as a meta hash (capacity) and a sorted set of attendees scored by join time.
// Both keys share the {eventID} hash tag so scripts touching them run on one cluster slot; a script
// executes atomically, which makes TryAdd's check-and-insert indivisible per event.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	nowF   func() time.Time
}

// NewRedisStore returns a Redis-backed attendance store. An empty prefix defaults to "rsvp".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rsvp"
	}
	return &RedisStore{redis: client, prefix: prefix, nowF: func() time.Time { return time.Now().UTC() }}
}

func (s *RedisStore) metaKey(eventID string) string {
	return fmt.Sprintf("%s:{%s}:meta", s.prefix, eventID)
}

func (s *RedisStore) attendeesKey(eventID string) string {
	return fmt.Sprintf("%s:{%s}:attendees", s.prefix, eventID)
}

func (s *RedisStore) keys(eventID string) []string {
	return []string{s.metaKey(eventID), s.attendeesKey(eventID)}
}

// TryAdd runs the check-and-insert script.
func (s *RedisStore) TryAdd(ctx context.Context, eventID, userID string) (domain.AddResult, error) {
	result, err := tryAddLua.Run(ctx, s.redis, s.keys(eventID), userID, s.nowF().UnixMicro()).Result()
	if err != nil {
		return domain.AddResult{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	parts, ok := result.([]interface{})
	if !ok || len(parts) != 3 {
		return domain.AddResult{}, fmt.Errorf("%w: invalid add script response", ErrRedisUnavailable)
	}
	var vals [3]int64
	for i, p := range parts {
		v, ok := p.(int64)
		if !ok {
			return domain.AddResult{}, fmt.Errorf("%w: invalid add script response", ErrRedisUnavailable)
		}
		vals[i] = v
	}

	res := domain.AddResult{Snapshot: domain.Snapshot{
		EventID:       eventID,
		AttendeeCount: int(vals[1]),
		Capacity:      int(vals[2]),
	}}
	switch vals[0] {
	case addStatusNotFound:
		return domain.AddResult{Outcome: domain.NotFound}, nil
	case addStatusAdded:
		res.Outcome = domain.Added
	case addStatusMember:
		res.Outcome = domain.AlreadyMember
	case addStatusFull:
		res.Outcome = domain.CapacityExceeded
	default:
		return domain.AddResult{}, fmt.Errorf("%w: unknown add status %d", ErrRedisUnavailable, vals[0])
	}
	return res, nil
}

// Remove drops userID from the attendee set.
func (s *RedisStore) Remove(ctx context.Context, eventID, userID string) (domain.RemoveOutcome, error) {
	n, err := removeLua.Run(ctx, s.redis, s.keys(eventID), userID).Int64()
	if err != nil {
		return domain.NotMember, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	switch n {
	case removeStatusAbsent:
		return domain.NotMember, ErrEventNotFound
	case 0:
		return domain.NotMember, nil
	default:
		return domain.Removed, nil
	}
}

// Get reads capacity and cardinality in one MULTI block.
func (s *RedisStore) Get(ctx context.Context, eventID string) (domain.Snapshot, error) {
	var capCmd *redis.StringCmd
	var cardCmd *redis.IntCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		capCmd = pipe.HGet(ctx, s.metaKey(eventID), "capacity")
		cardCmd = pipe.ZCard(ctx, s.attendeesKey(eventID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	capacity, err := capCmd.Int()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, ErrEventNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return domain.Snapshot{EventID: eventID, Capacity: capacity, AttendeeCount: int(cardCmd.Val())}, nil
}

// IsMember reports whether userID holds a spot.
func (s *RedisStore) IsMember(ctx context.Context, eventID, userID string) (bool, error) {
	var existsCmd *redis.IntCmd
	var scoreCmd *redis.FloatCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		existsCmd = pipe.Exists(ctx, s.metaKey(eventID))
		scoreCmd = pipe.ZScore(ctx, s.attendeesKey(eventID), userID)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if existsCmd.Val() == 0 {
		return false, ErrEventNotFound
	}
	return scoreCmd.Err() == nil, nil
}

// Ensure sets the capacity field only if the record is absent.
func (s *RedisStore) Ensure(ctx context.Context, eventID string, capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	if err := s.redis.HSetNX(ctx, s.metaKey(eventID), "capacity", capacity).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Resize updates capacity atomically against the current cardinality.
func (s *RedisStore) Resize(ctx context.Context, eventID string, capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	n, err := resizeLua.Run(ctx, s.redis, s.keys(eventID), capacity).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	switch n {
	case resizeStatusOK:
		return nil
	case resizeStatusAbsent:
		return ErrEventNotFound
	case resizeStatusBelow:
		return ErrCapacityBelowAttendance
	default:
		return fmt.Errorf("%w: unknown resize status %d", ErrRedisUnavailable, n)
	}
}

// ListAttendees returns attendees ordered by join time.
func (s *RedisStore) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	n, err := s.redis.Exists(ctx, s.metaKey(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if n == 0 {
		return nil, ErrEventNotFound
	}
	zs, err := s.redis.ZRangeWithScores(ctx, s.attendeesKey(eventID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	out := make([]domain.Attendee, 0, len(zs))
	for _, z := range zs {
		id, _ := z.Member.(string)
		out = append(out, domain.Attendee{UserID: id, JoinedAt: time.UnixMicro(int64(z.Score)).UTC()})
	}
	return out, nil
}
