// Package redis keeps verification sessions in Redis so every instance sees
// the same counters. Each session is a hash; active sessions are indexed in a
// sorted set scored by last activity for the idle sweep.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"docverify/internal/verification/models"
	id "docverify/pkg/domain"
	"docverify/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "docverify:session:"
	activeIndexKey   = "docverify:sessions:active"
	defaultRetention = 7 * 24 * time.Hour
)

var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1],
  'ip_address', ARGV[1], 'user_agent', ARGV[2], 'user_id', ARGV[3],
  'status', ARGV[4], 'current_verifications', ARGV[5],
  'created_at', ARGV[6], 'last_activity', ARGV[7])
redis.call('PEXPIRE', KEYS[1], ARGV[8])
if ARGV[4] == 'active' then
  redis.call('ZADD', KEYS[2], ARGV[7], ARGV[9])
end
return 1
`)

// touchScript stamps activity and optionally bumps the counter.
// Returns the new count, -1 when the session does not exist, or -2 when the
// counter already sits at the positive limit in ARGV[5].
var touchScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
local n
if ARGV[2] == '1' then
  local limit = tonumber(ARGV[5])
  local current = tonumber(redis.call('HGET', KEYS[1], 'current_verifications')) or 0
  if limit > 0 and current >= limit then
    return -2
  end
  n = redis.call('HINCRBY', KEYS[1], 'current_verifications', 1)
else
  n = tonumber(redis.call('HGET', KEYS[1], 'current_verifications'))
end
redis.call('HSET', KEYS[1], 'last_activity', ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
if redis.call('HGET', KEYS[1], 'status') == 'active' then
  redis.call('ZADD', KEYS[2], ARGV[1], ARGV[4])
end
return n
`)

// expireScript flips one indexed session to expired if it is still idle.
var expireScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 or redis.call('HGET', KEYS[1], 'status') ~= 'active' then
  redis.call('ZREM', KEYS[2], ARGV[2])
  return 0
end
local last = tonumber(redis.call('HGET', KEYS[1], 'last_activity')) or 0
if last >= tonumber(ARGV[1]) then
  redis.call('ZADD', KEYS[2], last, ARGV[2])
  return 0
end
redis.call('HSET', KEYS[1], 'status', 'expired')
redis.call('ZREM', KEYS[2], ARGV[2])
return 1
`)

type SessionStore struct {
	client    *redis.Client
	retention time.Duration
}

type Option func(*SessionStore)

// WithRetention sets how long a session hash survives after its last write.
func WithRetention(d time.Duration) Option {
	return func(s *SessionStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

func NewSessionStore(client *redis.Client, opts ...Option) *SessionStore {
	s := &SessionStore{client: client, retention: defaultRetention}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func (s *SessionStore) Create(ctx context.Context, sess *models.VerificationSession) error {
	created, err := createScript.Run(ctx, s.client,
		[]string{sessionKey(sess.SessionID), activeIndexKey},
		sess.IPAddress,
		sess.UserAgent,
		sess.UserID,
		string(sess.Status),
		sess.CurrentVerifications,
		sess.CreatedAt.UnixMilli(),
		sess.LastActivity.UnixMilli(),
		s.retention.Milliseconds(),
		sess.SessionID.String(),
	).Int()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("create session: %w", sentinel.ErrConflict)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID id.SessionID) (*models.VerificationSession, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("get session: %w", sentinel.ErrNotFound)
	}
	sess, err := decodeSession(sessionID, fields)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error {
	_, err := s.touch(ctx, sessionID, at, false, 0)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (s *SessionStore) IncrementVerifications(ctx context.Context, sessionID id.SessionID, limit int, at time.Time) (int, error) {
	n, err := s.touch(ctx, sessionID, at, true, limit)
	if err != nil {
		return 0, fmt.Errorf("increment session verifications: %w", err)
	}
	return n, nil
}

func (s *SessionStore) touch(ctx context.Context, sessionID id.SessionID, at time.Time, increment bool, limit int) (int, error) {
	flag := "0"
	if increment {
		flag = "1"
	}
	n, err := touchScript.Run(ctx, s.client,
		[]string{sessionKey(sessionID), activeIndexKey},
		at.UnixMilli(),
		flag,
		s.retention.Milliseconds(),
		sessionID.String(),
		limit,
	).Int()
	if err != nil {
		return 0, err
	}
	switch n {
	case -1:
		return 0, sentinel.ErrNotFound
	case -2:
		return limit, sentinel.ErrLimitExceeded
	}
	return n, nil
}

// ExpireIdle walks the activity index up to cutoff. Each flip is atomic, so a
// session touched mid-sweep stays active.
func (s *SessionStore) ExpireIdle(ctx context.Context, cutoff time.Time) (int, error) {
	members, err := s.client.ZRangeByScore(ctx, activeIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("expire idle sessions: %w", err)
	}

	expired := 0
	for _, member := range members {
		sessionID, err := id.ParseSessionID(member)
		if err != nil {
			s.client.ZRem(ctx, activeIndexKey, member)
			continue
		}
		n, err := expireScript.Run(ctx, s.client,
			[]string{sessionKey(sessionID), activeIndexKey},
			cutoff.UnixMilli(),
			member,
		).Int()
		if err != nil {
			return expired, fmt.Errorf("expire idle sessions: %w", err)
		}
		expired += n
	}
	return expired, nil
}

func decodeSession(sessionID id.SessionID, fields map[string]string) (*models.VerificationSession, error) {
	count, err := strconv.Atoi(fields["current_verifications"])
	if err != nil {
		return nil, fmt.Errorf("decode current_verifications: %w", err)
	}
	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	last, err := strconv.ParseInt(fields["last_activity"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode last_activity: %w", err)
	}
	return &models.VerificationSession{
		SessionID:            sessionID,
		IPAddress:            fields["ip_address"],
		UserAgent:            fields["user_agent"],
		UserID:               fields["user_id"],
		Status:               models.SessionStatus(fields["status"]),
		CurrentVerifications: count,
		CreatedAt:            time.UnixMilli(created).UTC(),
		LastActivity:         time.UnixMilli(last).UTC(),
	}, nil
}
