// Package redisstore keeps verification codes in redis, one hash per phone.
//
// Unlike the memory and postgres stores, records are not kept forever.
// Each hash expires retention after its code does, and one minute after it
// is consumed. An attempt within retention of expiry reports
// errs.ErrExpired; later attempts find no record and report
// errs.ErrNotFound, the same as a phone that never asked for a code.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/models"
)

const keyPrefix = "omnilaze:verification:"

// retention is how long a hash outlives its code so that late attempts
// still report expired instead of not found.
const retention = 10 * time.Minute

// usedRetention is how long a consumed code is kept around.
const usedRetention = time.Minute

// consumeScript returns 0 on success, 1 not found or used, 2 expired,
// 3 mismatch. ARGV: candidate, now (unix ms), used ttl (ms).
var consumeScript = redis.NewScript(`
local v = redis.call('HMGET', KEYS[1], 'code', 'expires_at', 'used')
if not v[1] or v[3] == '1' then
	return 1
end
if tonumber(ARGV[2]) > tonumber(v[2]) then
	return 2
end
if v[1] ~= ARGV[1] then
	return 3
end
redis.call('HSET', KEYS[1], 'used', '1', 'used_at', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 0
`)

type Verifications struct {
	rdb *redis.Client
}

func NewVerifications(rdb *redis.Client) *Verifications {
	return &Verifications{rdb: rdb}
}

func key(phone string) string {
	return keyPrefix + phone
}

func (s *Verifications) Save(ctx context.Context, rec *models.VerificationCode) error {
	rec.EnsureID()
	ttl := time.Until(rec.ExpiresAt) + retention
	if ttl <= 0 {
		ttl = retention
	}

	k := key(rec.Phone)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			"id", rec.ID.String(),
			"code", rec.Code,
			"expires_at", rec.ExpiresAt.UnixMilli(),
			"created_at", rec.CreatedAt.UnixMilli(),
			"used", "0",
		)
		pipe.PExpire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save verification: %w", err)
	}
	return nil
}

func (s *Verifications) Consume(ctx context.Context, phone, candidate string, now time.Time) error {
	res, err := consumeScript.Run(ctx, s.rdb, []string{key(phone)},
		candidate, now.UnixMilli(), usedRetention.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis consume verification: %w", err)
	}

	switch res {
	case 0:
		return nil
	case 1:
		return errs.ErrNotFound
	case 2:
		return errs.ErrExpired
	default:
		return errs.ErrMismatch
	}
}

func (s *Verifications) Find(ctx context.Context, phone string) (*models.VerificationCode, error) {
	fields, err := s.rdb.HGetAll(ctx, key(phone)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis find verification: %w", err)
	}
	if len(fields) == 0 {
		return nil, errs.ErrNotFound
	}

	rec := &models.VerificationCode{
		Phone: phone,
		Code:  fields["code"],
		Used:  fields["used"] == "1",
	}
	if id, err := uuid.Parse(fields["id"]); err == nil {
		rec.ID = id
	}
	rec.ExpiresAt, err = parseMillis(fields["expires_at"])
	if err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseMillis(fields["created_at"]); err != nil {
		return nil, err
	}
	if raw, ok := fields["used_at"]; ok {
		usedAt, err := parseMillis(raw)
		if err != nil {
			return nil, err
		}
		rec.UsedAt = &usedAt
	}
	rec.UpdatedAt = rec.CreatedAt
	return rec, nil
}

func parseMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, errors.Join(errors.New("redis verification: bad timestamp"), err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
