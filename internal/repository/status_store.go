package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"stocksync/internal/model"
)

const (
	statusKeyPrefix = "stocksync:last:"
	statusTTL       = 7 * 24 * time.Hour
)

// StatusStore keeps the latest report of every account in Redis.
type StatusStore struct {
	Client *redis.Client
}

func statusKey(marketplace, account string) string {
	return statusKeyPrefix + marketplace + ":" + account
}

func (s *StatusStore) Record(ctx context.Context, rep model.RunReport) error {
	b, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, statusKey(rep.Marketplace, rep.Account), b, statusTTL).Err()
}

// Last returns the latest report, or false when none is stored.
func (s *StatusStore) Last(ctx context.Context, marketplace, account string) (model.RunReport, bool, error) {
	var rep model.RunReport
	val, err := s.Client.Get(ctx, statusKey(marketplace, account)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rep, false, nil
	}
	if err != nil {
		return rep, false, err
	}
	if err := json.Unmarshal(val, &rep); err != nil {
		return rep, false, err
	}
	return rep, true, nil
}
