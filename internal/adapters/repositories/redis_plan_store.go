package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"vrp-route-service/internal/domain"
	"vrp-route-service/internal/platform/obs"
	"vrp-route-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisPlanStore keeps each plan under prefix+id with a TTL and indexes ids
// in a sorted set scored by creation time.
type RedisPlanStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisPlanStore connects using a redis:// URL.
func NewRedisPlanStore(url, prefix string, ttl time.Duration) (*RedisPlanStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis plan store: parse url: %w", err)
	}
	return NewRedisPlanStoreFromClient(redis.NewClient(opt), prefix, ttl), nil
}

func NewRedisPlanStoreFromClient(rdb *redis.Client, prefix string, ttl time.Duration) *RedisPlanStore {
	if prefix == "" {
		prefix = "vrp:plan:"
	}
	return &RedisPlanStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisPlanStore) indexKey() string { return s.prefix + "index" }

func (s *RedisPlanStore) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

func (s *RedisPlanStore) Close() error { return s.rdb.Close() }

func (s *RedisPlanStore) SavePlan(ctx context.Context, plan *domain.PlanBundle) (err error) {
	defer obs.Time(ctx, "plans.redis.SavePlan")(&err)

	if plan == nil || plan.ID == "" {
		return errors.New("save plan: plan id must not be empty")
	}
	body, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("save plan: marshal: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.prefix+plan.ID, body, s.ttl)
		p.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(plan.CreatedAt.UnixNano()), Member: plan.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save plan id=%s: %w", plan.ID, err)
	}
	return nil
}

func (s *RedisPlanStore) GetPlan(ctx context.Context, id string) (_ *domain.PlanBundle, err error) {
	defer obs.Time(ctx, "plans.redis.GetPlan")(&err)

	body, err := s.rdb.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan id=%s: %w", id, err)
	}

	var plan domain.PlanBundle
	if err := json.Unmarshal(body, &plan); err != nil {
		return nil, fmt.Errorf("get plan id=%s: decode: %w", id, err)
	}
	return &plan, nil
}

// ListPlans walks the index newest first; ids whose documents expired are
// dropped from the index on the way.
func (s *RedisPlanStore) ListPlans(ctx context.Context, limit int) (_ []*domain.PlanBundle, err error) {
	defer obs.Time(ctx, "plans.redis.ListPlans")(&err)

	if limit <= 0 {
		limit = 20
	}
	ids, err := s.rdb.ZRevRange(ctx, s.indexKey(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	out := make([]*domain.PlanBundle, 0, len(ids))
	for _, id := range ids {
		plan, err := s.GetPlan(ctx, id)
		if errors.Is(err, ports.ErrPlanNotFound) {
			s.rdb.ZRem(ctx, s.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, nil
}
