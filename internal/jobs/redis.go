package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultKeyPrefix namespaces job keys.
const DefaultKeyPrefix = "histpath:job:"

// RedisStore keeps jobs as JSON values that expire after a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisOptions configures NewRedisClient.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Address, err)
	}
	return client, nil
}

// NewRedisStore creates a store on client. Jobs expire ttl after their last
// update.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: DefaultKeyPrefix,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, source string) (Job, error) {
	now := time.Now().UTC()
	job := Job{
		ID:        uuid.NewString(),
		State:     StateQueued,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := json.Marshal(job)
	if err != nil {
		return Job{}, err
	}
	if err := s.client.Set(ctx, s.key(job.ID), data, s.ttl).Err(); err != nil {
		return Job{}, fmt.Errorf("storing job %s: %w", job.ID, err)
	}
	return job, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (Job, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrNotFound
	} else if err != nil {
		return Job{}, fmt.Errorf("loading job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("decoding job %s: %w", id, err)
	}
	return job, nil
}

// Update implements Store. The TTL restarts on every update.
func (s *RedisStore) Update(ctx context.Context, job Job) error {
	job.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	ok, err := s.client.SetXX(ctx, s.key(job.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("storing job %s: %w", job.ID, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
