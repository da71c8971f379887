package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"
)

// Cache is a testify mock. A hit is returned by passing the cached value as
// the first return argument; it is copied into value through JSON.
type Cache struct {
	mock.Mock
}

func (m *Cache) Get(ctx context.Context, key string, value any) (bool, error) {
	args := m.Called(ctx, key, value)

	if cached := args.Get(0); cached != nil && args.Bool(1) {
		data, err := json.Marshal(cached)
		if err != nil {
			return false, err
		}
		if err := json.Unmarshal(data, value); err != nil {
			return false, err
		}
	}

	return args.Bool(1), args.Error(2)
}

func (m *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *Cache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *Cache) Close() error {
	return m.Called().Error(0)
}
