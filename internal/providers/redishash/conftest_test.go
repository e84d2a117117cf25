package redishash

import "context"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	smembersFn func(ctx context.Context, key string) ([]string, error)
	getFn      func(ctx context.Context, key string) ([]byte, error)
	pingFn     func(ctx context.Context) error
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, ErrKeyNotFound
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

// fixtureStore serves a canned domains set and per-domain payloads.
func fixtureStore(domains []string, payloads map[string]string) *mockStore {
	return &mockStore{
		smembersFn: func(_ context.Context, _ string) ([]string, error) {
			return domains, nil
		},
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if data, ok := payloads[key]; ok {
				return []byte(data), nil
			}
			return nil, ErrKeyNotFound
		},
	}
}
