package udd

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOrder(t *testing.T) {
	order := []Status{NotFound, Outdated, TooRecent, Compatible, Found}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1], order[i])
	}
}

func TestMatchJSON(t *testing.T) {
	data, err := json.Marshal(Match{Status: TooRecent, Version: "2.1.0"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"too-recent","version":"2.1.0"}`, string(data))

	var m Match
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, Match{Status: TooRecent, Version: "2.1.0"}, m)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"maybe"}`), &m))
}

func TestInfoViews(t *testing.T) {
	tests := []struct {
		name       string
		info       Info
		progress   Progress
		inUnstable bool
		inNew      bool
		version    string
	}{
		{"found", Info{Unstable: Match{Found, "1.0.1"}}, Available, true, false, "1.0.1"},
		{"compatible", Info{Unstable: Match{Compatible, "1.0.1"}}, Available, true, false, "1.0.1"},
		{"outdated", Info{Unstable: Match{Outdated, "0.4.5"}}, NeedsUpdate, true, false, "0.4.5"},
		{"newer", Info{Unstable: Match{TooRecent, "2.1.0"}}, NeedsUpdate, true, false, "2.1.0"},
		{"in new", Info{New: Match{Compatible, "1.0.0"}}, AvailableInNew, false, true, "1.0.0"},
		{"outdated in new", Info{New: Match{Outdated, "0.1.0"}}, NeedsUpdate, false, true, "0.1.0"},
		{"missing", Info{}, Missing, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.progress, tt.info.Progress())
			assert.Equal(t, tt.inUnstable, tt.info.InUnstable())
			assert.Equal(t, tt.inNew, tt.info.InNew())
			assert.Equal(t, tt.version, tt.info.Version())
		})
	}

	newer := Info{Unstable: Match{TooRecent, "2.1.0"}}
	assert.True(t, newer.Newer())
	assert.False(t, newer.Outdated())
	assert.False(t, newer.ExactMatch())

	compat := Info{Unstable: Match{Compatible, "1.0.1"}}
	assert.True(t, compat.Compatible())
	assert.False(t, compat.ExactMatch())
}

// expiringCache is an in-memory cache whose entries can be expired on demand.
type expiringCache struct {
	entries map[string][]byte
}

func (c *expiringCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := c.entries[key]
	return data, ok, nil
}

func (c *expiringCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[key] = data
	return nil
}

func (c *expiringCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *expiringCache) Close() error { return nil }

func (c *expiringCache) expireAll() { c.entries = nil }
