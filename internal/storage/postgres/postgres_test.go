package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreIntegration(t *testing.T) {
	url := os.Getenv("SPESA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SPESA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	s, err := New(ctx, url)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.pool.Exec(ctx, `DELETE FROM records WHERE key LIKE 'test:%'`)
	require.NoError(t, err)

	_, ok, err := s.Load(ctx, "test:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	before, err := s.Version(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SaveBatch(ctx, map[string][]byte{
		"test:a": []byte(`[1,2]`),
		"test:b": []byte(`{"milk":5}`),
	}))
	require.NoError(t, s.Save(ctx, "test:a", []byte(`[3]`)))

	after, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+3, after)

	v, ok, err := s.Load(ctx, "test:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[3]`, string(v))

	v, _, err = s.Load(ctx, "test:b")
	require.NoError(t, err)
	assert.JSONEq(t, `{"milk":5}`, string(v))
}
