package redislock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-clinica/internal/domain"
)

// redisFalso guarda llaves en un mapa; Eval interpreta solo el script de liberación.
type redisFalso struct {
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func nuevoRedisFalso() *redisFalso {
	return &redisFalso{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (r *redisFalso) SetNX(_ context.Context, key string, value interface{}, exp time.Duration) *redis.BoolCmd {
	if r.err != nil {
		return redis.NewBoolResult(false, r.err)
	}
	if _, ok := r.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	r.data[key] = value.(string)
	r.ttl[key] = exp
	return redis.NewBoolResult(true, nil)
}

func (r *redisFalso) Eval(_ context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	if r.err != nil {
		return redis.NewCmdResult(nil, r.err)
	}
	if script != releaseScript {
		return redis.NewCmdResult(nil, errors.New("script inesperado"))
	}
	if r.data[keys[0]] == args[0].(string) {
		delete(r.data, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestLocker_TomaYLibera(t *testing.T) {
	ctx := context.Background()
	rdb := nuevoRedisFalso()
	l := NewLocker(rdb, nil)

	token, ok, err := l.TryLock(ctx, "emision:f-1", 90*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.Equal(t, 90*time.Second, rdb.ttl[keyPrefix+"emision:f-1"])

	_, ok, err = l.TryLock(ctx, "emision:f-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "segundo intento debe encontrar el bloqueo ocupado")

	require.NoError(t, l.Unlock(ctx, "emision:f-1", token))
	_, ok, err = l.TryLock(ctx, "emision:f-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocker_UnlockConTokenAjenoNoBorra(t *testing.T) {
	ctx := context.Background()
	rdb := nuevoRedisFalso()
	l := NewLocker(rdb, nil)

	_, ok, err := l.TryLock(ctx, "emision:f-2", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Unlock(ctx, "emision:f-2", "otro-token"))
	assert.Contains(t, rdb.data, keyPrefix+"emision:f-2")
}

func TestLocker_RedisCaido(t *testing.T) {
	rdb := nuevoRedisFalso()
	rdb.err = errors.New("connection refused")
	l := NewLocker(rdb, nil)

	_, _, err := l.TryLock(context.Background(), "emision:f-3", time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)

	err = l.Unlock(context.Background(), "emision:f-3", "t")
	assert.ErrorIs(t, err, domain.ErrDependencyUnavailable)
}
