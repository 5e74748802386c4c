// Package redislock bloqueo distribuido de emisión sobre Redis (SET NX + liberación
// condicionada al token), para varias réplicas de la API.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/facturacion-clinica/internal/application/billing"
	"github.com/jhoicas/facturacion-clinica/internal/domain"
	"github.com/jhoicas/facturacion-clinica/pkg/logger"
)

const keyPrefix = "facturacion:lock:"

// releaseScript borra la llave solo si el valor sigue siendo el token del dueño.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Client subconjunto de go-redis que usa el bloqueo. *redis.Client lo satisface.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

var _ billing.EmissionLocker = (*Locker)(nil)

// Locker implementa billing.EmissionLocker.
type Locker struct {
	client Client
	log    *logger.Logger
}

// NewLocker construye el bloqueo sobre un cliente ya conectado.
func NewLocker(client Client, log *logger.Logger) *Locker {
	if log == nil {
		log = logger.Nop()
	}
	return &Locker{client: client, log: log}
}

// TryLock intenta tomar key durante ttl.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis: tomar bloqueo %s: %w", key, unavailable(err))
	}
	if !ok {
		l.log.Debug().Str("llave", key).Msg("bloqueo ocupado")
		return "", false, nil
	}
	return token, true, nil
}

// Unlock libera key si token sigue siendo el dueño; si expiró o cambió de dueño no hace nada.
func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	released, err := l.client.Eval(ctx, releaseScript, []string{keyPrefix + key}, token).Int64()
	if err != nil {
		return fmt.Errorf("redis: liberar bloqueo %s: %w", key, unavailable(err))
	}
	if released == 0 {
		l.log.Warn().Str("llave", key).Msg("el bloqueo ya no pertenecía a este proceso")
	}
	return nil
}

// unavailable marca el error como dependencia caída sin perder la causa.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrDependencyUnavailable, err)
}

// Connect abre el cliente y verifica la conexión con PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rdb, nil
}
