package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client define o contrato de interface para qualquer serviço de cache que os Repositórios possam usar.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr incrementa o contador e define a expiração quando a chave acabou de nascer.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ErrCacheMiss é retornado quando a chave não é encontrada no cache.
var ErrCacheMiss = redis.Nil

// ErrCacheDisabled é retornado pelo NopClient para operações sem equivalente local.
var ErrCacheDisabled = errors.New("cache desativado")

// RedisClient é a implementação concreta da interface Client, usando Redis.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient cria o cliente e faz um PING inicial. timeout vale para
// leitura, escrita e o próprio PING.
// O cliente é devolvido mesmo se o PING falhar; o erro fica para o chamador decidir.
func NewRedisClient(addr string, timeout time.Duration) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c := &RedisClient{rdb: rdb}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return c, err
	}
	return c, nil
}

// Get recupera o valor associado a uma chave.
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set define um valor para uma chave com um tempo de expiração.
func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Delete remove as chaves do cache (DEL ignora chaves inexistentes).
func (c *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Incr implementa uma janela fixa: INCR e, no primeiro hit, EXPIRE.
func (c *RedisClient) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Close encerra as conexões com o Redis.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}

// NopClient é usado quando REDIS_ADDR está vazio: toda leitura é um miss.
type NopClient struct{}

func (NopClient) Get(context.Context, string) (string, error) { return "", ErrCacheMiss }
func (NopClient) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (NopClient) Delete(context.Context, ...string) error { return nil }
func (NopClient) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, ErrCacheDisabled
}

// GetJSON lê e desserializa uma chave. Retorna false em miss, erro de cache ou JSON inválido.
func GetJSON(ctx context.Context, c Client, key string, dst interface{}) bool {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

// SetJSON serializa e grava o valor com TTL.
func SetJSON(ctx context.Context, c Client, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
