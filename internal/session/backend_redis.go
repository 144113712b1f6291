package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// changeChannel carries one message per mutated key. Every gateway replica
// subscribed to it observes mutations made by any replica — the distributed
// analogue of a browser's cross-tab storage event.
const changeChannel = "techfix:session:changes"

// RedisBackend stores session keys in Redis and propagates mutations through
// pub/sub. Notifications are delivered via a sharded dispatcher so events for
// the same session arrive in publication order.
type RedisBackend struct {
	client *redis.Client
	log    zerolog.Logger

	mu        sync.Mutex
	listeners map[int]func(key string)
	nextID    int

	cancel context.CancelFunc
	pubsub *redis.PubSub
}

// NewRedisBackend wires the backend and starts the pub/sub consumer. The
// caller owns the client's lifecycle; Close only tears down the subscription.
func NewRedisBackend(client *redis.Client, log zerolog.Logger) *RedisBackend {
	b := &RedisBackend{
		client:    client,
		log:       log,
		listeners: make(map[int]func(key string)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.pubsub = client.Subscribe(ctx, changeChannel)

	dispatcher := newChangeDispatcher(defaultNotifyWorkers, b.notify, log)
	dispatcher.start(ctx)
	go b.consume(ctx, dispatcher)

	return b
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := b.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return err
	}
	b.publish(ctx, key)
	return nil
}

func (b *RedisBackend) Del(ctx context.Context, keys ...string) error {
	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	for _, k := range keys {
		b.publish(ctx, k)
	}
	return nil
}

func (b *RedisBackend) Subscribe(fn func(key string)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

func (b *RedisBackend) Close() error {
	b.cancel()
	return b.pubsub.Close()
}

// publish failures are logged, not surfaced: the write itself succeeded and
// other replicas converge on their next read-through.
func (b *RedisBackend) publish(ctx context.Context, key string) {
	if err := b.client.Publish(ctx, changeChannel, key).Err(); err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("session change publish failed")
	}
}

func (b *RedisBackend) consume(ctx context.Context, dispatcher *changeDispatcher) {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			dispatcher.enqueue(msg.Payload)
		}
	}
}

func (b *RedisBackend) notify(key string) {
	b.mu.Lock()
	fns := make([]func(string), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}
