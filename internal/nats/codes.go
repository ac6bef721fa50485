package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go/jetstream"

	"spokd/internal/core"
)

// Codes implements core.CodeStore on the TTL'd KV bucket. Keys are phone
// numbers, values are confirmation codes.
type Codes struct {
	NATS *NATS
}

func (c *Codes) Put(ctx context.Context, phone, code string) error {
	_, err := c.NATS.KV.Put(ctx, key(phone), []byte(code))
	return err
}

func (c *Codes) Get(ctx context.Context, phone string) (string, error) {
	entry, err := c.NATS.KV.Get(ctx, key(phone))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", core.ErrWrongPhone
		}
		return "", err
	}
	return string(entry.Value()), nil
}

func (c *Codes) Delete(ctx context.Context, phone string) error {
	return c.NATS.KV.Delete(ctx, key(phone))
}

// NATS KV keys cannot contain "+", strip the E.164 prefix.
func key(phone string) string {
	if len(phone) > 0 && phone[0] == '+' {
		return phone[1:]
	}
	return phone
}
