package db

import (
	"context"
	"fmt"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

func Ready(ctx context.Context, p Pinger) error {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}
