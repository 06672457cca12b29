package cache

import (
	"context"
	"testing"
	"time"

	"blogging/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestNew_NoAddress(t *testing.T) {
	assert.Nil(t, New(context.Background(), Options{}, logger.Discard()))
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb := New(ctx, Options{Addr: "127.0.0.1:1"}, logger.Discard())
	assert.Nil(t, rdb)
}

func TestHealth_Disabled(t *testing.T) {
	assert.Equal(t, "disabled", Health(context.Background(), nil)["status"])
}
