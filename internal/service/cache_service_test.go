package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheService_SetGet(t *testing.T) {
	cs := NewCacheService()
	defer cs.Stop()

	cs.Set("key", "value", time.Minute)

	got, ok := cs.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestCacheService_ExpiredEntryNotReturned(t *testing.T) {
	cs := NewCacheService()
	defer cs.Stop()

	cs.Set("key", "value", -time.Second)

	_, ok := cs.Get("key")
	assert.False(t, ok)
}

func TestCacheService_StopIsIdempotent(t *testing.T) {
	cs := NewCacheService()

	cs.Stop()
	// Повторный вызов не должен паниковать на закрытом канале.
	cs.Stop()

	// Кэш остаётся рабочим для чтения и записи после остановки очистки.
	cs.Set("key", "value", time.Minute)
	_, ok := cs.Get("key")
	assert.True(t, ok)
}
