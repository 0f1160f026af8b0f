package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/ecotrack-backend/internal/logger"
)

// NewRateLimitStore выбирает стор для лимитера: общий redis при заданном
// redisURL, иначе in-memory на одном инстансе.
func NewRateLimitStore(redisURL string) limiter.Store {
	if redisURL == "" {
		return memory.NewStore()
	}

	log := logger.WithComponent("ratelimit")
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.WithError(err).Warn("невалидный REDIS_URL, лимитер работает в памяти")
		return memory.NewStore()
	}

	store, err := sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{
		Prefix: "ecotrack:ratelimit",
	})
	if err != nil {
		log.WithError(err).Warn("redis недоступен, лимитер работает в памяти")
		return memory.NewStore()
	}
	return store
}

// RateLimitMiddleware ограничивает количество запросов. Ключ — пользователь
// из контекста, для анонимных запросов — IP.
func RateLimitMiddleware(store limiter.Store, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	instance := limiter.New(store, limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		key := c.ClientIP()
		if raw, exists := c.Get(ContextUserIDKey); exists {
			if userID, ok := raw.(uuid.UUID); ok && userID != uuid.Nil {
				key = userID.String()
			}
		}

		context, err := instance.Get(c, key)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", context.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", context.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", context.Reset))

		if context.Reached {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "слишком много запросов, попробуйте позже",
			})
			return
		}

		c.Next()
	}
}
