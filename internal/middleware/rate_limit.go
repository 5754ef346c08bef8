package middleware

import (
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/redis/go-redis/v9"
)

// RedeemRateLimit caps redemption attempts per client IP per minute, slowing
// down signature guessing. Without Redis it is a no-op.
func RedeemRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
    if maxPerMin <= 0 {
        maxPerMin = 10
    }
    return func(c *fiber.Ctx) error {
        if cache == nil {
            return c.Next()
        }
        window := time.Now().UTC().Format("200601021504")
        key := "rl:redeem:" + c.IP() + ":" + window
        cnt, err := cache.Incr(c.UserContext(), key).Result()
        if err != nil {
            return c.Next() // fail-open on cache errors
        }
        if cnt == 1 {
            cache.Expire(c.UserContext(), key, time.Minute)
        }
        if cnt > int64(maxPerMin) {
            return fiber.NewError(http.StatusTooManyRequests, "too many redemption attempts, try again later")
        }
        return c.Next()
    }
}
