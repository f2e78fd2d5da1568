package rdx

import (
	"log"
	"os"
	"time"

	"agromandi/globals"

	"github.com/redis/go-redis/v9"
)

// Conn is nil when REDIS_URL is unset or unreachable; every helper
// degrades to a no-op so the memory-backend deployment runs standalone.
var Conn *redis.Client

func Init() {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		log.Println("REDIS_URL not set; redis features disabled")
		return
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("Invalid REDIS_URL: %v", err)
		return
	}
	client := redis.NewClient(opts)
	if err := client.Ping(globals.Ctx).Err(); err != nil {
		log.Printf("Redis unreachable, continuing without it: %v", err)
		return
	}
	Conn = client
}

func RdxSet(key, value string) error {
	if Conn == nil {
		return nil
	}
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func RdxGet(key string) (string, error) {
	if Conn == nil {
		return "", redis.Nil
	}
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxDel(key string) error {
	if Conn == nil {
		return nil
	}
	return Conn.Del(globals.Ctx, key).Err()
}

func SetWithExpiry(key, value string, ttl time.Duration) error {
	if Conn == nil {
		return nil
	}
	return Conn.Set(globals.Ctx, key, value, ttl).Err()
}

func RdxHset(hash, field, value string) error {
	if Conn == nil {
		return nil
	}
	return Conn.HSet(globals.Ctx, hash, field, value).Err()
}

func RdxHget(hash, field string) (string, error) {
	if Conn == nil {
		return "", redis.Nil
	}
	return Conn.HGet(globals.Ctx, hash, field).Result()
}

func RdxHdel(hash, field string) error {
	if Conn == nil {
		return nil
	}
	return Conn.HDel(globals.Ctx, hash, field).Err()
}
