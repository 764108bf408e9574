package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"boya-backend/internal/config"

	"github.com/go-redis/redis/v8"
)

const (
	DashboardStatsKey = "dashboard:stats"
	LowStockKey       = "report:low-stock"

	TTLShort  = 5 * time.Minute
	TTLMedium = 30 * time.Minute
)

// Client nil ise cache devre dışıdır; tüm yardımcılar bunu sessizce tolere eder.
var Client *redis.Client

func Init(cfg *config.Config) {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR tanımlı değil, dashboard cache devre dışı")
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		// Cache olmadan da çalışabiliriz, sadece uyar
		log.Printf("[WARN] Redis bağlantısı kurulamadı, cache devre dışı: %v", err)
		return
	}
	log.Printf("Redis bağlantısı başarılı: %s", pong)

	Client = rdb
}

// GetJSON - Cache'ten oku ve dest'e çözümle. Bulunamazsa false döner.
func GetJSON(ctx context.Context, key string, dest any) bool {
	if Client == nil {
		return false
	}
	raw, err := Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func SetJSON(ctx context.Context, key string, val any, ttl time.Duration) {
	if Client == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = Client.Set(ctx, key, raw, ttl).Err()
}

// InvalidateDashboard - Satış/üretim/alım/taksit mutasyonlarından sonra çağrılır.
func InvalidateDashboard(ctx context.Context) {
	if Client == nil {
		return
	}
	_ = Client.Del(ctx, DashboardStatsKey, LowStockKey).Err()
}
