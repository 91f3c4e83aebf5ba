package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/d60-Lab/gtd-inbox/internal/cache"
	"github.com/d60-Lab/gtd-inbox/internal/model"
	"github.com/d60-Lab/gtd-inbox/internal/repository"
)

const (
	itemCount    = 20000
	requestCount = 9000
	listEvery    = 50 // 每 50 次单条读穿插一次全量列表
	ttl          = 10 * time.Minute
)

type request struct {
	id   int64
	list bool
}

func main() {
	ctx := context.Background()

	// Use PostgreSQL for realistic testing
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=postgres port=5434 sslmode=disable"
	}
	db := must(gorm.Open(postgres.Open(dsn), &gorm.Config{}))

	mustDo(db.Exec("DROP TABLE IF EXISTS inbox CASCADE").Error)
	mustDo(repository.InitSchema(db))

	fmt.Println("Setting up test data...")
	now := time.Now().UTC()
	rows := lo.Times(itemCount, func(i int) model.Inbox {
		created := now.Add(-time.Duration(i) * time.Second)
		return model.Inbox{Item: fmt.Sprintf("captured thought #%d", i), CreateTime: &created}
	})
	mustDo(db.CreateInBatches(&rows, 1000).Error)
	ids := lo.Map(rows, func(r model.Inbox, _ int) int64 { return r.ID })
	fmt.Printf("Test data ready: %d inbox items\n", len(ids))

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6380"
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	store := repository.NewInboxRepository(db)
	cached := cache.NewInboxCache(store, client, ttl)
	reqs := makeRequests(ids, requestCount)

	fmt.Println("No cache:")
	noCache := runScenario(ctx, store, reqs, nil, client)
	fmt.Println("Redis read-through cache:")
	withCache := runScenario(ctx, cached, reqs, cached, client)

	fmt.Printf("\nInbox read latency (%d req over %d items, 1 list per %d gets, PostgreSQL + Redis)\n", len(reqs), itemCount, listEvery)
	for _, r := range []struct {
		name string
		res  scenarioResult
	}{{"No cache", noCache}, {"Read-through", withCache}} {
		fmt.Printf("%-14s avg=%v p95=%v p99=%v hits=%d misses=%d cache_keys=%d mem=%s\n",
			r.name, avg(r.res.durations), pct(r.res.durations, 0.95), pct(r.res.durations, 0.99),
			r.res.counters.Hits, r.res.counters.Misses, r.res.cacheKeys, formatBytes(r.res.memoryBytes))
	}
}

type scenarioResult struct {
	durations   []time.Duration
	counters    cache.Counters
	cacheKeys   int
	memoryBytes int64
}

func runScenario(ctx context.Context, repo repository.InboxRepository, reqs []request, c *cache.InboxCache, client *redis.Client) scenarioResult {
	client.FlushAll(ctx)
	call := func(r request) error {
		if r.list {
			_, err := repo.List(ctx)
			return err
		}
		_, err := repo.GetByID(ctx, r.id)
		return err
	}

	if c != nil {
		fmt.Print("  Warming cache...")
		for _, r := range reqs {
			mustDo(call(r))
		}
		c.ResetCounters()
		fmt.Println(" done")
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		mustDo(call(r))
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	res := scenarioResult{durations: out}
	if c != nil {
		res.counters = c.Counters()
	}
	keys, _ := client.Keys(ctx, "inbox:*").Result()
	res.cacheKeys = len(keys)
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		res.memoryBytes = parseRedisMemory(info)
	}
	return res
}

// makeRequests 热点分布：80% 的读落在 20% 的条目上
func makeRequests(ids []int64, n int) []request {
	rnd := rand.New(rand.NewSource(42))
	hot := ids[:len(ids)/5]
	return lo.Times(n, func(i int) request {
		if i%listEvery == listEvery-1 {
			return request{list: true}
		}
		if rnd.Float64() < 0.8 {
			return request{id: hot[rnd.Intn(len(hot))]}
		}
		return request{id: ids[rnd.Intn(len(ids))]}
	})
}

// parseRedisMemory extracts used_memory from Redis INFO
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			var n int64
			fmt.Sscanf(v, "%d", &n)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	return lo.Sum(vs) / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
