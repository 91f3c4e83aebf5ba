package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/d60-Lab/gtd-inbox/config"
	"github.com/d60-Lab/gtd-inbox/internal/model"
	"github.com/d60-Lab/gtd-inbox/internal/repository"
	"github.com/d60-Lab/gtd-inbox/internal/service"
	"github.com/d60-Lab/gtd-inbox/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

type phase struct {
	name    string
	total   time.Duration
	failed  int64
	latency []time.Duration
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)
	if err := repository.InitSchema(db); err != nil {
		panic(err)
	}

	repo := repository.NewInboxRepository(db)
	svc := service.NewInboxService(repo)
	ctx := context.Background()
	startRows := must(repo.Count(ctx))

	N := envInt("N", 5000)
	CONC := envInt("CONC", 8)
	if CONC > N {
		CONC = N
	}

	ids := make([]int64, N)

	// 依次压测：创建 -> 修改 -> 读取 -> 删除
	create := run("create", N, CONC, func(i int) bool {
		in, ok := svc.Create(ctx, model.Inbox{Item: fmt.Sprintf("bench task %d", i)}).Get()
		if ok {
			ids[i] = in.ID
		}
		return ok
	})
	update := run("update", N, CONC, func(i int) bool {
		return svc.Update(ctx, model.Inbox{ID: ids[i], Item: fmt.Sprintf("bench task %d (edited)", i)}).IsPresent()
	})
	get := run("get", N, CONC, func(i int) bool {
		return svc.GetByID(ctx, ids[i]).IsPresent()
	})

	q0 := time.Now()
	all, err := svc.GetAll(ctx)
	listDur := time.Since(q0)

	del := run("delete", N, CONC, func(i int) bool {
		return svc.Delete(ctx, ids[i])
	})

	fmt.Printf("driver=%s N=%d CONC=%d\n", cfg.Database.Driver, N, CONC)
	for _, p := range []phase{create, update, get, del} {
		fmt.Printf("%-7s total: %v, per op: %v, failed: %d, p50: %v, p95: %v, p99: %v\n",
			p.name, p.total, p.total/time.Duration(N), p.failed, pct(p.latency, 0.50), pct(p.latency, 0.95), pct(p.latency, 0.99))
	}
	if err != nil {
		fmt.Printf("list failed: %v\n", err)
	} else {
		fmt.Printf("list    rows: %d, latency: %v\n", len(all), listDur)
	}
	// 各阶段全部成功时行数应回到起点
	endRows := must(repo.Count(ctx))
	fmt.Printf("rows    before: %d, after: %d, leaked: %d\n", startRows, endRows, endRows-startRows)
}

func run(name string, n, workers int, op func(i int) bool) phase {
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	recs := make([]time.Duration, 0, n)
	t0 := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, n/workers+1)
			for i := range feed {
				st := time.Now()
				if !op(i) {
					failed.Add(1)
				}
				local = append(local, time.Since(st))
			}
			mu.Lock()
			recs = append(recs, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return phase{name: name, total: time.Since(t0), failed: failed.Load(), latency: recs}
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}
