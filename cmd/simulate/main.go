// simulate drives the remote scheduling API the way the portal does: bursts
// of directory reads, appointment-table queries with shifting date and
// patient-name filters, and occasional patient-record lookups. Useful for
// load-testing an upstream before pointing the portal at it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/smartclinic/clinic-portal/internal/scheduling"
)

type simConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	Token      string
}

type opMetrics struct {
	total   int64
	success int64
	failure int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (m *opMetrics) record(latency time.Duration, ok bool) {
	atomic.AddInt64(&m.total, 1)
	if ok {
		atomic.AddInt64(&m.success, 1)
	} else {
		atomic.AddInt64(&m.failure, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *opMetrics) stats() (avg, p95 time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0, 0
	}

	latencies := make([]time.Duration, len(m.latencies))
	copy(latencies, m.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))

	idx := len(latencies) * 95 / 100
	if idx >= len(latencies) {
		idx = len(latencies) - 1
	}
	return avg, latencies[idx]
}

func main() {
	cfg := simConfig{}
	flag.StringVar(&cfg.APIBaseURL, "api", envOr("SCHEDULING_API_URL", "http://localhost:9090"), "scheduling API base URL")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "how long to run")
	flag.IntVar(&cfg.Workers, "workers", 4, "concurrent workers")
	flag.StringVar(&cfg.Token, "token", envOr("SIM_TOKEN", ""), "auth token for appointment/patient reads")
	flag.Parse()

	client := scheduling.NewClient(cfg.APIBaseURL, 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	metrics := map[string]*opMetrics{
		"doctors":      {},
		"filter":       {},
		"appointments": {},
		"patient":      {},
	}

	log.Printf("simulating against %s with %d workers for %s", cfg.APIBaseURL, cfg.Workers, cfg.Duration)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			runWorker(ctx, client, cfg.Token, rng, metrics)
		}(int64(i) + time.Now().UnixNano())
	}
	wg.Wait()

	for name, m := range metrics {
		avg, p95 := m.stats()
		fmt.Printf("%-14s total=%d success=%d failure=%d avg=%s p95=%s\n",
			name, atomic.LoadInt64(&m.total), atomic.LoadInt64(&m.success), atomic.LoadInt64(&m.failure), avg, p95)
	}
}

func runWorker(ctx context.Context, client *scheduling.Client, token string, rng *rand.Rand, metrics map[string]*opMetrics) {
	for ctx.Err() == nil {
		switch rng.Intn(4) {
		case 0:
			start := time.Now()
			_, err := client.FetchDoctors(ctx)
			metrics["doctors"].record(time.Since(start), err == nil)
		case 1:
			start := time.Now()
			_, err := client.FilterDoctors(ctx, gofakeit.LastName(), "", gofakeit.RandomString(specialties))
			metrics["filter"].record(time.Since(start), err == nil)
		case 2:
			date := time.Now().AddDate(0, 0, rng.Intn(14)-7)
			name := ""
			if rng.Intn(2) == 0 {
				name = gofakeit.LastName()
			}
			start := time.Now()
			_, err := client.FetchAppointments(ctx, date, name, token)
			metrics["appointments"].record(time.Since(start), err == nil)
		case 3:
			if token == "" {
				continue
			}
			start := time.Now()
			_, err := client.FetchPatientRecord(ctx, token)
			metrics["patient"].record(time.Since(start), err == nil)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(rng.Intn(200)) * time.Millisecond):
		}
	}
}

var specialties = []string{
	"cardiology", "dermatology", "pediatrics", "neurology", "orthopedics", "general",
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
