// Loadtest is a concurrent HTTP load testing tool for the redirect service.
// It fires GET requests at a set of request paths, leaves redirects
// unfollowed so 307 responses are what gets measured, and reports status
// code distribution plus latency percentiles.
//
// Usage:
//
//	go run loadtest.go -base http://localhost:3000 -paths i42,i9001,missing -concurrency 10 -requests 1000
//	go run loadtest.go -base http://localhost:3000 -paths i42 -requests 5000 -out summary.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	var (
		base        = flag.String("base", "http://localhost:3000", "Base URL of the redirect service")
		paths       = flag.String("paths", "i42", "Comma-separated request paths to rotate through")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 100, "Total number of requests to send")
		timeoutSec  = flag.Int("timeout", 10, "Per-request timeout in seconds")
		outJSON     = flag.String("out", "", "Write JSON summary to this file (optional)")
		verbose     = flag.Bool("v", false, "Verbose per-request logging to stdout")
	)
	flag.Parse()

	pathList := strings.Split(*paths, ",")

	client := &http.Client{
		Timeout: time.Duration(*timeoutSec) * time.Second,
		// Measure the redirect responses themselves, not the targets.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	var total int32
	var failure int32

	statusCodes := make(map[int]int32)
	var statusMu sync.Mutex

	var allLatencies []time.Duration
	var latMu sync.Mutex

	testStart := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				atomic.AddInt32(&total, 1)
				path := strings.TrimPrefix(pathList[idx%len(pathList)], "/")
				start := time.Now()

				resp, err := client.Get(*base + "/" + path)
				dur := time.Since(start)

				latMu.Lock()
				allLatencies = append(allLatencies, dur)
				latMu.Unlock()

				if err != nil {
					atomic.AddInt32(&failure, 1)
					if *verbose {
						fmt.Printf("[%d] idx=%d path=%s error=%v\n", workerID, idx, path, err)
					}
					continue
				}

				statusMu.Lock()
				statusCodes[resp.StatusCode]++
				statusMu.Unlock()

				if *verbose {
					fmt.Printf("[%d] idx=%d path=%s status=%d location=%s dur=%v\n",
						workerID, idx, path, resp.StatusCode, resp.Header.Get("Location"), dur)
				}

				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}(i)
	}

	go func() {
		for i := 0; i < *requests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	wg.Wait()
	totalDuration := time.Since(testStart)
	throughput := float64(total) / totalDuration.Seconds()

	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Base: %s  Paths: %s\n", *base, *paths)
	fmt.Printf("Requests: %d  Concurrency: %d\n", *requests, *concurrency)
	fmt.Printf("Total sent: %d  Transport failures: %d\n", total, failure)
	fmt.Printf("Duration: %v  Throughput: %.2f req/s\n", totalDuration, throughput)

	fmt.Println("\nStatus codes:")
	var scKeys []int
	for k := range statusCodes {
		scKeys = append(scKeys, k)
	}
	sort.Ints(scKeys)
	for _, k := range scKeys {
		fmt.Printf("  %d -> %d\n", k, statusCodes[k])
	}

	var p50, p90, p95, p99, minLat, maxLat, avg time.Duration
	if len(allLatencies) > 0 {
		tmp := make([]time.Duration, len(allLatencies))
		copy(tmp, allLatencies)
		sort.Slice(tmp, func(i, j int) bool { return tmp[i] < tmp[j] })

		var sum time.Duration
		for _, d := range tmp {
			sum += d
		}
		avg = sum / time.Duration(len(tmp))
		minLat = tmp[0]
		maxLat = tmp[len(tmp)-1]

		pick := func(pct float64) time.Duration {
			idx := int(float64(len(tmp)-1) * pct)
			return tmp[idx]
		}
		p50 = pick(0.50)
		p90 = pick(0.90)
		p95 = pick(0.95)
		p99 = pick(0.99)

		fmt.Println("\nLatencies:")
		fmt.Printf("  samples=%d min=%v avg=%v max=%v p50=%v p90=%v p95=%v p99=%v\n",
			len(tmp), minLat, avg, maxLat, p50, p90, p95, p99)
	}

	if *outJSON != "" {
		report := map[string]interface{}{
			"base":           *base,
			"paths":          pathList,
			"requests":       *requests,
			"concurrency":    *concurrency,
			"total_sent":     total,
			"failures":       failure,
			"duration_ms":    totalDuration.Milliseconds(),
			"throughput_rps": throughput,
			"status_codes":   statusCodes,
			"p50_ms":         float64(p50.Microseconds()) / 1000.0,
			"p90_ms":         float64(p90.Microseconds()) / 1000.0,
			"p95_ms":         float64(p95.Microseconds()) / 1000.0,
			"p99_ms":         float64(p99.Microseconds()) / 1000.0,
		}

		f, err := os.Create(*outJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create json file: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		f.Close()
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	if failure > 0 {
		os.Exit(2)
	}
}
