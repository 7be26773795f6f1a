package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

const (
	upstreamPort = 9091
	appPort      = 8081
)

var groqReply = []byte(`{"id":"bench-123","choices":[{"index":0,"message":{"role":"assistant","content":"Hello"}}]}`)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	provider := flag.String("provider", "groq", "Provider id to target (groq uses a fake upstream, mock stays in-process)")
	upstreamDelay := flag.Duration("upstream-delay", 10*time.Millisecond, "Latency of the fake upstream")
	chaos := flag.Bool("chaos", false, "Simulate random client disconnections")
	flag.Parse()

	go startFakeUpstream(*upstreamDelay)

	fmt.Println("Building application...")
	buildCmd := exec.Command("go", "build", "-o", "bin/llm-relay", "./cmd/server")
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	configFile := "bench_config.yaml"
	if err := os.WriteFile(configFile, []byte(benchConfig), 0o644); err != nil {
		log.Fatalf("Failed to write config: %v", err)
	}
	defer os.Remove(configFile)

	fmt.Println("Starting application...")
	cmd := exec.Command("./bin/llm-relay", "serve")
	cmd.Env = append(os.Environ(),
		"CONFIG_FILE="+configFile,
		fmt.Sprintf("SERVER_PORT=%d", appPort),
		"GROQ_API_KEY=bench-key-12345",
		"NO_COLOR=1",
	)

	logFile, _ := os.Create("bench_server.log")
	defer logFile.Close()
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}
	defer func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}()

	waitForApp(fmt.Sprintf("http://localhost:%d/health", appPort))

	done := make(chan struct{})
	go monitorResources(cmd.Process.Pid, done)

	chatURL := fmt.Sprintf("http://localhost:%d/chat", appPort)
	body := fmt.Sprintf(`{"provider": %q, "messages": [{"role": "user", "content": "Hello"}]}`, *provider)
	fmt.Printf("Running benchmark against %s: %s duration, %d req/s\n", *provider, *duration, *rate)

	targeter := func(t *vegeta.Target) error {
		t.Method = http.MethodPost
		t.URL = chatURL
		t.Body = []byte(body)
		t.Header = http.Header{
			"Content-Type":      []string{"application/json"},
			"X-Benchmark-Start": []string{strconv.FormatInt(time.Now().UnixNano(), 10)},
		}
		return nil
	}

	if *chaos {
		fmt.Println("CHAOS MODE ENABLED: Starting Chaos Monkey sidecar...")
		go startChaosMonkey(chatURL, min(max(*rate/10, 5), 50), done)
	}

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Benchmark") {
		metrics.Add(res)
	}
	metrics.Close()

	close(done)

	fmt.Println("--------------------------------------------------")
	fmt.Println("99th percentile: ", metrics.Latencies.P99)
	fmt.Println("Mean:            ", metrics.Latencies.Mean)
	fmt.Println("Max:             ", metrics.Latencies.Max)
	fmt.Printf("Success:         %.2f%%\n", metrics.Success*100)
	fmt.Printf("Throughput:      %.2f req/s\n", metrics.Throughput)
	fmt.Println("Status codes:    ", metrics.StatusCodes)
	fmt.Println("--------------------------------------------------")

	if len(metrics.Errors) > 0 {
		fmt.Println("Error Set (first 5 unique):")
		seen := make(map[string]bool)
		for _, msg := range metrics.Errors {
			if !seen[msg] && len(seen) < 5 {
				fmt.Println(msg)
				seen[msg] = true
			}
		}
	}

	os.Remove("bench.db")
}

func startChaosMonkey(url string, concurrency int, done chan struct{}) {
	fmt.Printf("Starting Chaos Monkey with %d concurrent disrupters (random disconnects 1-200ms)\n", concurrency)
	var wg sync.WaitGroup
	wg.Add(concurrency)

	payload := `{"provider": "groq", "messages": [{"role": "user", "content": "Chaos Request"}]}`

	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			client := &http.Client{}

			for {
				select {
				case <-done:
					return
				default:
					timeout := time.Duration(rand.Intn(200)+1) * time.Millisecond

					ctx, cancel := context.WithTimeout(context.Background(), timeout)
					req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(payload))
					req.Header.Set("Content-Type", "application/json")

					resp, err := client.Do(req)
					if err == nil {
						resp.Body.Close()
					}
					cancel()

					time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()
}

// startFakeUpstream serves the Groq chat completions route.
func startFakeUpstream(delay time.Duration) {
	mux := http.NewServeMux()

	mux.HandleFunc("/openai/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3-8b-8192","object":"model"}]}`))
	})

	mux.HandleFunc("/openai/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if startStr := r.Header.Get("X-Benchmark-Start"); startStr != "" {
			start, _ := strconv.ParseInt(startStr, 10, 64)
			if rand.Intn(100) == 0 {
				fmt.Printf("DEBUG: Relay Overhead: %v\n", time.Duration(time.Now().UnixNano()-start))
			}
		}
		if r.Header.Get("Authorization") != "Bearer bench-key-12345" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(groqReply)
	})

	_ = http.ListenAndServe(fmt.Sprintf(":%d", upstreamPort), mux)
}

func monitorResources(pid int, done chan struct{}) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	fmt.Println("\n--- Resource Usage (ps) ---")
	fmt.Printf("% -10s % -10s % -10s\n", "Time", "RSS(MB)", "CPU(%)")

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			out, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "rss=,%cpu=").Output()
			if err != nil {
				continue
			}
			fields := strings.Fields(string(out))
			if len(fields) < 2 {
				continue
			}
			rssKB, _ := strconv.ParseFloat(fields[0], 64)
			cpu, _ := strconv.ParseFloat(fields[1], 64)

			fmt.Printf("% -10s % -10.2f % -10.2f\n", time.Now().Format("15:04:05"), rssKB/1024, cpu)
		}
	}
}

func waitForApp(url string) {
	for i := 0; i < 20; i++ {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	log.Fatal("App timed out")
}

var benchConfig = fmt.Sprintf(`
server:
  port: "%d"
  env: development
  upstream_timeout: 5s
  fallback_provider: mock
log:
  level: "error"
database:
  enabled: true
  path: "bench.db"
providers:
  - id: mock
    type: mock
    name: Mock AI (Free)
    enabled: true
  - id: groq
    type: openai
    name: Groq
    base_url: "http://localhost:%d/openai/v1"
    model: llama3-8b-8192
    api_key_env: GROQ_API_KEY
    enabled: true
`, appPort, upstreamPort)
