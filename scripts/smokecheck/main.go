// Command smokecheck probes a deployed timetable API instance and verifies
// that each configured endpoint answers with its expected status within the
// latency budget. It exits non-zero when any critical probe fails, so it can
// gate deployments from CI.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type probe struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	ExpectStatus int    `json:"expect_status"`
	AuthRequired bool   `json:"auth_required"`
	Critical     bool   `json:"critical"`
}

type probeFile struct {
	Probes []probe `json:"probes"`
}

type result struct {
	Probe    probe
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	var (
		baseURL    string
		probesPath string
		email      string
		password   string
		timeout    time.Duration
		budget     time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&probesPath, "probes", filepath.Join("scripts", "smokecheck", "probes.json"), "Path to JSON probe file")
	flag.StringVar(&email, "email", os.Getenv("SMOKE_EMAIL"), "Login email for authenticated probes")
	flag.StringVar(&password, "password", os.Getenv("SMOKE_PASSWORD"), "Login password for authenticated probes")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.DurationVar(&budget, "budget", 2*time.Second, "Per-probe latency budget")
	flag.Parse()

	probes, err := loadProbes(probesPath)
	if err != nil {
		log.Fatalf("failed to load probes: %v", err)
	}

	client := &http.Client{Timeout: timeout}

	var token string
	if needsAuth(probes) {
		token, err = login(client, baseURL, email, password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	var results []result
	failed := 0
	for _, p := range probes {
		res := runProbe(client, baseURL, token, p)
		if !passed(res, budget) && p.Critical {
			failed++
		}
		results = append(results, res)
	}

	printReport(results, budget)

	fmt.Printf("Critical failures: %d\n", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f probeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Probes) == 0 {
		return nil, fmt.Errorf("no probes defined in %s", path)
	}
	return f.Probes, nil
}

func needsAuth(probes []probe) bool {
	for _, p := range probes {
		if p.AuthRequired {
			return true
		}
	}
	return false
}

func login(client *http.Client, baseURL, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", fmt.Errorf("authenticated probes configured but no credentials given")
	}
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := client.Post(strings.TrimRight(baseURL, "/")+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned status %d", resp.StatusCode)
	}
	var envelope struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if envelope.Data.Tokens.AccessToken == "" {
		return "", fmt.Errorf("login response had no access token")
	}
	return envelope.Data.Tokens.AccessToken, nil
}

func runProbe(client *http.Client, baseURL, token string, p probe) result {
	res := result{Probe: p}

	method := strings.ToUpper(strings.TrimSpace(p.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := p.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		res.Err = err
		return res
	}
	if p.AuthRequired {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	return res
}

func passed(res result, budget time.Duration) bool {
	if res.Err != nil {
		return false
	}
	expect := res.Probe.ExpectStatus
	if expect == 0 {
		expect = http.StatusOK
	}
	return res.Status == expect && res.Duration <= budget
}

func printReport(results []result, budget time.Duration) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "PASS"
		if !passed(res, budget) {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Probe.Method, res.Probe.Path)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
			continue
		}
		expect := res.Probe.ExpectStatus
		if expect == 0 {
			expect = http.StatusOK
		}
		fmt.Printf("  Status: %d (want %d) | Latency: %s | Critical: %t\n", res.Status, expect, res.Duration, res.Probe.Critical)
	}
}
