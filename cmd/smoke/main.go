package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/agenthands/kinship/internal/core/model"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of a running kinship server")
	seed := flag.String("seed", "1339", "person to crawl")
	wait := flag.Duration("wait", 2*time.Second, "time to wait for the server to start")
	flag.Parse()

	time.Sleep(*wait)
	fmt.Println("Starting smoke test...")

	client := &http.Client{
		Timeout: 2 * time.Minute,
		// the search redirect is checked, not followed
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"Health check", func() error { return expectStatus(client, *baseURL+"/healthz", http.StatusOK) }},
		{"Graph JSON", func() error { return checkGraph(client, *baseURL+"/json/"+*seed+"?max_nodes=20") }},
		{"Search redirect", func() error { return checkSearch(client, *baseURL, "Q"+*seed, "/family-tree/"+*seed) }},
		{"About page", func() error { return expectStatus(client, *baseURL+"/about", http.StatusOK) }},
	}

	for i, step := range steps {
		fmt.Printf("%d. %s...\n", i+1, step.name)
		if err := step.run(); err != nil {
			fmt.Printf("FAILED: %s: %v\n", step.name, err)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", step.name)
	}
}

func expectStatus(client *http.Client, endpoint string, want int) error {
	resp, err := client.Get(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != want {
		return fmt.Errorf("expected status %d, got %d", want, resp.StatusCode)
	}
	return nil
}

func checkGraph(client *http.Client, endpoint string) error {
	resp, err := client.Get(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var g model.Graph
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return fmt.Errorf("decode graph: %w", err)
	}
	if len(g.Nodes) == 0 {
		return fmt.Errorf("graph has no nodes")
	}
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			return fmt.Errorf("edge %s points outside the node set", e.ID)
		}
	}
	fmt.Printf("   %d nodes, %d edges\n", len(g.Nodes), len(g.Edges))
	return nil
}

func checkSearch(client *http.Client, baseURL, input, wantLocation string) error {
	form := url.Values{"id": {input}}
	resp, err := client.Post(baseURL+"/search", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		return fmt.Errorf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != wantLocation {
		return fmt.Errorf("redirected to %q, want %q", loc, wantLocation)
	}
	return nil
}
