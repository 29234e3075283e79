// Command smoke drives a running gateway through add, search, entity edges
// and delete, exiting non-zero on the first unexpected response.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

var (
	baseURL string
	apiKey  string
	client  = &http.Client{Timeout: 2 * time.Minute}
)

func main() {
	_ = godotenv.Load()

	flag.StringVar(&baseURL, "url", "http://localhost:8001", "gateway base URL")
	flag.StringVar(&apiKey, "api-key", os.Getenv("GRAPHITI_API_KEY"), "value for the X-API-Key header")
	flag.Parse()

	groupID := fmt.Sprintf("smoke-%d", time.Now().Unix())
	fmt.Println("Starting smoke test against", baseURL, "group", groupID)

	fmt.Println("1. Health...")
	mustStatus("GET", "/health", nil, http.StatusOK, nil)

	fmt.Println("2. Adding episode...")
	var added struct {
		EpisodeID string `json:"episode_id"`
	}
	mustStatus("POST", "/episodes", map[string]string{
		"name":               "smoke",
		"episode_body":       "Alice is a software engineer at Acme Corp. Alice lives in San Francisco.",
		"source_description": "smoke test",
		"reference_time":     time.Now().UTC().Format(time.RFC3339),
		"group_id":           groupID,
	}, http.StatusOK, &added)
	fmt.Println("   episode", added.EpisodeID)

	fmt.Println("3. Searching...")
	q := url.Values{"query": {"Alice"}, "group_ids": {groupID}, "num_results": {"5"}}
	mustStatus("GET", "/search?"+q.Encode(), nil, http.StatusOK, nil)

	fmt.Println("4. Entity edges...")
	mustStatus("GET", "/entities/"+url.PathEscape("WORKS")+"/edges?"+url.Values{"group_ids": {groupID}}.Encode(), nil, http.StatusOK, nil)

	fmt.Println("5. Deleting episode twice...")
	mustStatus("DELETE", "/episodes/"+url.PathEscape(added.EpisodeID), nil, http.StatusOK, nil)
	mustStatus("DELETE", "/episodes/"+url.PathEscape(added.EpisodeID), nil, http.StatusNotFound, nil)

	fmt.Println("PASSED")
}

func mustStatus(method, endpoint string, payload interface{}, want int, out interface{}) {
	status, body, err := sendRequest(method, endpoint, payload)
	if err != nil {
		fmt.Printf("FAILED: %s %s: %v\n", method, endpoint, err)
		os.Exit(1)
	}
	if status != want {
		fmt.Printf("FAILED: %s %s returned %d (want %d): %s\n", method, endpoint, status, want, body)
		os.Exit(1)
	}
	fmt.Printf("   %d %s\n", status, body)
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			fmt.Printf("FAILED: decoding %s %s: %v\n", method, endpoint, err)
			os.Exit(1)
		}
	}
}

func sendRequest(method, endpoint string, payload interface{}) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}
