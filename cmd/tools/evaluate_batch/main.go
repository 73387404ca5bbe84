package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

type startResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
	Poll    string `json:"poll"`
	Error   string `json:"error"`
}

type jobResponse struct {
	ID       string         `json:"id"`
	Status   string         `json:"status"`
	Duration string         `json:"duration"`
	Result   map[string]int `json:"result"`
	Error    string         `json:"error"`
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8081", "API base URL")
	adminSecretFlag := flag.String("admin-secret", "", "Admin secret (or use ADMIN_SECRET env)")
	funnelID := flag.String("funnel", "", "Restrict the batch to one funnel ID")
	batchSize := flag.Int("batch-size", 50, "Max pending submissions per run")
	pollSec := flag.Int("poll-sec", 2, "Seconds between job status polls")
	timeoutSec := flag.Int("timeout-sec", 1800, "Give up waiting after this many seconds")
	dryRun := flag.Bool("dry-run", false, "Print the planned call only; do not execute")
	flag.Parse()

	adminSecret := strings.TrimSpace(*adminSecretFlag)
	if adminSecret == "" {
		adminSecret = strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
	}
	if adminSecret == "" {
		exitErr(errors.New("missing admin secret: use -admin-secret or ADMIN_SECRET env"))
	}
	if *batchSize <= 0 {
		exitErr(errors.New("batch-size must be > 0"))
	}

	reqURL := buildURL(*baseURL, *funnelID, *batchSize)
	if *dryRun {
		fmt.Printf("[DRY-RUN] POST %s\n", reqURL)
		return
	}

	client := &http.Client{Timeout: 60 * time.Second}

	start, err := startBatch(client, reqURL, adminSecret)
	if err != nil {
		exitErr(err)
	}
	fmt.Printf("Started job %s\n", start.JobID)

	job, err := waitForJob(client, *baseURL, adminSecret, start.JobID, *pollSec, *timeoutSec)
	if err != nil {
		exitErr(err)
	}

	renderSummary(job)
	if job.Status != "completed" {
		os.Exit(1)
	}
}

func buildURL(baseURL, funnelID string, batchSize int) string {
	params := url.Values{}
	params.Set("batch_size", strconv.Itoa(batchSize))
	if funnelID != "" {
		params.Set("funnel_id", funnelID)
	}
	return strings.TrimRight(baseURL, "/") + "/api/v1/admin/evaluate-batch?" + params.Encode()
}

func startBatch(client *http.Client, reqURL, adminSecret string) (*startResponse, error) {
	req, err := http.NewRequest(http.MethodPost, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Admin-Secret", adminSecret)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var parsed startResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("batch start failed (%d): %s", resp.StatusCode, parsed.Error)
	}
	return &parsed, nil
}

func waitForJob(client *http.Client, baseURL, adminSecret, jobID string, pollSec, timeoutSec int) (*jobResponse, error) {
	deadline := time.Now().Add(time.Duration(timeoutSec) * time.Second)
	pollURL := strings.TrimRight(baseURL, "/") + "/api/v1/admin/job/" + jobID

	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for job %s", jobID)
		}
		time.Sleep(time.Duration(pollSec) * time.Second)

		req, err := http.NewRequest(http.MethodGet, pollURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Admin-Secret", adminSecret)

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		var job jobResponse
		if err := json.Unmarshal(body, &job); err != nil {
			return nil, fmt.Errorf("unexpected job response: %s", strings.TrimSpace(string(body)))
		}
		if job.Status == "completed" || job.Status == "failed" {
			return &job, nil
		}
		fmt.Printf("Job %s still %s...\n", jobID, job.Status)
	}
}

func renderSummary(job *jobResponse) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Job", "Status", "Pending", "Evaluated", "Failed", "Duration"})
	t.AppendRow(table.Row{
		job.ID, job.Status,
		job.Result["pending"], job.Result["evaluated"], job.Result["failed"],
		job.Duration,
	})
	t.Render()

	if job.Error != "" {
		fmt.Printf("Job error: %s\n", job.Error)
	}
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
