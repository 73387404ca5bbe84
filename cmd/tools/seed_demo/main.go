package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Seeds a demo funnel with a few submissions through the admin API.
func main() {
	baseURL := flag.String("base-url", "http://localhost:8081", "API base URL")
	adminSecretFlag := flag.String("admin-secret", "", "Admin secret (or use ADMIN_SECRET env)")
	flag.Parse()

	adminSecret := strings.TrimSpace(*adminSecretFlag)
	if adminSecret == "" {
		adminSecret = strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
	}
	if adminSecret == "" {
		fmt.Fprintln(os.Stderr, "Error:", errors.New("missing admin secret: use -admin-secret or ADMIN_SECRET env"))
		os.Exit(1)
	}

	reqURL := strings.TrimRight(*baseURL, "/") + "/api/v1/admin/seed"
	req, err := http.NewRequest(http.MethodPost, reqURL, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	req.Header.Set("X-Admin-Secret", adminSecret)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	fmt.Printf("%d %s\n", resp.StatusCode, strings.TrimSpace(string(body)))
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
