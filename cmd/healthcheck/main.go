package main

import (
	"net/http"
	"os"
	"strings"
	"time"
)

// Exits non-zero unless the server's version endpoint answers 200. MTCG_ADDR overrides the default port.
func main() {
	addr := os.Getenv("MTCG_ADDR")
	if addr == "" {
		addr = ":10001"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/version")
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	os.Exit(0)
}
