// Command ingest-loadgen is a small client used to exercise a running
// ingest-server: it generates N synthetic records of one kind, gzips them
// as NDJSON, and POSTs them from a configurable number of concurrent
// workers. It plays the role the original Rust project's
// examples/scripts/nvd_ingest.py script plays for that project — a
// standalone client feeding the service — reimplemented as a Go CLI in the
// teacher's flag-based cmd/ style rather than a separate scripting
// language.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		baseURL  string
		token    string
		kind     string
		records  int
		workers  int
		sampleID string
	)

	flag.StringVar(&baseURL, "url", "https://localhost:8443", "base URL of the ingest server")
	flag.StringVar(&token, "token", "", "bearer token")
	flag.StringVar(&kind, "kind", "generic", "record kind: generic, gottcha2, or stast")
	flag.IntVar(&records, "records", 1000, "number of records per worker")
	flag.IntVar(&workers, "workers", 1, "number of concurrent workers")
	flag.StringVar(&sampleID, "sample-id", "loadgen", "sample_id to stamp on generated records")
	flag.Parse()

	if token == "" {
		log.Fatal("-token is required")
	}

	path, ok := pathForKind(kind)
	if !ok {
		log.Fatalf("unknown kind %q", kind)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	var succeeded, failed atomic.Int64
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			body, err := gzipNDJSON(generateLines(kind, sampleID, worker, records))
			if err != nil {
				log.Printf("worker %d: %v", worker, err)
				failed.Add(1)
				return
			}

			req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
			if err != nil {
				log.Printf("worker %d: %v", worker, err)
				failed.Add(1)
				return
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Encoding", "gzip")
			req.Header.Set("Content-Type", "application/gzip")

			resp, err := client.Do(req)
			if err != nil {
				log.Printf("worker %d: %v", worker, err)
				failed.Add(1)
				return
			}
			defer resp.Body.Close()
			respBody, _ := io.ReadAll(resp.Body)

			if resp.StatusCode == http.StatusOK {
				succeeded.Add(1)
			} else {
				failed.Add(1)
				log.Printf("worker %d: status %d: %s", worker, resp.StatusCode, respBody)
			}
		}(w)
	}

	wg.Wait()
	elapsed := time.Since(start)
	fmt.Printf("workers=%d succeeded=%d failed=%d elapsed=%s\n", workers, succeeded.Load(), failed.Load(), elapsed)
}

func pathForKind(kind string) (string, bool) {
	switch kind {
	case "generic":
		return "/ingest", true
	case "gottcha2":
		return "/ingest-gottcha2", true
	case "stast":
		return "/ingest-stast", true
	default:
		return "", false
	}
}

func generateLines(kind, sampleID string, worker, n int) []string {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, generateLine(kind, sampleID, worker, i))
	}
	return lines
}

func generateLine(kind, sampleID string, worker, i int) string {
	switch kind {
	case "gottcha2":
		b, _ := json.Marshal(map[string]any{
			"sample_id":       sampleID,
			"level":           "species",
			"name":            fmt.Sprintf("organism-%d-%d", worker, i),
			"taxid":           fmt.Sprintf("%d", 1000+i),
			"read_count":      100 + i,
			"total_bp_mapped": 5000 + i,
			"covered_sig_len": 200 + i,
			"ani_ci95":        0.95,
			"best_sig_cov":    0.87,
			"depth":           12.3,
			"rel_abundance":   0.01,
		})
		return string(b)
	case "stast":
		b, _ := json.Marshal(map[string]any{
			"task":      "megablast",
			"sample_id": sampleID,
			"qseqid":    fmt.Sprintf("query-%d-%d", worker, i),
			"sseqid":    fmt.Sprintf("subject-%d-%d", worker, i),
			"stitle":    "synthetic alignment",
			"sscinames": "Synthetica generata",
			"staxids":   fmt.Sprintf("%d", 2000+i),
			"rank":      "species",
			"qlen":      150,
			"length":    148,
			"pident":    98.5,
			"evalue":    1e-30,
			"bitscore":  250.0,
		})
		return string(b)
	default:
		b, _ := json.Marshal(map[string]any{
			"run_id":          fmt.Sprintf("run-%d", worker),
			"task_id":         fmt.Sprintf("task-%d", i),
			"shard":           worker,
			"idempotency_key": uuid.NewString(),
			"schema_version":  1,
			"payload":         map[string]any{"i": i},
		})
		return string(b)
	}
}

func gzipNDJSON(lines []string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, line := range lines {
		if _, err := gz.Write([]byte(line)); err != nil {
			return nil, err
		}
		if _, err := gz.Write([]byte("\n")); err != nil {
			return nil, err
		}
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
