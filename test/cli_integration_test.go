//go:build integration

package test

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// gatewayBin is the binary under test, compiled once in TestMain.
var gatewayBin string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	dir, err := os.MkdirTemp("", "livcap-translate-it")
	if err != nil {
		fmt.Fprintln(os.Stderr, "temp dir:", err)
		os.Exit(1)
	}
	gatewayBin = filepath.Join(dir, "livcap-translate")

	build := exec.Command("go", "build", "-o", gatewayBin, "../cmd/livcap-translate")
	if out, err := build.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "build gateway binary: %v\n%s", err, out)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// gatewayProc is one gateway process running against a throwaway config.
type gatewayProc struct {
	base string
	cmd  *exec.Cmd
	logs *bytes.Buffer
}

// startGateway writes conf to a scratch dir, launches the binary with it
// and blocks until /health answers 200. The process is interrupted when
// the test finishes unless the test already waited on it.
func startGateway(t *testing.T, port int, conf string) *gatewayProc {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	cmd := exec.Command(gatewayBin, "run", "--config", cfgPath)
	cmd.Dir = dir
	cmd.Stdout = &logs
	cmd.Stderr = &logs

	if err := cmd.Start(); err != nil {
		t.Fatalf("start gateway: %v", err)
	}

	gw := &gatewayProc{
		base: fmt.Sprintf("http://127.0.0.1:%d", port),
		cmd:  cmd,
		logs: &logs,
	}
	t.Cleanup(func() {
		if cmd.ProcessState != nil {
			return
		}
		cmd.Process.Signal(os.Interrupt)
		waited := make(chan struct{})
		go func() { cmd.Wait(); close(waited) }()
		select {
		case <-waited:
		case <-time.After(5 * time.Second):
			cmd.Process.Kill()
			<-waited
		}
	})

	// The warm-up against a fake API key fails, but the server must still
	// come up and answer health checks.
	if !waitReady(gw.base+"/health", 10*time.Second) {
		t.Fatalf("gateway never became healthy\nlogs:\n%s", logs.String())
	}
	return gw
}

// stop sends SIGINT and returns the process exit error, failing the test
// if the gateway does not exit within five seconds.
func (g *gatewayProc) stop(t *testing.T) error {
	t.Helper()

	if err := g.cmd.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("signal gateway: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- g.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		g.cmd.Process.Kill()
		t.Fatalf("gateway ignored SIGINT for 5s\nlogs:\n%s", g.logs.String())
		return nil
	}
}

// freePort reserves an ephemeral port and hands it back for the gateway
// to bind.
func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// waitReady polls url until it answers 200 or patience runs out.
func waitReady(url string, patience time.Duration) bool {
	client := &http.Client{Timeout: time.Second}
	for begin := time.Now(); time.Since(begin) < patience; time.Sleep(50 * time.Millisecond) {
		resp, err := client.Get(url)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return true
		}
	}
	return false
}

// postChat fires one chat completion at the gateway. The upstream call
// fails on the fake key; the point is the usage record it leaves behind.
func postChat(t *testing.T, base string) {
	t.Helper()

	body := `{"model":"gpt-4o","messages":[{"role":"user","content":"hello"}]}`
	resp, err := http.Post(base+"/v1/chat/completions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post chat completion: %v", err)
	}
	resp.Body.Close()
	t.Logf("chat completion answered %d", resp.StatusCode)
}

func TestGatewayComesUpHealthy(t *testing.T) {
	if testing.Short() {
		t.Skip("gateway binary not built in short mode")
	}

	port := freePort(t)
	gw := startGateway(t, port, fmt.Sprintf(`
server:
  host: "127.0.0.1"
  port: %d

backend:
  api_key: "integration-test-key"
  timeout: 30s

usage:
  enabled: false

telemetry:
  logging:
    level: "info"
    format: "json"
  metrics:
    enabled: false
`, port))

	resp, err := http.Get(gw.base + "/health")
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status code = %d, want 200", resp.StatusCode)
	}

	var health struct {
		Status      string `json:"status"`
		ClientReady bool   `json:"client_ready"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("health status = %q, want ok", health.Status)
	}
}

func TestGatewayStopsOnInterrupt(t *testing.T) {
	if testing.Short() {
		t.Skip("gateway binary not built in short mode")
	}

	port := freePort(t)
	gw := startGateway(t, port, fmt.Sprintf(`
server:
  host: "127.0.0.1"
  port: %d

backend:
  api_key: "integration-test-key"
  timeout: 30s

usage:
  enabled: false

telemetry:
  logging:
    level: "info"
    format: "json"
  metrics:
    enabled: false
`, port))

	// SIGINT is the normal way down and must produce a zero exit.
	if err := gw.stop(t); err != nil {
		t.Errorf("exit after SIGINT = %v, want clean exit\nlogs:\n%s", err, gw.logs.String())
	}
}

func TestUsageRecordsFlowToQueryCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("gateway binary not built in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "usage.db")
	port := freePort(t)
	gw := startGateway(t, port, fmt.Sprintf(`
server:
  host: "127.0.0.1"
  port: %d

backend:
  api_key: "integration-test-key"
  timeout: 10s

usage:
  enabled: true
  database: "%s"

telemetry:
  logging:
    level: "warn"
    format: "json"
  metrics:
    enabled: false
`, port, dbPath))

	postChat(t, gw.base)

	// Shutdown drains the recorder queue, so once the process is gone the
	// record is on disk and the database is free for a second process.
	if err := gw.stop(t); err != nil {
		t.Fatalf("exit after SIGINT = %v\nlogs:\n%s", err, gw.logs.String())
	}

	out, err := exec.Command(gatewayBin, "usage", "query",
		"--database", dbPath,
		"--limit", "10",
		"--format", "json").CombinedOutput()
	if err != nil {
		t.Fatalf("usage query: %v\noutput:\n%s", err, out)
	}

	var result struct {
		Records []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		t.Fatalf("usage query emitted bad JSON: %v\noutput:\n%s", err, out)
	}
	if len(result.Records) == 0 {
		t.Error("usage query returned no records for a request that completed")
	}
}

func TestVersionReportsProduct(t *testing.T) {
	if testing.Short() {
		t.Skip("gateway binary not built in short mode")
	}

	out, err := exec.Command(gatewayBin, "version").CombinedOutput()
	if err != nil {
		t.Fatalf("version command: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(string(out), "LivCap Translate") {
		t.Errorf("version output %q does not name the product", out)
	}
}

func TestDryRunChecksConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("gateway binary not built in short mode")
	}

	writeConf := func(t *testing.T, name, body string) string {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("accepts a valid config", func(t *testing.T) {
		path := writeConf(t, "good.yaml", `
server:
  host: "127.0.0.1"
  port: 18082

backend:
  timeout: 30s

usage:
  enabled: false
`)
		out, err := exec.Command(gatewayBin, "run", "--config", path, "--dry-run").CombinedOutput()
		if err != nil {
			t.Errorf("dry-run rejected a valid config: %v\noutput:\n%s", err, out)
		}
	})

	t.Run("rejects a broken config", func(t *testing.T) {
		path := writeConf(t, "bad.yaml", `
server:
  host: "127.0.0.1"
  port: 99999

telemetry:
  logging:
    level: "loud"
`)
		out, err := exec.Command(gatewayBin, "run", "--config", path, "--dry-run").CombinedOutput()
		if err == nil {
			t.Errorf("dry-run accepted a config with a bad port and log level\noutput:\n%s", out)
		}
	})
}
