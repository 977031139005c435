package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestWithoutDetach(t *testing.T) {
	got := withoutDetach([]string{"daemon", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"daemon", "--addr", ":9000"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("withoutDetach = %v, want %v", got, want)
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	p := pidFile(filepath.Join(t.TempDir(), "run", "ledgercastd.pid"))
	if err := p.claim(); err != nil {
		t.Fatalf("claim on empty dir: %v", err)
	}

	info := daemonInfo{
		PID:       os.Getpid(),
		Addr:      "127.0.0.1:8787",
		Schedule:  "@every 5m",
		StartedAt: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
		DataDir:   "/tmp/ledgers",
	}
	if err := p.write(info); err != nil {
		t.Fatal(err)
	}

	pid, err := p.pid()
	if err != nil || pid != info.PID {
		t.Fatalf("pid() = %d, %v; want %d", pid, err, info.PID)
	}
	got, err := p.info()
	if err != nil {
		t.Fatal(err)
	}
	if got.Addr != info.Addr || got.Schedule != info.Schedule || got.DataDir != info.DataDir ||
		!got.StartedAt.Equal(info.StartedAt) {
		t.Errorf("info() = %+v, want %+v", got, info)
	}

	// Our own PID is alive, so a second claim must fail.
	if err := p.claim(); err == nil {
		t.Error("claim succeeded while the recorded process is alive")
	}

	p.clear()
	if _, err := os.Stat(string(p)); !os.IsNotExist(err) {
		t.Errorf("pid file still present after clear: %v", err)
	}
}

func TestPIDFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := pidFile(path).pid(); err == nil {
		t.Error("expected error for malformed pid file")
	}
	if err := pidFile(path).claim(); err == nil {
		t.Error("claim should surface the malformed pid file")
	}
}
