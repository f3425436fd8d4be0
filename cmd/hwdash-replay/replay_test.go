package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"hwdash/dash/stream"
)

func TestReadCaptureSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.txt")
	data := "Page0| {|}Simple1|cpu_util 6 {|}\r\n\n   \nPage0| {|}Simple1|cpu_util 7 {|}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err := readCapture(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[1] != "Page0| {|}Simple1|cpu_util 7 {|}" {
		t.Fatalf("lines=%q", lines)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	os.WriteFile(empty, []byte("\n\n"), 0o644)
	if _, err := readCapture(empty); err == nil {
		t.Fatal("empty capture accepted")
	}
}

func TestReplayerServesEachLineOnce(t *testing.T) {
	rp := &replayer{
		lines: []string{"a", "b", "c"},
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	srv := httptest.NewServer(rp)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}

	sc := stream.NewScanner(resp.Body)
	var got []string
	for sc.Next() {
		got = append(got, sc.Event().Data)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("events=%q", got)
	}
}
