package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"liquiditySim/internal/model"
)

func TestJsonlStorageAppendsReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reports.jsonl")
	sink := NewJsonlStorage(path)

	for _, runID := range []string{"run-1", "run-2"} {
		report := model.Report{
			RunID:   runID,
			ChainID: 1,
			Mints:   []model.MintResult{{Index: 0, Status: model.MintStatusMinted, TokenID: "700001"}},
		}
		if err := sink.WriteReport(context.Background(), report); err != nil {
			t.Fatalf("write report: %v", err)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var runs []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var decoded model.Report
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		if len(decoded.Mints) != 1 || decoded.Mints[0].TokenID != "700001" {
			t.Fatalf("mint mismatch: %+v", decoded.Mints)
		}
		runs = append(runs, decoded.RunID)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(runs) != 2 || runs[0] != "run-1" || runs[1] != "run-2" {
		t.Fatalf("unexpected runs: %v", runs)
	}
}

type failingSink struct{ err error }

func (f failingSink) WriteReport(context.Context, model.Report) error { return f.err }

func TestMultiSinkJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	path := filepath.Join(t.TempDir(), "reports.jsonl")

	sink := MultiSink{failingSink{err: errA}, nil, NewJsonlStorage(path)}
	err := sink.WriteReport(context.Background(), model.Report{RunID: "run"})
	if !errors.Is(err, errA) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("jsonl sink should still run: %v", statErr)
	}
}
