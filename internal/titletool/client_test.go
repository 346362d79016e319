package titletool_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foildb/internal/titletool"
)

type stubExecutor struct {
	lines []string
	err   error
	calls int
	args  [][]string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	s.calls++
	cloned := append([]string(nil), args...)
	s.args = append(s.args, cloned)
	for _, line := range s.lines {
		if onStdout != nil {
			onStdout(line)
		}
	}
	return s.err
}

type fileCreatingExecutor struct {
	stubExecutor
}

func (f *fileCreatingExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	if err := f.stubExecutor.Run(ctx, binary, args, onStdout); err != nil {
		return err
	}
	output := args[len(args)-1]
	return os.WriteFile(output, []byte(`{}`), 0o644)
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := titletool.New("  ", 10); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestExtractPassesLocaleAndOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "titles.US.en.json")
	exec := &fileCreatingExecutor{}
	client, err := titletool.New("titledb-extract", 10, titletool.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Extract(context.Background(), "US.en", output, nil); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("expected one invocation, got %d", exec.calls)
	}
	want := []string{"extract", "--locale", "US.en", "--output", output}
	got := exec.args[0]
	if len(got) != len(want) {
		t.Fatalf("unexpected args: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected args: got %v want %v", got, want)
		}
	}
}

func TestExtractErrorsWhenNoOutputProduced(t *testing.T) {
	output := filepath.Join(t.TempDir(), "titles.US.en.json")
	client, err := titletool.New("titledb-extract", 10, titletool.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = client.Extract(context.Background(), "US.en", output, nil)
	if err == nil {
		t.Fatal("expected error when tool produces no output")
	}
	if !strings.Contains(err.Error(), "without producing") {
		t.Fatalf("expected missing-output error, got: %v", err)
	}
}

func TestExtractReturnsExecutorError(t *testing.T) {
	output := filepath.Join(t.TempDir(), "titles.US.en.json")
	boom := errors.New("boom")
	client, err := titletool.New("titledb-extract", 10, titletool.WithExecutor(&stubExecutor{err: boom}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Extract(context.Background(), "US.en", output, nil); !errors.Is(err, boom) {
		t.Fatalf("expected executor error, got: %v", err)
	}
}

func TestExtractForwardsToolOutput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "titles.US.en.json")
	exec := &fileCreatingExecutor{stubExecutor: stubExecutor{lines: []string{"fetching feed", "writing snapshot"}}}
	client, err := titletool.New("titledb-extract", 10, titletool.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	var seen []string
	if err := client.Extract(context.Background(), "US.en", output, func(line string) {
		seen = append(seen, line)
	}); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(seen) != 2 || seen[0] != "fetching feed" || seen[1] != "writing snapshot" {
		t.Fatalf("unexpected forwarded lines: %v", seen)
	}
}

func TestExtractCreatesOutputDirectory(t *testing.T) {
	output := filepath.Join(t.TempDir(), "nested", "artefacts", "titles.US.en.json")
	client, err := titletool.New("titledb-extract", 10, titletool.WithExecutor(&fileCreatingExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Extract(context.Background(), "US.en", output, nil); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestExtractRejectsEmptyLocale(t *testing.T) {
	client, err := titletool.New("titledb-extract", 10, titletool.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Extract(context.Background(), "  ", filepath.Join(t.TempDir(), "out.json"), nil); err == nil {
		t.Fatal("expected error for empty locale")
	}
}
