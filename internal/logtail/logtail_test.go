package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "zap json",
			line: `{"level":"warn","ts":"2025-10-08T21:01:05.000Z","caller":"session/session.go:1","msg":"operation failed","op":"search","tab":"catalog"}`,
			want: "WARN  operation failed op=search tab=catalog",
		},
		{
			name: "numeric field",
			line: `{"level":"info","msg":"import finished","added":3}`,
			want: "INFO  import finished added=3",
		},
		{
			name: "plain text",
			line: "  something else  ",
			want: "something else",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line).Format()
			if !strings.HasSuffix(got, tt.want) {
				t.Fatalf("Format() = %q, want suffix %q", got, tt.want)
			}
		})
	}
}

func TestParse_Time(t *testing.T) {
	e := Parse(`{"level":"info","ts":"2025-10-08T21:01:05.123Z","msg":"x"}`)
	want := time.Date(2025, 10, 8, 21, 1, 5, 123e6, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if _, ok := e.Fields["ts"]; ok {
		t.Fatalf("ts leaked into fields")
	}
}

func TestTail_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seomate.log")
	content := `{"level":"info","msg":"a"}` + "\n\n" + `{"level":"error","msg":"b"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	want := []string{"INFO  a", "ERROR b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tail = %q, want %q", got, want)
	}
}
