package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeRecords = `{"type":"Metric","data":{"name":"http_req_duration","values":{"p90":1500,"avg":800}}}
{"type":"Metric","data":{"name":"http_req_failed","values":{"rate":0.002,"count":5}}}
{"type":"Summary","metrics":{"purchase_success":{"values":{"rate":0.97,"count":970}}}}
`

func writeResults(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "k6-results.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	t.Setenv("PUBLISH_METRICS", "")
	t.Setenv("LOG_LEVEL", "error")

	slow := strings.Replace(threeRecords, `"p90":1500`, `"p90":2500`, 1)

	tests := []struct {
		name       string
		args       func(t *testing.T) []string
		wantCode   int
		wantStdout []string
		wantStderr []string
	}{
		{
			name:       "renders report",
			args:       func(t *testing.T) []string { return []string{writeResults(t, threeRecords)} },
			wantCode:   0,
			wantStdout: []string{"All Thresholds Passed", "**1500.00ms**", "0.20%", "97.00%"},
		},
		{
			name:       "missing argument",
			args:       func(t *testing.T) []string { return nil },
			wantCode:   1,
			wantStderr: []string{"Usage: k6-summary <k6-results.json>"},
		},
		{
			name:       "too many arguments",
			args:       func(t *testing.T) []string { return []string{"a.json", "b.json"} },
			wantCode:   1,
			wantStderr: []string{"Usage: k6-summary"},
		},
		{
			name:       "file does not exist",
			args:       func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "absent.json")} },
			wantCode:   1,
			wantStderr: []string{"Usage: k6-summary"},
		},
		{
			name:       "unknown flag",
			args:       func(t *testing.T) []string { return []string{"--nope", "a.json"} },
			wantCode:   1,
			wantStderr: []string{"Usage: k6-summary"},
		},
		{
			name:       "directory input is a processing failure",
			args:       func(t *testing.T) []string { return []string{t.TempDir()} },
			wantCode:   1,
			wantStderr: []string{"## ❌ Error parsing results", "is a directory"},
		},
		{
			name:       "failed thresholds still exit zero",
			args:       func(t *testing.T) []string { return []string{writeResults(t, slow)} },
			wantCode:   0,
			wantStdout: []string{"Some Thresholds Failed", "❌ FAIL"},
		},
		{
			name:       "fail on threshold",
			args:       func(t *testing.T) []string { return []string{"--fail-on-threshold", writeResults(t, slow)} },
			wantCode:   1,
			wantStdout: []string{"Some Thresholds Failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := run(context.Background(), tt.args(t), &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			for _, want := range tt.wantStdout {
				assert.Contains(t, stdout.String(), want)
			}
			for _, want := range tt.wantStderr {
				assert.Contains(t, stderr.String(), want)
			}
			if tt.wantCode != 0 && len(tt.wantStdout) == 0 {
				assert.Empty(t, stdout.String())
			}
		})
	}
}

func TestRun_JSONOut(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	out := filepath.Join(t.TempDir(), "artifacts", "summary.json")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--json-out", out, writeResults(t, threeRecords)}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var summary struct {
		Passed     bool `json:"passed"`
		Thresholds []struct {
			ID     string `json:"id"`
			Passed bool   `json:"passed"`
		} `json:"thresholds"`
	}
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.True(t, summary.Passed)
	assert.Len(t, summary.Thresholds, 3)
}
