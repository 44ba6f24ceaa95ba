package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const ordersJSONL = `{"LogTime":"05/17/2024 09:00:01.100000","ClOrderId":"A1","OrderType":"New"}
{"LogTime":"05/17/2024 09:00:01.200000","ClOrderId":"A2","OrderType":"New"}
{"LogTime":"05/17/2024 09:00:03.000000","ClOrderId":"A1","OrderType":"Cancel"}
{"LogTime":"05/17/2024 09:00:03.500000","ClOrderId":"A3","OrderType":"New"}
`

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, fs afero.Fs, args ...string) result {
	t.Helper()
	var out, errb bytes.Buffer
	code := execute(args, fs, &out, &errb)
	return result{code: code, stdout: out.String(), stderr: errb.String()}
}

func dataFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/d/latency.csv", []byte("a,CostMillisecond\n1,5\n2,5\n3,7\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/d/orders.jsonl", []byte(ordersJSONL), 0o644))
	return fs
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

func TestCLI_MissingArgument(t *testing.T) {
	fs := dataFS(t)
	for _, args := range [][]string{{}, {"hist"}, {"combo", "/d/orders.jsonl", "extra"}} {
		r := runCLI(t, fs, args...)
		require.NotEqual(t, 0, r.code, "%v", args)
		require.Contains(t, r.stdout, "Usage:")
		require.Contains(t, r.stderr, "error:")
	}
	require.False(t, exists(t, fs, "/d/latency.jpg"))
	require.False(t, exists(t, fs, "/d/orders_line_plot.jpg"))
}

func TestCLI_AutoProfiles(t *testing.T) {
	fs := dataFS(t)
	r := runCLI(t, fs, "/d/latency.csv")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/d/latency.jpg\n", r.stdout)
	require.True(t, exists(t, fs, "/d/latency.jpg"))

	r = runCLI(t, fs, "/d/orders.jsonl")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/d/orders_line_plot.jpg\n/d/orders_bar_plot.jpg\n", r.stdout)
}

func TestCLI_ProfileCommands(t *testing.T) {
	fs := dataFS(t)
	r := runCLI(t, fs, "depth", "/d/orders.jsonl")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/d/orders_num.jpg\n", r.stdout)

	r = runCLI(t, fs, "rate", "--granularity", "2s", "/d/orders.jsonl")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/d/orders.jpg\n", r.stdout)

	r = runCLI(t, fs, "sorted", "--preview", "/d/latency.csv")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/d/latency_sorted.jpg\n", r.stdout)
	require.Contains(t, r.stderr, "CostMillisecond (3 points, last 7)")

	r = runCLI(t, fs, "panels", "--fields", "a,CostMillisecond", "/d/latency.csv")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/d/latency.jpg\n", r.stdout)
}

func TestCLI_Errors(t *testing.T) {
	fs := dataFS(t)
	r := runCLI(t, fs, "hist", "--field", "Nope", "/d/latency.csv")
	require.Equal(t, 1, r.code)
	require.Empty(t, r.stdout)
	require.Contains(t, r.stderr, "/d/latency.csv")
	require.Contains(t, r.stderr, `field "Nope"`)
	require.NotContains(t, r.stderr, "Usage:")

	r = runCLI(t, fs, "/d/missing.csv")
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "file does not exist")

	r = runCLI(t, fs, "--log-level", "loud", "/d/latency.csv")
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "unknown log level")

	r = runCLI(t, fs, "--format", "parquet", "/d/latency.csv")
	require.Equal(t, 1, r.code)
	require.Contains(t, r.stderr, "unknown format")
}

func TestCLI_RunProfile(t *testing.T) {
	fs := dataFS(t)
	job := `name: latency
input: /d/latency.csv
mappings:
  - name: cost
    rule: direct
    field: CostMillisecond
charts:
  - kind: histogram
    series: [cost]
    discrete: true
    suffix: _hist
`
	require.NoError(t, afero.WriteFile(fs, "/p/job.yaml", []byte(job), 0o644))
	r := runCLI(t, fs, "run", "--profile", "/p/job.yaml")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/d/latency_hist.jpg\n", r.stdout)

	r = runCLI(t, fs, "run", "--profile", "/p/job.yaml", "--output-dir", "/out")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, "/out/latency_hist.jpg\n", r.stdout)

	r = runCLI(t, fs, "run")
	require.NotEqual(t, 0, r.code)
}

func TestCLI_ExtractAndCut(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := strings.Join([]string{
		"D0001 05/17/2024 09:00:01.000000 recv 8=FIX.4.2\x0135=D\x0149=HRT\x011=ACC\x0111=A1\x0155=7203\x01",
		"D0001 05/17/2024 09:00:01.002000 send 8=FIX.4.2\x0135=8\x0120=2\x0139=2\x0111=A1\x0155=7203\x01",
	}, "\n") + "\n"
	require.NoError(t, afero.WriteFile(fs, "/l/gw.log", []byte(log), 0o644))

	r := runCLI(t, fs, "extract", "latency", "/l/gw.log", "/l/lat.csv")
	require.Equal(t, 0, r.code, r.stderr)
	data, err := afero.ReadFile(fs, "/l/lat.csv")
	require.NoError(t, err)
	require.Equal(t, "ClientOrderID,CostMillisecond\nA1,2.000\n", string(data))

	r = runCLI(t, fs, "extract", "orders", "/l/gw.log", "/l/orders.jsonl")
	require.Equal(t, 0, r.code, r.stderr)
	data, err = afero.ReadFile(fs, "/l/orders.jsonl")
	require.NoError(t, err)
	require.Contains(t, string(data), `"OrderType":"New"`)

	r = runCLI(t, fs, "extract", "latency", "/l/missing.log", "/l/x.csv")
	require.Equal(t, 1, r.code)
	require.False(t, exists(t, fs, "/l/x.csv"))

	r = runCLI(t, fs, "cut", "--start", "09:00:01.002", "--end", "09:00:01.002", "/l/gw.log")
	require.Equal(t, 0, r.code, r.stderr)
	require.Equal(t, 1, strings.Count(r.stdout, "\n"))
	require.Contains(t, r.stdout, "35=8")
}

func TestCLI_Inspect(t *testing.T) {
	fs := dataFS(t)
	r := runCLI(t, fs, "inspect", "--field", "OrderType", "/d/orders.jsonl")
	require.Equal(t, 0, r.code, r.stderr)
	require.Contains(t, r.stdout, "Records: 4")
	require.Contains(t, r.stdout, "Cancel: 1")
	require.Contains(t, r.stdout, "New: 3")
}
