package records

import (
	"bytes"
	"compress/gzip"
	"os"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func loadErr(t *testing.T, err error) *LoadError {
	t.Helper()
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le), "expected *LoadError, got %T: %v", err, err)
	return le
}

const costCSV = "a,CostMillisecond\n1,5\n2,5\n3,7\n"

func TestLoadCSV_Values(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/data/latency.csv", []byte(costCSV))

	ds, err := Load(fs, "/data/latency.csv", Options{})
	require.NoError(t, err)
	require.Equal(t, FormatCSV, ds.Format)
	require.Equal(t, []string{"a", "CostMillisecond"}, ds.Fields)
	require.Equal(t, 3, ds.Len())

	var costs []float64
	for _, rec := range ds.Records {
		v, ok := rec.Get("CostMillisecond")
		require.True(t, ok)
		f, ok := v.Float()
		require.True(t, ok)
		costs = append(costs, f)
	}
	require.Equal(t, []float64{5, 5, 7}, costs)
}

func TestLoadCSV_MixedKinds(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/x.csv", []byte("ClientOrderID,CostMillisecond,RecvTime,Note\nORD-1,1.250,05/17/2024 09:00:01.000001,\n"))

	ds, err := Load(fs, "/x.csv", Options{})
	require.NoError(t, err)
	rec := ds.Records[0]

	id, ok := rec.Get("ClientOrderID")
	require.True(t, ok)
	require.Equal(t, KindString, id.Kind)

	cost, _ := rec.Get("CostMillisecond")
	require.Equal(t, KindNumber, cost.Kind)
	require.Equal(t, "1.250", cost.Raw)

	recv, _ := rec.Get("RecvTime")
	require.Equal(t, KindTime, recv.Kind)
	require.Equal(t, time.Date(2024, 5, 17, 9, 0, 1, 1000, time.UTC), recv.Time)

	_, ok = rec.Get("Note")
	require.False(t, ok, "empty cell should read as absent")
}

func TestLoadCSV_StrictFieldCount(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/bad.csv", []byte("a,CostMillisecond\n1,5\n2,5,extra\n3,7\n"))

	_, err := Load(fs, "/bad.csv", Options{Mode: Strict})
	le := loadErr(t, err)
	require.Equal(t, "/bad.csv", le.Path)
	require.Equal(t, 3, le.Line)
	require.True(t, errors.Is(err, ErrMalformed))
}

func TestLoadCSV_TolerantSkipsRows(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/bad.csv", []byte("a,CostMillisecond\n1,5\n2,5,extra\n3\n4,7\n"))

	ds, err := Load(fs, "/bad.csv", Options{Mode: Tolerant})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, 2, ds.Skipped)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.csv", Options{})
	le := loadErr(t, err)
	require.Equal(t, "/nope.csv", le.Path)
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.Contains(t, err.Error(), "/nope.csv")
}

func TestLoad_EmptyInputs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/empty.csv", nil)
	writeFile(t, fs, "/blank.jsonl", []byte("\n  \n"))
	writeFile(t, fs, "/header.csv", []byte("a,CostMillisecond\n"))

	for _, p := range []string{"/empty.csv", "/blank.jsonl", "/header.csv"} {
		_, err := Load(fs, p, Options{})
		loadErr(t, err)
		require.True(t, errors.Is(err, ErrEmpty), "%s: %v", p, err)
	}
}

const ordersJSONL = `{"LogTime":"05/17/2024 09:00:00.100000","OrderType":"New","ClOrderId":"A1","Qty":100}
{"LogTime":"05/17/2024 09:00:00.900000","OrderType":"New","ClOrderId":"A2","Qty":200}

{"LogTime":"05/17/2024 09:00:01.200000","OrderType":"Cancel","ClOrderId":"A1","Qty":100}
`

func TestLoadJSONL_OrderAndKinds(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/orders.jsonl", []byte(ordersJSONL))

	ds, err := Load(fs, "/orders.jsonl", Options{})
	require.NoError(t, err)
	require.Equal(t, FormatJSONL, ds.Format)
	require.Equal(t, 3, ds.Len())
	require.Equal(t, []string{"LogTime", "OrderType", "ClOrderId", "Qty"}, ds.Fields)
	require.Equal(t, []string{"LogTime", "OrderType", "ClOrderId", "Qty"}, ds.Records[2].Names())

	lt, _ := ds.Records[2].Get("LogTime")
	require.Equal(t, KindTime, lt.Kind)
	require.Equal(t, 200*time.Millisecond, lt.Time.Sub(lt.Time.Truncate(time.Second)))

	typ, _ := ds.Records[2].Get("OrderType")
	require.Equal(t, "Cancel", typ.Text())
}

func TestLoadJSONL_StrictMalformed(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/orders.jsonl", []byte("{\"OrderType\":\"New\"}\n{\"OrderType\":\n[1,2]\n"))

	_, err := Load(fs, "/orders.jsonl", Options{Mode: Strict})
	le := loadErr(t, err)
	require.Equal(t, 2, le.Line)
	require.Contains(t, err.Error(), "line 2")
}

func TestLoadJSONL_TolerantSkips(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/orders.jsonl", []byte("{\"OrderType\":\"New\"}\n{\"OrderType\":\n[1,2]\n{\"OrderType\":\"Cancel\"}\n"))

	ds, err := Load(fs, "/orders.jsonl", Options{Mode: Tolerant})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	require.Equal(t, 2, ds.Skipped)
}

func TestLoad_CompressedInputs(t *testing.T) {
	fs := afero.NewMemMapFs()

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(costCSV))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	writeFile(t, fs, "/latency.csv.gz", gz.Bytes())

	var xzb bytes.Buffer
	xw, err := xz.NewWriter(&xzb)
	require.NoError(t, err)
	_, err = xw.Write([]byte(ordersJSONL))
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	writeFile(t, fs, "/orders.jsonl.xz", xzb.Bytes())

	var sz bytes.Buffer
	sw := snappy.NewBufferedWriter(&sz)
	_, err = sw.Write([]byte(costCSV))
	require.NoError(t, err)
	require.NoError(t, sw.Close())
	// no compression extension: detected from the stream header
	writeFile(t, fs, "/latency-snappy.csv", sz.Bytes())

	ds, err := Load(fs, "/latency.csv.gz", Options{})
	require.NoError(t, err)
	require.Equal(t, FormatCSV, ds.Format)
	require.Equal(t, 3, ds.Len())

	ds, err = Load(fs, "/orders.jsonl.xz", Options{})
	require.NoError(t, err)
	require.Equal(t, FormatJSONL, ds.Format)
	require.Equal(t, 3, ds.Len())

	ds, err = Load(fs, "/latency-snappy.csv", Options{})
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"ClientOrderID", "CostMillisecond"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"ORD-1", 5}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"ORD-2", 7.5}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/latency.xlsx", buf.Bytes())

	ds, err := Load(fs, "/latency.xlsx", Options{})
	require.NoError(t, err)
	require.Equal(t, FormatXLSX, ds.Format)
	require.Equal(t, 2, ds.Len())
	v, _ := ds.Records[1].Get("CostMillisecond")
	n, ok := v.Float()
	require.True(t, ok)
	require.Equal(t, 7.5, n)
}
