package fixlog

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/iafilius/OrderLogCharts/src/logging"
	"github.com/iafilius/OrderLogCharts/src/records"
)

// Latency CSV columns.
const (
	ClientOrderIDField = "ClientOrderID"
	CostField          = "CostMillisecond"
)

// LatencyStats summarises one latency extraction.
type LatencyStats struct {
	Confirmed   int // confirmation lines seen
	Written     int // rows written
	MissingSend int // confirmed orders without a send line
	Unparsed    int // confirmation lines without timestamp or tag 11
}

type roundTrip struct {
	id       string
	recv     time.Time
	returned time.Time
	hasSend  bool
}

// isConfirmed matches an execution report (35=8) with 20=2 and 39=2.
func isConfirmed(line string) bool {
	return strings.Contains(line, "|35=8|") && strings.Contains(line, "|20=2|") &&
		strings.Contains(line, "|39=2|") && strings.Contains(line, "8=FIX")
}

func isNewOrderSingle(line string) bool {
	return strings.Contains(line, "|35=D|") && strings.Contains(line, "8=FIX")
}

// ExtractLatency reads logPath twice: first for confirmed orders keyed by tag 11
// (a later confirmation replaces an earlier one), then for the first 35=D line of
// each. It writes ClientOrderID,CostMillisecond rows sorted by send time, cost in
// milliseconds with three decimals.
func ExtractLatency(fs afero.Fs, logPath string, w io.Writer) (LatencyStats, error) {
	defer logging.TimeTrack(time.Now(), "extract latency "+logPath)
	var st LatencyStats
	orders := map[string]*roundTrip{}
	err := scanLines(fs, logPath, func(n int, line string) bool {
		if !isConfirmed(line) {
			return true
		}
		st.Confirmed++
		raw, okT := logTime(line)
		id, okID := submatch(reClOrderID, line)
		if !okT || !okID {
			st.Unparsed++
			logging.Debugf("[fixlog] %s line %d: confirmation without timestamp or tag 11", logPath, n)
			return true
		}
		t, _ := records.ParseTimeLayout(raw, records.LogTimeLayout)
		orders[id] = &roundTrip{id: id, returned: t}
		return true
	})
	if err != nil {
		return st, err
	}
	err = scanLines(fs, logPath, func(_ int, line string) bool {
		if !isNewOrderSingle(line) {
			return true
		}
		id, ok := submatch(reClOrderID, line)
		if !ok {
			return true
		}
		o, ok := orders[id]
		if !ok || o.hasSend {
			return true
		}
		raw, ok := logTime(line)
		if !ok {
			return true
		}
		o.recv, _ = records.ParseTimeLayout(raw, records.LogTimeLayout)
		o.hasSend = true
		return true
	})
	if err != nil {
		return st, err
	}

	trips := make([]*roundTrip, 0, len(orders))
	for _, o := range orders {
		if !o.hasSend {
			st.MissingSend++
			continue
		}
		trips = append(trips, o)
	}
	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].recv.Equal(trips[j].recv) {
			return trips[i].recv.Before(trips[j].recv)
		}
		return trips[i].id < trips[j].id
	})

	ds := &records.Dataset{Path: logPath, Format: records.FormatCSV, Fields: []string{ClientOrderIDField, CostField}}
	for _, o := range trips {
		ms := float64(o.returned.Sub(o.recv)) / float64(time.Millisecond)
		ds.Records = append(ds.Records, records.NewRecord(
			records.Field{Name: ClientOrderIDField, Value: records.String(o.id)},
			records.Field{Name: CostField, Value: records.Number(ms, fmt.Sprintf("%.3f", ms))},
		))
	}
	if err := records.Write(w, ds, records.FormatCSV); err != nil {
		return st, errors.Wrap(err, "write latency csv")
	}
	st.Written = len(trips)
	logging.Infof("[fixlog] %s: %d confirmed, %d written, %d without send line", logPath, st.Confirmed, st.Written, st.MissingSend)
	if st.MissingSend > 0 {
		logging.Warnf("[fixlog] %s: skipped %d confirmed order(s) with no 35=D line", logPath, st.MissingSend)
	}
	return st, nil
}
