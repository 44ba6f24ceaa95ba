package fixlog

import (
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/iafilius/OrderLogCharts/src/logging"
	"github.com/iafilius/OrderLogCharts/src/records"
)

// DefaultSender is the SenderCompID (tag 49) whose received orders are extracted.
const DefaultSender = "HRT"

// Filter selects order lines.
type Filter struct {
	Sender string // tag 49; DefaultSender when empty
	Symbol string // tag 55; any when empty
}

// OrderStats summarises one order extraction.
type OrderStats struct {
	Matched  int // lines passing the filter
	Unparsed int // matched lines missing a required tag
	Written  int // distinct orders written
}

// orderTypes renames FIX MsgType values; others are written unchanged.
var orderTypes = map[string]string{
	"D": "New",
	"F": "Cancel",
}

type order struct {
	logTime time.Time
	rec     records.Record
	id      string
}

func (f Filter) match(line string) bool {
	sender := f.Sender
	if sender == "" {
		sender = DefaultSender
	}
	return strings.Contains(line, "8=FIX") && strings.Contains(line, "11=") &&
		strings.Contains(line, "55=") && strings.Contains(line, "recv") &&
		strings.Contains(line, "|49="+sender+"|")
}

func parseOrder(line string) (order, bool) {
	raw, ok := logTime(line)
	if !ok {
		return order{}, false
	}
	var vals [4]string
	for i, re := range []*regexp.Regexp{reClOrderID, reAccount, reSymbol, reMsgType} {
		v, ok := submatch(re, line)
		if !ok {
			return order{}, false
		}
		vals[i] = v
	}
	id, account, symbol, msgType := vals[0], vals[1], vals[2], vals[3]
	if t, ok := orderTypes[msgType]; ok {
		msgType = t
	}
	t, _ := records.ParseTimeLayout(raw, records.LogTimeLayout)
	return order{
		logTime: t,
		id:      id,
		rec: records.NewRecord(
			records.Field{Name: "LogTime", Value: records.Timestamp(t, raw)},
			records.Field{Name: "OrderType", Value: records.String(msgType)},
			records.Field{Name: "ClOrderId", Value: records.String(id)},
			records.Field{Name: "Account", Value: records.String(account)},
			records.Field{Name: "Symbol", Value: records.String(symbol)},
		),
	}, true
}

// ExtractOrders writes one JSON line per client order id (the last matching line
// wins) sorted by log time, D renamed New and F renamed Cancel.
func ExtractOrders(fs afero.Fs, logPath string, w io.Writer, filter Filter) (OrderStats, error) {
	defer logging.TimeTrack(time.Now(), "extract orders "+logPath)
	var st OrderStats
	byID := map[string]order{}
	err := scanLines(fs, logPath, func(n int, line string) bool {
		if !filter.match(line) {
			return true
		}
		st.Matched++
		o, ok := parseOrder(line)
		if !ok {
			st.Unparsed++
			logging.Debugf("[fixlog] %s line %d: order line missing time or tags 1/11/35/55", logPath, n)
			return true
		}
		if filter.Symbol != "" {
			if s, _ := o.rec.Get("Symbol"); s.Text() != filter.Symbol {
				return true
			}
		}
		byID[o.id] = o
		return true
	})
	if err != nil {
		return st, err
	}

	list := make([]order, 0, len(byID))
	for _, o := range byID {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].logTime.Equal(list[j].logTime) {
			return list[i].logTime.Before(list[j].logTime)
		}
		return list[i].id < list[j].id
	})

	ds := &records.Dataset{Path: logPath, Format: records.FormatJSONL}
	for _, o := range list {
		ds.Records = append(ds.Records, o.rec)
	}
	if err := records.Write(w, ds, records.FormatJSONL); err != nil {
		return st, errors.Wrap(err, "write orders jsonl")
	}
	st.Written = len(list)
	logging.Infof("[fixlog] %s: %d order line(s) matched, %d order(s) written", logPath, st.Matched, st.Written)
	if st.Unparsed > 0 {
		logging.Warnf("[fixlog] %s: skipped %d order line(s) missing required tags", logPath, st.Unparsed)
	}
	return st, nil
}
