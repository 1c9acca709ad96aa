package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/amitgr/folio"
)

// PerformanceMarkdown renders the lookback returns derived from a daily
// series, followed by the latest point of the series itself.
func PerformanceMarkdown(points []folio.PerformancePoint, returns map[folio.ReturnPeriod]folio.PeriodReturn, display folio.Currency) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Performance")
	if len(points) == 0 {
		doc.PlainText("No history to report.")
		return doc.String()
	}

	latest := points[len(points)-1]
	doc.PlainText(fmt.Sprintf("As of %s: value %.2f %s, TWR index %.4f",
		latest.Date, latest.HoldingsValue, display, latest.TWR))

	rows := make([][]string, 0, len(folio.ReturnPeriods()))
	for _, period := range folio.ReturnPeriods() {
		r := returns[period]
		rows = append(rows, []string{
			period.String(),
			ratio(r.Perf),
			fmt.Sprintf("%+.2f %s", r.Gain, display),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Period", "Return", "Gain"},
		Rows:   rows,
	})

	return doc.String()
}
