package usage

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/util/naming"
)

// Totals maps usage keys to accumulated byte counts.
type Totals map[naming.UsageKey]v1alpha1.UsageTotals

type counterReply struct {
	Filters []struct {
		Name     string `xml:"filter-name"`
		Counters []struct {
			Name  string `xml:"counter-name"`
			Bytes int64  `xml:"byte-count"`
		} `xml:"counter"`
	} `xml:"firewall-information>filter-information"`
}

// Parse accumulates every counter of a get-firewall-filter-information reply.
// Counters at zero or below are ignored. Names that are not usage counters
// are skipped and logged.
func Parse(reply string, log logr.Logger) (Totals, error) {
	var r counterReply
	dec := xml.NewDecoder(strings.NewReader(reply))
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to parse counter reply: %w", err)
	}

	totals := make(Totals)
	for _, f := range r.Filters {
		for _, c := range f.Counters {
			if c.Bytes <= 0 {
				continue
			}
			key, dir, err := naming.ParseUsageTerm(strings.TrimSpace(c.Name))
			if err != nil {
				log.Info("skipping counter", "filter", strings.TrimSpace(f.Name), "counter", c.Name, "reason", err.Error())
				continue
			}
			t := totals[key]
			t.Add(dir, c.Bytes)
			totals[key] = t
		}
	}
	return totals, nil
}
