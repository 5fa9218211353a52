package usage

import (
	"net/netip"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/util/naming"
)

func counters(entries ...string) string {
	out := `<rpc-reply><firewall-information><filter-information><filter-name>usage-input</filter-name>`
	for _, e := range entries {
		out += e
	}
	return out + `</filter-information></firewall-information></rpc-reply>`
}

func counter(name, bytes string) string {
	return `<counter><counter-name>` + name + `</counter-name><packet-count>1</packet-count><byte-count>` + bytes + `</byte-count></counter>`
}

func TestParse(t *testing.T) {
	t.Parallel()
	ip := naming.IPKey(netip.MustParseAddr("203.0.113.10"))

	tests := []struct {
		name  string
		reply string
		want  Totals
	}{
		{
			name:  "address in and out",
			reply: counters(counter("ip-203-0-113-10-in", "100"), counter("ip-203-0-113-10-out", "40")),
			want:  Totals{ip: {BytesReceived: 100, BytesSent: 40}},
		},
		{
			name:  "vlan counter",
			reply: counters(counter("vlan-100-out", "7")),
			want:  Totals{naming.VLANKey(100): {BytesSent: 7}},
		},
		{
			name:  "zero and negative counters are ignored",
			reply: counters(counter("ip-203-0-113-10-in", "0"), counter("vlan-100-in", "-5")),
			want:  Totals{},
		},
		{
			name:  "unparsable names are skipped",
			reply: counters(counter("default-term", "900"), counter("ip-203-0-113-10-in", "5"), counter("vlan-x-in", "3")),
			want:  Totals{ip: {BytesReceived: 5}},
		},
		{
			name:  "repeated counters accumulate",
			reply: counters(counter("ip-203-0-113-10-in", "5"), counter("ip-203-0-113-10-in", "6")),
			want:  Totals{ip: {BytesReceived: 11}},
		},
		{
			name:  "no filters",
			reply: `<rpc-reply><firewall-information/></rpc-reply>`,
			want:  Totals{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.reply, logr.Discard())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_AcrossFilters(t *testing.T) {
	t.Parallel()
	reply := `<rpc-reply><firewall-information>` +
		`<filter-information><filter-name>usage-input</filter-name>` + counter("ip-198-51-100-1-in", "10") + `</filter-information>` +
		`<filter-information><filter-name>usage-output</filter-name>` + counter("ip-198-51-100-1-out", "20") + `</filter-information>` +
		`</firewall-information></rpc-reply>`

	got, err := Parse(reply, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.UsageTotals{BytesReceived: 10, BytesSent: 20},
		got[naming.IPKey(netip.MustParseAddr("198.51.100.1"))])
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	_, err := Parse("<rpc-reply><firewall-information>", logr.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse counter reply")
}
