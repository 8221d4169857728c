package connectivity

import (
	"context"
	"net"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
)

type querierFunc func(ctx context.Context, iface string) (net.IP, error)

func (f querierFunc) IPAddress(ctx context.Context, iface string) (net.IP, error) {
	return f(ctx, iface)
}

func TestProberConnected(t *testing.T) {
	tests := []struct {
		name    string
		querier querierFunc
		want    State
	}{
		{
			name: "address assigned",
			querier: func(ctx context.Context, iface string) (net.IP, error) {
				return net.ParseIP("192.168.1.20"), nil
			},
			want: Online,
		},
		{
			name: "no address",
			querier: func(ctx context.Context, iface string) (net.IP, error) {
				return nil, nil
			},
			want: Offline,
		},
		{
			name: "query fails",
			querier: func(ctx context.Context, iface string) (net.IP, error) {
				return nil, errors.New("no such device")
			},
			want: Offline,
		},
		{
			name: "query panics",
			querier: func(ctx context.Context, iface string) (net.IP, error) {
				panic("netlink exploded")
			},
			want: Offline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := NewProber(&Config{Querier: tt.querier})

			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, prober.State(context.Background(), "wlan0"))
				assert.Equal(t, tt.want == Online, prober.Connected(context.Background(), "wlan0"))
			})
		})
	}
}

func TestProberQueriesEveryTime(t *testing.T) {
	calls := 0
	prober := NewProber(&Config{
		Querier: querierFunc(func(ctx context.Context, iface string) (net.IP, error) {
			calls++
			if calls == 1 {
				return nil, nil
			}
			return net.ParseIP("10.0.0.2"), nil
		}),
	})

	assert.False(t, prober.Connected(context.Background(), "wlan0"))
	assert.True(t, prober.Connected(context.Background(), "wlan0"))
	assert.Equal(t, 2, calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ONLINE", Online.String())
	assert.Equal(t, "OFFLINE", Offline.String())
	assert.Equal(t, "INVALID STATE", State(7).String())
}
