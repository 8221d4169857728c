package listener

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wificonnect/receiver"
)

// trace records radio commands and receive calls in a single timeline.
type trace struct {
	events  []string
	channel string
}

func (tr *trace) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if len(args) == 3 && args[1] == "channel" {
		tr.channel = args[2]
	}
	tr.events = append(tr.events, name+" "+strings.Join(args, " "))
	return nil, nil, nil
}

type fakeReceiver struct {
	tr       *trace
	channels []string
	timeouts []time.Duration
	respond  func(channel string) (*receiver.Credentials, error)
}

func (f *fakeReceiver) Receive(ctx context.Context, iface string, timeout time.Duration) (*receiver.Credentials, error) {
	f.tr.events = append(f.tr.events, "receive "+iface)
	f.channels = append(f.channels, f.tr.channel)
	f.timeouts = append(f.timeouts, timeout)
	return f.respond(f.tr.channel)
}

func newListener(respond func(channel string) (*receiver.Credentials, error)) (*Listener, *trace, *fakeReceiver) {
	tr := &trace{}
	rcv := &fakeReceiver{tr: tr, respond: respond}

	l := New(&Config{
		Interface: "wlan0",
		Runner:    tr,
		Receiver:  rcv,
	})

	return l, tr, rcv
}

func TestListenStopsAtFirstSuccess(t *testing.T) {
	want := &receiver.Credentials{Name: "Home", Passphrase: "pw1"}

	l, tr, rcv := newListener(func(channel string) (*receiver.Credentials, error) {
		if channel == "7" {
			return want, nil
		}
		return nil, receiver.ErrTimeout
	})

	got := l.Listen(context.Background())

	assert.Equal(t, want, got)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7"}, rcv.channels)
	assert.Equal(t, "iwconfig wlan0 mode monitor", tr.events[0])
	assert.Equal(t, "iwconfig wlan0 mode Managed", tr.events[len(tr.events)-1])

	for _, timeout := range rcv.timeouts {
		assert.Equal(t, 15*time.Second, timeout)
	}
}

func TestListenVisitsAllChannelsInOrder(t *testing.T) {
	l, tr, rcv := newListener(func(channel string) (*receiver.Credentials, error) {
		return nil, nil
	})

	got := l.Listen(context.Background())
	require.Nil(t, got)

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}, rcv.channels)

	// every receive happens right after its channel was tuned, inside monitor mode
	expected := []string{"iwconfig wlan0 mode monitor"}
	for _, channel := range Channels {
		expected = append(expected,
			"iwconfig wlan0 channel "+strconv.Itoa(channel),
			"receive wlan0",
		)
	}
	expected = append(expected, "iwconfig wlan0 mode Managed")

	assert.Equal(t, expected, tr.events)
}

func TestListenContinuesAfterReceiveErrors(t *testing.T) {
	l, _, rcv := newListener(func(channel string) (*receiver.Credentials, error) {
		switch channel {
		case "1":
			return nil, receiver.ErrMalformed
		case "2":
			return nil, errors.New("exec: no such file")
		case "3":
			return &receiver.Credentials{Name: "Office", Passphrase: "x"}, nil
		}
		return nil, receiver.ErrTimeout
	})

	got := l.Listen(context.Background())

	require.NotNil(t, got)
	assert.Equal(t, "Office", got.Name)
	assert.Equal(t, []string{"1", "2", "3"}, rcv.channels)
}

func TestListenRestoresManagedModeOnPanic(t *testing.T) {
	l, tr, _ := newListener(func(channel string) (*receiver.Credentials, error) {
		panic("receiver blew up")
	})

	assert.Panics(t, func() {
		l.Listen(context.Background())
	})

	assert.Equal(t, "iwconfig wlan0 mode Managed", tr.events[len(tr.events)-1])
}
