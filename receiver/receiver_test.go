package receiver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper writes an executable shell script standing in for the receiver.
func helper(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "receive_wifi.sh")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755)
	require.NoError(t, err)

	return path
}

func TestReceive(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    *Credentials
		wantErr error
	}{
		{
			name:   "credentials",
			script: `echo "MyNet:secret123"`,
			want:   &Credentials{Name: "MyNet", Passphrase: "secret123"},
		},
		{
			name:   "empty output",
			script: `exit 0`,
		},
		{
			name:   "whitespace only",
			script: `echo`,
		},
		{
			name:    "no colon",
			script:  `echo "garbage"`,
			wantErr: ErrMalformed,
		},
		{
			name:   "non-zero exit still parsed",
			script: `echo "Home:pw1"; exit 2`,
			want:   &Credentials{Name: "Home", Passphrase: "pw1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&Config{Path: helper(t, tt.script)})

			got, err := r.Receive(context.Background(), "wlan0", 5*time.Second)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReceivePassesInterface(t *testing.T) {
	r := New(&Config{Path: helper(t, `echo "net-$1:pw"`)})

	got, err := r.Receive(context.Background(), "wlan7", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "net-wlan7", got.Name)
}

func TestReceiveWithInterpreter(t *testing.T) {
	script := filepath.Join(t.TempDir(), "receive.sh")
	require.NoError(t, os.WriteFile(script, []byte(`echo "Cafe:latte"`), 0644))

	r := New(&Config{Path: script, Interpreter: "/bin/sh"})

	got, err := r.Receive(context.Background(), "wlan0", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, &Credentials{Name: "Cafe", Passphrase: "latte"}, got)
}

func TestReceiveTimeout(t *testing.T) {
	r := New(&Config{Path: helper(t, `sleep 10; echo "Late:pw"`), KillOnTimeout: true})

	start := time.Now()
	got, err := r.Receive(context.Background(), "wlan0", 200*time.Millisecond)
	elapsed := time.Since(start)

	assert.Nil(t, got)
	assert.Equal(t, ErrTimeout, err)
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestReceiveTimeoutDetaches(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "finished")
	r := New(&Config{Path: helper(t, `sleep 1; touch `+marker)})

	start := time.Now()
	_, err := r.Receive(context.Background(), "wlan0", 100*time.Millisecond)
	assert.Equal(t, ErrTimeout, err)
	assert.Less(t, time.Since(start), time.Second)

	// the helper keeps running after the wait was abandoned
	assert.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}

func TestReceiveMissingHelper(t *testing.T) {
	r := New(&Config{Path: filepath.Join(t.TempDir(), "missing")})

	got, err := r.Receive(context.Background(), "wlan0", time.Second)
	assert.Nil(t, got)
	assert.Error(t, err)
	assert.NotEqual(t, ErrTimeout, err)
}

func TestParseCredentials(t *testing.T) {
	got, err := ParseCredentials("  MyNet:secret123\n")
	require.NoError(t, err)
	assert.Equal(t, &Credentials{Name: "MyNet", Passphrase: "secret123"}, got)

	got, err = ParseCredentials("MyNet:pass:with:colons")
	require.NoError(t, err)
	assert.Equal(t, "MyNet", got.Name)
	assert.Equal(t, "pass:with:colons", got.Passphrase)

	_, err = ParseCredentials(":nopass")
	assert.Equal(t, ErrMalformed, err)

	_, err = ParseCredentials("a:b\nc:d")
	assert.Equal(t, ErrMalformed, err)
}

func TestCredentialsStringMasksPassphrase(t *testing.T) {
	c := &Credentials{Name: "Home", Passphrase: "pw1"}
	assert.Equal(t, "Home:***", c.String())
}
