package wpa

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func security(keyMgmt ...string) dbus.Variant {
	return dbus.MakeVariant(map[string]dbus.Variant{
		"KeyMgmt": dbus.MakeVariant(keyMgmt),
	})
}

func TestEncryption(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]dbus.Variant
		want  string
	}{
		{
			name: "rsn",
			props: map[string]dbus.Variant{
				"RSN":     security("wpa-psk"),
				"WPA":     security("wpa-psk"),
				"Privacy": dbus.MakeVariant(true),
			},
			want: "wpa2",
		},
		{
			name: "wpa only",
			props: map[string]dbus.Variant{
				"RSN":     security(),
				"WPA":     security("wpa-psk"),
				"Privacy": dbus.MakeVariant(true),
			},
			want: "wpa",
		},
		{
			name: "wep",
			props: map[string]dbus.Variant{
				"RSN":     security(),
				"WPA":     security(),
				"Privacy": dbus.MakeVariant(true),
			},
			want: "wep",
		},
		{
			name: "open",
			props: map[string]dbus.Variant{
				"Privacy": dbus.MakeVariant(false),
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encryption(tt.props))
		})
	}
}
