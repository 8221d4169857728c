package wifidb

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

const (
	dbFilename       = "wificonnect.db"
	dbFilePermission = 0600
)

var (
	profilesBucket = []byte("profiles")
)

// DB persists the network profile of each wireless interface.
type DB struct {
	*bbolt.DB
	dbPath string
}

// Open opens or creates wificonnect.db in dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, errors.Errorf("Could not create data directory: %v", err)
	}

	path := filepath.Join(dbPath, dbFilename)

	bdb, err := bbolt.Open(path, dbFilePermission, &bbolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, errors.Errorf("Could not open %v: %v", path, err)
	}

	return &DB{
		DB:     bdb,
		dbPath: dbPath,
	}, nil
}

// Profile is what is needed to rejoin a network.
type Profile struct {
	Ssid       string    `json:"ssid"`
	Encryption string    `json:"encryption"`
	Psk        string    `json:"psk"`
	Updated    time.Time `json:"updated"`
}

// SetProfile stores the profile of an interface. A nil profile removes it.
func (db *DB) SetProfile(iface string, profile *Profile) error {
	if profile == nil {
		return db.delete(profilesBucket, []byte(iface))
	}

	return db.setJSON(profilesBucket, []byte(iface), profile)
}

// GetProfile returns the stored profile of an interface, nil if there is none.
func (db *DB) GetProfile(iface string) (*Profile, error) {
	profile := &Profile{}

	found, err := db.getJSON(profilesBucket, []byte(iface), profile)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return profile, nil
}
