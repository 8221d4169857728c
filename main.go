package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/wificonnect/api"
	"github.com/the-lightning-land/wificonnect/connectivity"
	"github.com/the-lightning-land/wificonnect/coordinator"
	"github.com/the-lightning-land/wificonnect/listener"
	"github.com/the-lightning-land/wificonnect/provision"
	"github.com/the-lightning-land/wificonnect/radio"
	"github.com/the-lightning-land/wificonnect/receiver"
	"github.com/the-lightning-land/wificonnect/service"
	"github.com/the-lightning-land/wificonnect/wifi"
	"github.com/the-lightning-land/wificonnect/wifidb"
	"golang.org/x/sys/unix"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// Date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// mockNetworks turns ssid:encryption pairs into networks for the mock backend.
func mockNetworks(pairs []string) ([]wifi.Network, error) {
	var networks []wifi.Network

	for _, pair := range pairs {
		ssid, encryption, ok := strings.Cut(pair, ":")
		if !ok || ssid == "" {
			return nil, errors.Errorf("Invalid mock network %q, expected ssid:encryption", pair)
		}

		networks = append(networks, wifi.Network{Ssid: ssid, Encryption: encryption})
	}

	return networks, nil
}

// wificonnectdMain is the true entry point for wificonnectd. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func wificonnectdMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// Load CLI configuration and defaults
	cfg, err := loadConfig(os.Args[1:])
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	iface := cfg.Args.Interface

	// wificonnect.db keeps the last network the sensor was told to join
	wifiDB, err := wifidb.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open wificonnect.db: %v", err)
	}

	log.Infof("Opened wificonnect.db")

	defer func() {
		err := wifiDB.Close()
		if err != nil {
			log.Errorf("Could not close wificonnect.db: %v", err)
		} else {
			log.Info("Closed wificonnect.db.")
		}
	}()

	// The network backend, which every other component asks about the interface
	var control wifi.Control

	switch cfg.Net {
	case "wpa":
		wpaControl := wifi.NewWpaControl(&wifi.WpaConfig{
			Logger: log.New().WithField("system", "wpa"),
		})

		err := wpaControl.Start()
		if err != nil {
			return errors.Errorf("Could not start wpa_supplicant control: %v", err)
		}

		defer func() {
			err := wpaControl.Stop()
			if err != nil {
				log.Errorf("Could not properly stop wpa_supplicant control: %v", err)
			} else {
				log.Info("Stopped wpa_supplicant control.")
			}
		}()

		control = wpaControl

		log.Info("Created wpa_supplicant network control.")
	case "mock":
		networks, err := mockNetworks(cfg.Mock.Networks)
		if err != nil {
			return err
		}

		control = wifi.NewMockControl(net.ParseIP(cfg.Mock.Ip), networks...)

		log.Infof("Created a mock network control handing out %v.", cfg.Mock.Ip)
	default:
		return errors.Errorf("Unknown networking type %v", cfg.Net)
	}

	persistentControl := wifi.NewPersistentControl(&wifi.PersistentConfig{
		Control: control,
		DB:      wifiDB,
		Logger:  log.New().WithField("system", "wifi"),
	})

	ip, err := persistentControl.Restore(context.Background(), iface)
	if err != nil {
		log.Errorf("Could not restore saved network: %v", err)
	} else if ip != nil {
		log.Infof("Connected %v to saved network with address %v", iface, ip)
	}

	// The service depending on the connection
	var restarter service.Restarter

	switch cfg.Service {
	case "none":
		restarter = service.NewNoopRestarter(log.New().WithField("system", "service"))

		log.Info("Created noop service restarter.")
	case "systemd":
		restarter = service.NewSystemdRestarter(&service.SystemdConfig{
			Unit:   cfg.Systemd.Unit,
			Logger: log.New().WithField("system", "service"),
		})

		log.Infof("Created systemd restarter for %v.", cfg.Systemd.Unit)
	default:
		return errors.Errorf("Unknown service type %v", cfg.Service)
	}

	notifier, err := coordinator.New(&coordinator.Config{
		Url:    cfg.Coordinator.Url,
		Logger: log.New().WithField("system", "coordinator"),
	})
	if err != nil {
		return errors.Errorf("Could not create coordinator notifier: %v", err)
	}

	credentialReceiver := receiver.New(&receiver.Config{
		Path:          cfg.Receiver.Path,
		Interpreter:   cfg.Receiver.Interpreter,
		KillOnTimeout: cfg.Receiver.KillOnTimeout,
		Logger:        log.New().WithField("system", "receiver"),
	})

	credentialListener := listener.New(&listener.Config{
		Interface: iface,
		Runner:    radio.ExecRunner{},
		Receiver:  credentialReceiver,
		Logger:    log.New().WithField("system", "listener"),
	})

	prober := connectivity.NewProber(&connectivity.Config{
		Querier: persistentControl,
		Logger:  log.New().WithField("system", "connectivity"),
	})

	// Status page of the sensor
	if cfg.Web.Listen != "" {
		a := api.New(&api.Config{
			Interface: iface,
			Control:   persistentControl,
			Restarter: restarter,
			StaticDir: cfg.Web.Static,
			StepDelay: api.DefaultStepDelay,
			Log:       log.New().WithField("system", "api"),
		})

		l, err := net.Listen("tcp", cfg.Web.Listen)
		if err != nil {
			return errors.Errorf("Could not listen on %v: %v", cfg.Web.Listen, err)
		}

		log.Infof("Serving status page on %v", l.Addr())

		go func() {
			err := a.Serve(l)
			if err != nil {
				log.Errorf("Status page stopped: %v", err)
			}
		}()

		defer func() {
			err := l.Close()
			if err != nil {
				log.Errorf("Could not close status page listener: %v", err)
			}
		}()
	}

	// central loop keeping the interface connected
	provisioner := provision.New(&provision.Config{
		Interface: iface,
		Control:   persistentControl,
		Prober:    prober,
		Listener:  credentialListener,
		Notifier:  notifier,
		Restarter: restarter,
		Logger:    log.New().WithField("system", "provision"),
	})

	log.Infof("Created provisioner for %v.", iface)

	// Handle interrupt signals correctly
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		log.Info("Received an interrupt, stopping provisioner...")
	}()

	// blocks until the provisioner is stopped
	err = provisioner.Run(ctx)
	if err != nil {
		return errors.Errorf("Failed running provisioner: %v", err)
	}

	// finish with no error
	return nil
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := wificonnectdMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running wificonnectd.")
		}
		os.Exit(1)
	}
}
