package main

import (
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/the-lightning-land/wificonnect/coordinator"
	"github.com/the-lightning-land/wificonnect/receiver"
	"github.com/the-lightning-land/wificonnect/service"
)

const (
	defaultDataDir        = "/var/lib/wificonnectd"
	defaultConfigFilename = "wificonnectd.conf"
	defaultNet            = "wpa"
	defaultService        = "systemd"
	defaultWebListen      = ":3210"
	defaultWebStatic      = "static"
	defaultMockIp         = "192.168.27.2"
)

type serviceConfig struct {
	Unit string `long:"unit" description:"The systemd unit restarted after connecting"`
}

type coordinatorConfig struct {
	Url string `long:"url" description:"Where the sensor announces itself after connecting"`
}

type receiverConfig struct {
	Path          string `long:"path" description:"Helper program receiving credentials while in monitor mode"`
	Interpreter   string `long:"interpreter" description:"Interpreter running the helper, empty to execute it directly"`
	KillOnTimeout bool   `long:"killontimeout" description:"Kill the helper when it does not deliver credentials in time"`
}

type webConfig struct {
	Listen string `long:"listen" description:"Address of the status page, empty to disable it"`
	Static string `long:"static" description:"Directory holding the status page assets"`
}

type mockConfig struct {
	Ip       string   `long:"ip" description:"Address handed out by the mock network on connect"`
	Networks []string `long:"network" description:"Network visible to the mock network as ssid:encryption, may be repeated"`
}

type config struct {
	ShowVersion bool   `short:"v" long:"version" description:"Display version information and exit"`
	Debug       bool   `long:"debug" description:"Start in debug mode"`
	ConfigFile  string `long:"configfile" description:"Path to configuration file"`
	DataDir     string `long:"datadir" description:"The directory to store the saved network in"`
	Net         string `long:"net" description:"The networking backend" choice:"wpa" choice:"mock"`
	Service     string `long:"service" description:"How the dependent service is restarted" choice:"systemd" choice:"none"`

	Systemd     serviceConfig     `group:"Service" namespace:"service"`
	Coordinator coordinatorConfig `group:"Coordinator" namespace:"coordinator"`
	Receiver    receiverConfig    `group:"Receiver" namespace:"receiver"`
	Web         webConfig         `group:"Web" namespace:"web"`
	Mock        mockConfig        `group:"Mock" namespace:"mock"`

	Args struct {
		Interface string `positional-arg-name:"interface" description:"The wireless interface to provision"`
	} `positional-args:"yes"`
}

func defaultConfig() config {
	return config{
		DataDir:    defaultDataDir,
		ConfigFile: filepath.Join(defaultDataDir, defaultConfigFilename),
		Net:        defaultNet,
		Service:    defaultService,
		Systemd: serviceConfig{
			Unit: service.DefaultUnit,
		},
		Coordinator: coordinatorConfig{
			Url: coordinator.DefaultUrl,
		},
		Receiver: receiverConfig{
			Path:        receiver.DefaultPath,
			Interpreter: receiver.DefaultInterpreter,
		},
		Web: webConfig{
			Listen: defaultWebListen,
			Static: defaultWebStatic,
		},
		Mock: mockConfig{
			Ip: defaultMockIp,
		},
	}
}

// loadConfig applies defaults, then the config file, then the command line,
// each overriding the previous one.
func loadConfig(args []string) (*config, error) {
	// Pre-parse the command line to find the config file
	preCfg := defaultConfig()
	if _, err := flags.NewParser(&preCfg, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}

	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	cfg := defaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)

	err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		// a missing config file is only fatal when it was asked for explicitly
		if _, ok := err.(*os.PathError); !ok || preCfg.ConfigFile != defaultConfig().ConfigFile {
			return nil, errors.Errorf("Could not read config file %v: %v", preCfg.ConfigFile, err)
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.Args.Interface == "" {
		return nil, errors.New("Interface name must be provided")
	}

	return &cfg, nil
}
