package api

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/the-lightning-land/wificonnect/wifi"
	"golang.org/x/time/rate"
)

const (
	// DefaultStepDelay paces the progress messages of a network update.
	DefaultStepDelay = 500 * time.Millisecond

	indexFile    = "sensor-index.html"
	scanInterval = 5 * time.Second
)

// Restarter restarts the service that depends on the network connection.
type Restarter interface {
	Restart(ctx context.Context) bool
}

type Config struct {
	Interface string
	Control   wifi.Control
	Restarter Restarter
	StaticDir string
	StepDelay time.Duration
	Log       Logger
}

// Api serves the status and configuration page of the sensor and pushes
// WiFi events to it over a websocket.
type Api struct {
	iface       string
	control     wifi.Control
	restarter   Restarter
	staticDir   string
	stepDelay   time.Duration
	router      *mux.Router
	hub         *hub
	scanLimiter *rate.Limiter
	scanMtx     sync.Mutex
	lastScan    [][2]string
	updateMtx   sync.Mutex
	log         Logger
}

func New(config *Config) *Api {
	api := &Api{
		iface:       config.Interface,
		control:     config.Control,
		restarter:   config.Restarter,
		staticDir:   config.StaticDir,
		stepDelay:   config.StepDelay,
		router:      mux.NewRouter(),
		hub:         newHub(),
		scanLimiter: rate.NewLimiter(rate.Every(scanInterval), 1),
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	api.router.Handle("/", api.handleIndex()).Methods(http.MethodGet)
	api.router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(api.staticDir))),
	).Methods(http.MethodGet)
	api.router.Handle("/ws", api.handleSocket()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/status", api.handleGetStatus()).Methods(http.MethodGet)

	return api
}

func (a *Api) Handler() http.Handler {
	return a.router
}

func (a *Api) Serve(l net.Listener) error {
	err := http.Serve(l, a.router)
	if err != nil {
		return errors.Errorf("Unable to serve api: %v", err)
	}

	return nil
}

func (a *Api) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		http.ServeFile(w, r, filepath.Join(a.staticDir, indexFile))
	}
}

func (a *Api) pause() {
	if a.stepDelay > 0 {
		time.Sleep(a.stepDelay)
	}
}
