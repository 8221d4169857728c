package coordinator

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-errors/errors"
	"golang.org/x/net/context/ctxhttp"
)

const DefaultUrl = "http://gateway.local:3210/ping"

type Config struct {
	Url      string
	Hostname string
	Client   *http.Client
	Logger   Logger
}

// Notifier tells the coordinator which sensor just came online.
type Notifier struct {
	url      string
	hostname string
	client   *http.Client
	log      Logger
}

func New(config *Config) (*Notifier, error) {
	n := &Notifier{
		url:      config.Url,
		hostname: config.Hostname,
		client:   config.Client,
	}

	if config.Logger != nil {
		n.log = config.Logger
	} else {
		n.log = noopLogger{}
	}

	if n.url == "" {
		n.url = DefaultUrl
	}

	if n.client == nil {
		n.client = &http.Client{Timeout: 10 * time.Second}
	}

	if n.hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, errors.Errorf("could not get host name: %v", err)
		}

		n.hostname = hostname
	}

	n.log.Infof("Hostname: %v", n.hostname)

	return n, nil
}

// Notify posts the host name to the coordinator. The response is drained
// but not interpreted.
func (n *Notifier) Notify(ctx context.Context) error {
	n.log.Debugf("Pinging %v", n.url)

	res, err := ctxhttp.PostForm(ctx, n.client, n.url, url.Values{
		"sensor": {n.hostname},
	})
	if err != nil {
		return errors.Errorf("could not ping %v: %v", n.url, err)
	}

	defer res.Body.Close()

	_, _ = io.Copy(io.Discard, res.Body)

	n.log.Debugf("Coordinator answered %v", res.Status)

	return nil
}
