// Command unifi-watch connects to a classic UniFi controller, prints its
// system information, and streams push events to stdout until interrupted.
//
// Configuration is a YAML file:
//
//	base_url: https://unifi.local:8443
//	username: admin
//	password: secret
//	site: default
//	insecure_skip_verify: true
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	unifi "github.com/mkraus/go-unifi-classic"
	"github.com/mkraus/go-unifi-classic/observability"
)

type config struct {
	BaseURL            string `yaml:"base_url"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	Site               string `yaml:"site"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "unifi-watch:", err)
		os.Exit(1)
	}
}

func run() error {
	path := "unifi-watch.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	var cfg config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	client, err := unifi.NewWithConfig(&unifi.Config{
		BaseURL:            cfg.BaseURL,
		Username:           cfg.Username,
		Password:           cfg.Password,
		Site:               cfg.Site,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Logger:             observability.NewZerolog(zl),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := client.SysInfo(ctx)
	if err != nil {
		return fmt.Errorf("fetching sysinfo: %w", err)
	}
	fmt.Printf("controller %s (version %s, site %s)\n", info.Name, info.Version, client.Site())

	stream, err := client.OpenEvents(ctx)
	if err != nil {
		return fmt.Errorf("opening event stream: %w", err)
	}
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-stream.Events():
			if !ok {
				return fmt.Errorf("event stream closed by controller")
			}
			fmt.Printf("%s %s\n", ev.Name, ev.Data)
		}
	}
}
