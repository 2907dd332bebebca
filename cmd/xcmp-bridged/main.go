/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// xcmp-bridged is a long-running daemon that holds a single authenticated
// XNL session open to a radio, keeps it alive with periodic pings, and
// exposes per-opcode request count, latency and timeout metrics over
// Prometheus. It is meant to run
// under systemd, reporting readiness and feeding the watchdog.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"

	"github.com/xcmpnet/xcmp/client"
	"github.com/xcmpnet/xcmp/metrics"
)

func main() {
	var (
		configPath    string
		pingInterval  time.Duration
		metricsPort   int
		logLevel      string
	)

	flag.StringVar(&configPath, "config", "/etc/xcmp-bridged.yaml", "path to the client config file")
	flag.DurationVar(&pingInterval, "ping-interval", 30*time.Second, "interval between keepalive pings")
	flag.IntVar(&metricsPort, "metrics-port", 9469, "port to serve /metrics on")
	flag.StringVar(&logLevel, "loglevel", "info", "log level: debug, info, warning, error")
	flag.Parse()

	switch logLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Fatalf("xcmp-bridged: unrecognized log level %q", logLevel)
	}

	cfg, err := client.ReadConfig(configPath)
	if err != nil {
		log.Fatalf("xcmp-bridged: reading config: %v", err)
	}

	c, err := cfg.Build()
	if err != nil {
		log.Fatalf("xcmp-bridged: building client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		log.Fatalf("xcmp-bridged: connecting: %v", err)
	}
	defer c.Disconnect()

	collector := metrics.NewCollector("xcmp_bridged")
	c.WithMetrics(collector)
	go func() {
		if err := collector.Serve(metricsPort); err != nil {
			log.WithError(err).Error("xcmp-bridged: metrics server exited")
		}
	}()

	notifyReady()
	go watchdogLoop(ctx)
	go keepaliveLoop(ctx, c, pingInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("xcmp-bridged: shutting down")
}

// notifyReady tells systemd the daemon has finished startup.
func notifyReady() {
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if !supported && err != nil {
		log.WithError(err).Warning("xcmp-bridged: sd_notify ready failed")
	} else if !supported {
		log.Debug("xcmp-bridged: sd_notify not supported")
	}
}

// watchdogLoop pings systemd's watchdog at half the configured interval,
// for as long as one is configured.
func watchdogLoop(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				log.WithError(err).Warning("xcmp-bridged: sd_notify watchdog failed")
			}
		}
	}
}

// keepaliveLoop pings the radio periodically so an idle session doesn't
// time out at the peer.
func keepaliveLoop(ctx context.Context, c *client.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Ping(); err != nil {
				log.WithError(err).Warning("xcmp-bridged: keepalive ping failed")
			}
		}
	}
}
