//go:build linux

// Command inowatch streams inotify events for a set of paths to the log.
package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/hawkingrei/inostream/inotify"
	"github.com/hawkingrei/inostream/tail"
)

type CLI struct {
	Paths         []string      `arg:"" type:"existingpath" help:"Files or directories to watch. Directories are not watched recursively."`
	Mask          string        `default:"create,delete,modify,move,close_write,delete_self,move_self" env:"INOWATCH_MASK" help:"Events to watch for, comma separated inotify(7) flag names."`
	BufferSize    int           `default:"2048" env:"INOWATCH_BUFFER_SIZE" help:"Size in bytes of the kernel read buffer."`
	Mode          string        `enum:"blocking,poll" default:"blocking" env:"INOWATCH_MODE" help:"Read events with blocking reads or by polling (${enum})."`
	PollInterval  time.Duration `default:"100ms" env:"INOWATCH_POLL_INTERVAL" help:"Polling interval in poll mode."`
	MetricsListen string        `env:"INOWATCH_METRICS_LISTEN" placeholder:"ADDR" help:"Serve Prometheus metrics on this address."`
	LogLevel      string        `enum:"trace,debug,info,warn,error" default:"info" env:"INOWATCH_LOG_LEVEL" help:"Log level (${enum})."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("inowatch"),
		kong.Description("Stream inotify events for a set of paths."),
	)
	ctx.FatalIfErrorf(cli.Run())
}

func (c *CLI) Run() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	mask, err := inotify.ParseConfigMask(c.Mask)
	if err != nil {
		return err
	}
	channel, err := inotify.Open(inotify.WithBufferSize(c.BufferSize))
	if err != nil {
		return err
	}
	defer channel.Close()

	for _, path := range c.Paths {
		w, err := channel.AddWatch(path, mask)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"path": path, "watch": w, "mask": mask.String()}).Info("watching")
	}

	if c.MetricsListen != "" {
		go serveMetrics(c.MetricsListen)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	if c.Mode == "poll" {
		tailer := tail.New(channel, c.PollInterval, tail.LogEvent)
		go func() {
			<-sigs
			tailer.Stop()
		}()
		return tailer.Start()
	}

	go func() {
		<-sigs
		// Closing the channel is what releases the blocked ReadEvent below.
		channel.Close()
	}()
	for {
		event, err := channel.ReadEvent()
		if errors.Is(err, inotify.ErrChannelClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		tail.LogEvent(event)
	}
}

func serveMetrics(addr string) {
	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	logrus.WithField("addr", addr).Info("serving metrics")
	if err := http.ListenAndServe(addr, router); err != nil {
		logrus.WithError(err).Error("Metrics server stopped")
	}
}
