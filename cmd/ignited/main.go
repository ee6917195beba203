// Command ignited is the server shell: it wires a configuration, an
// engine, and a TCP server together and runs until SHUTDOWN or a signal.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/emberkv/ignite/internal/engine"
	"github.com/emberkv/ignite/internal/server"
	"github.com/emberkv/ignite/pkg/errors"
	"github.com/emberkv/ignite/pkg/logger"
	"github.com/emberkv/ignite/pkg/options"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath = pflag.StringP("config", "c", "", "path to a JWCC configuration file")
		listenHost = pflag.String("listen-host", "", "interface to bind (overrides config file)")
		listenPort = pflag.Int("listen-port", 0, "port to bind (overrides config file)")
		dataFile   = pflag.String("data-file", "", "path to the data file (overrides config file)")
		threshold  = pflag.Float64("compaction-threshold", 0, "deleted/data ratio that triggers compaction")
		debug      = pflag.Bool("debug", false, "use human-readable development logging")
	)
	pflag.Parse()

	log := logger.New("ignited", *debug)
	defer log.Sync()

	o := options.NewDefaultOptions()
	if *configPath != "" {
		fromFile, err := options.LoadFile(*configPath)
		if err != nil {
			if ve, ok := errors.AsValidationError(err); ok {
				log.Errorw("failed to load configuration file",
					"path", *configPath, "field", ve.Field(), "rule", ve.Rule(), "error", err)
				return 1
			}
			log.Errorw("failed to load configuration file", "path", *configPath, "error", err)
			return 1
		}
		o = fromFile
	}

	for _, apply := range []options.OptionFunc{
		options.WithListenHost(*listenHost),
		options.WithListenPort(*listenPort),
		options.WithDataFile(*dataFile),
		options.WithCompactionThreshold(*threshold),
	} {
		apply(&o)
	}

	eng, err := engine.Open(&engine.Config{
		Path:                o.DataFile,
		CompactionThreshold: o.CompactionThreshold,
		Logger:              log,
	})
	if err != nil {
		if se, ok := errors.AsStorageError(err); ok {
			log.Errorw("failed to open engine",
				"path", se.Path(), "code", errors.GetErrorCode(err), "error", err)
			return 1
		}
		log.Errorw("failed to open engine", "error", err)
		return 1
	}
	defer eng.Close()

	addr := net.JoinHostPort(o.ListenHost, fmt.Sprintf("%d", o.ListenPort))
	srv, err := server.Listen(&server.Config{Address: addr, Store: eng, Logger: log})
	if err != nil {
		log.Errorw("failed to bind listener", "address", addr, "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Infow("ignited listening", "address", srv.Addr().String(), "dataFile", o.DataFile)

	if err := srv.Serve(ctx); err != nil {
		log.Errorw("server stopped with an error", "error", err)
		return 1
	}

	log.Infow("ignited shut down cleanly")
	return 0
}
