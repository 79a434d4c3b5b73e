// cmd/dtm/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/kvollmer/dtm/internal/carbon"
	"github.com/kvollmer/dtm/internal/config"
	"github.com/kvollmer/dtm/internal/dvb"
	"github.com/kvollmer/dtm/internal/meter"
	"github.com/kvollmer/dtm/internal/sampler"
	"github.com/kvollmer/dtm/internal/telemetry"
)

const appName = "dtm"

func main() {
	var (
		adapter     = kingpin.Flag("adapter", "Use /dev/dvb/adapterN devices.").Default("0").OverrideDefaultFromEnvar("DTM_ADAPTER").Int()
		tunerIdx    = kingpin.Flag("tuner", "Use the adapter's frontendN/demuxN/dvrN devices.").Default("0").OverrideDefaultFromEnvar("DTM_TUNER").Int()
		carbonAddr  = kingpin.Flag("carbon", "Address of the carbon sink, host or host:port.").Default("localhost:2003").OverrideDefaultFromEnvar("DTM_CARBON").String()
		frequencies = kingpin.Flag("frequencies", "Comma-separated list of 'MHz' or 'MHz:modulation' pairs.").Default("546:256").OverrideDefaultFromEnvar("DTM_FREQUENCIES").String()
		prefix      = kingpin.Flag("prefix", "Carbon prefix/tree location.").Default("docsis").OverrideDefaultFromEnvar("DTM_PREFIX").String()
		step        = kingpin.Flag("step", "Metrics backend resolution in seconds.").Default("60").OverrideDefaultFromEnvar("DTM_STEP").Int()
		debug       = kingpin.Flag("debug", "Enable debug logging.").OverrideDefaultFromEnvar("DTM_DEBUG").Bool()
		configFile  = kingpin.Flag("config.file", "Optional YAML configuration file; its values override flags.").String()
		listenAddr  = kingpin.Flag("web.listen-address", "Address for Prometheus self-metrics; empty disables the listener.").Default("").OverrideDefaultFromEnvar("DTM_WEB_LISTEN").String()
	)
	kingpin.Version(version.Print(appName))
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	cfg := config.Default()
	cfg.Adapter = *adapter
	cfg.Tuner = *tunerIdx
	cfg.Carbon = *carbonAddr
	cfg.Frequencies = *frequencies
	cfg.Prefix = *prefix
	cfg.StepSeconds = *step
	cfg.Debug = *debug
	cfg.ListenAddress = *listenAddr
	if *configFile != "" {
		if err := config.ApplyFile(&cfg, *configFile); err != nil {
			kingpin.Fatalf("%v", err)
		}
	}
	if err := config.Normalize(&cfg); err != nil {
		kingpin.Fatalf("%v", err)
	}
	if err := config.Validate(&cfg); err != nil {
		kingpin.Fatalf("%v", err)
	}

	log := buildLogger(cfg.Debug)
	defer log.Sync()

	log.Info("starting", zap.String("app", appName), zap.String("version", version.Info()))
	log.Debug("configuration",
		zap.Int("adapter", cfg.Adapter),
		zap.Int("tuner", cfg.Tuner),
		zap.String("carbon", cfg.Carbon),
		zap.String("prefix", cfg.Prefix),
		zap.Int("step_seconds", cfg.StepSeconds),
		zap.Int("channels", len(cfg.Channels)))

	if err := run(cfg, log); err != nil {
		log.Fatal("aborting", zap.Error(err))
	}
}

// run owns the device and socket lifetimes: everything acquired here is
// released on every exit path, fatal or not.
func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.New(prometheus.DefaultRegisterer)
	prometheus.MustRegister(version.NewCollector(appName))
	if cfg.ListenAddress != "" {
		go serveMetrics(cfg.ListenAddress, log)
	}

	dev, err := dvb.Open(cfg.Adapter, cfg.Tuner, log.Named("dvb"))
	if err != nil {
		return err
	}
	defer dev.Close()

	// The demuxer cannot be used without an adequate ring buffer; this
	// failing is fatal before any tune attempt.
	if err := dev.Demux().SetBufferSize(dvb.TSBufferSize); err != nil {
		return err
	}

	collector, err := sampler.New(
		sampler.Config{BufferSize: dvb.TSBufferSize},
		dev.DVR(),
		log.Named("sampler"),
	)
	if err != nil {
		return err
	}

	sink, err := carbon.New(carbon.Config{Address: cfg.Carbon}, log.Named("carbon"))
	if err != nil {
		return err
	}
	defer sink.Close()

	channels := make([]meter.Channel, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		mod := dvb.QAM256
		if ch.Modulation == 64 {
			mod = dvb.QAM64
		}
		channels = append(channels, meter.Channel{
			FrequencyMHz: ch.FrequencyMHz,
			Modulation:   mod,
		})
	}

	m, err := meter.New(
		meter.Config{
			Prefix:   cfg.Prefix,
			Channels: channels,
			Step:     time.Duration(cfg.StepSeconds) * time.Second,
		},
		dev.Frontend(),
		dev.Demux(),
		collector,
		sink,
		metrics,
		log.Named("meter"),
	)
	if err != nil {
		return err
	}

	if err := m.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("interrupted, shutting down")
	return nil
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	log.Info("serving self-metrics", zap.String("address", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("self-metrics listener failed", zap.Error(err))
	}
}

func buildLogger(debug bool) *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	if debug {
		logConfig.Level.SetLevel(zap.DebugLevel)
	} else {
		logConfig.Level.SetLevel(zap.InfoLevel)
	}
	return zap.Must(logConfig.Build())
}
