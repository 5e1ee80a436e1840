// Command t38gwd is a standalone T.38 gateway process: it wires a
// GatewayState to live line hardware and an audio device, announces
// itself on the local network, and appends one call-detail record per
// run. The DSP modem kernels (V.17/V.27ter/V.29/V.21 demod+mod) and the
// T.38/UDPTL wire transport are this command's own integration point —
// out of scope for the core package (see internal/gateway) — so this
// binary wires only the silence handler it can implement directly and a
// logging transport stub; a production deployment supplies real
// implementations of gateway.ModemSet and t38core.Transport in their
// place.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/pstn-t38/gateway/internal/audioio"
	"github.com/pstn-t38/gateway/internal/cdr"
	"github.com/pstn-t38/gateway/internal/discovery"
	"github.com/pstn-t38/gateway/internal/gateway"
	"github.com/pstn-t38/gateway/internal/lineiface"
	"github.com/pstn-t38/gateway/internal/modem"
	"github.com/pstn-t38/gateway/internal/t38core"
)

func main() {
	configFile := pflag.StringP("config-file", "c", "t38gwd.yaml", "Gateway configuration file.")
	hookPin := pflag.String("hook-pin", "", "GPIO pin name driving the hook relay; empty disables GPIO line control.")
	ringPin := pflag.String("ring-pin", "", "GPIO pin name reading ring-detect; empty disables GPIO line control.")
	daaDevice := pflag.String("daa-device", "", "Serial device for a DAA board's modem control lines, used instead of --hook-pin/--ring-pin.")
	cdrDir := pflag.StringP("cdr-dir", "r", ".", "Directory for daily call-detail-record files.")
	serviceName := pflag.String("service-name", "", "DNS-SD name to advertise; empty disables discovery.")
	servicePort := pflag.Int("service-port", 0, "Port to advertise with --service-name.")
	framesPerBuffer := pflag.Int("frames-per-buffer", 160, "Audio samples per Rx/Tx round (20ms at 8kHz by default).")
	verbose := pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	help := pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - T.38 fax gateway daemon.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
	slog.SetDefault(logger)

	cfg := gateway.DefaultConfig()
	if data, err := os.ReadFile(*configFile); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			slog.Error("failed to parse configuration", "file", *configFile, "error", err)
			os.Exit(1)
		}
	} else if !os.IsNotExist(err) {
		slog.Error("failed to read configuration", "file", *configFile, "error", err)
		os.Exit(1)
	}

	if err := wireLine(*hookPin, *ringPin, *daaDevice); err != nil {
		slog.Warn("line interface unavailable, proceeding without hook/ring control", "error", err)
	}

	var announcer *discovery.Announcer
	if *serviceName != "" {
		a, err := discovery.Announce(*serviceName, *servicePort)
		if err != nil {
			slog.Warn("discovery announcement failed", "error", err)
		} else {
			announcer = a
			defer announcer.Close()
		}
	}

	log, err := cdr.Open(*cdrDir, "%Y%m%d.cdr")
	if err != nil {
		slog.Error("failed to open call-detail log", "error", err)
		os.Exit(1)
	}
	defer log.Close()

	modems := gateway.ModemSet{Silence: modem.NewSilence()}
	transport := loggingTransport{}
	observer := func(frame []byte, fromModemSide bool) {
		slog.Debug("frame", "bytes", len(frame), "from_modem", fromModemSide)
	}

	g, err := gateway.New(cfg, transport, modems, observer)
	if err != nil {
		slog.Error("failed to construct gateway", "error", err)
		os.Exit(1)
	}

	stream, err := audioio.Open(*framesPerBuffer)
	if err != nil {
		slog.Error("failed to open audio stream", "error", err)
		os.Exit(1)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		slog.Error("failed to start audio stream", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	slog.Info("gateway running", "config_file", *configFile)
	for {
		select {
		case <-sig:
			stats := g.Stats()
			log.Write(cdr.Record{
				Start:          start,
				Duration:       time.Since(start),
				PagesConfirmed: stats.PagesConfirmed,
				Result:         "interrupted",
			})
			slog.Info("shutting down", "pages_confirmed", stats.PagesConfirmed)
			return
		default:
			if err := stream.ReadWrite(func(s []int16) { g.Rx(s) }, g.Tx); err != nil {
				slog.Error("audio I/O error", "error", err)
				return
			}
		}
	}
}

func wireLine(hookPin, ringPin, daaDevice string) error {
	switch {
	case daaDevice != "":
		daa, err := lineiface.OpenDAA(daaDevice)
		if err != nil {
			return err
		}
		_ = daa
		return nil
	case hookPin != "" && ringPin != "":
		if err := lineiface.Init(); err != nil {
			return err
		}
		_, err := lineiface.OpenHookRelay(hookPin, ringPin)
		return err
	default:
		return fmt.Errorf("no line interface configured")
	}
}

// loggingTransport is the t38core.Transport stand-in this command ships
// with: it logs outbound IFP fields instead of encoding and sending them
// over UDPTL, since the wire transport is a deployment-specific
// integration point rather than part of this module's scope.
type loggingTransport struct{}

func (loggingTransport) SendIndicator(kind t38core.IndicatorKind, txCount int) {
	slog.Debug("tx indicator", "kind", kind, "tx_count", txCount)
}

func (loggingTransport) SendData(dataType t38core.DataType, field t38core.FieldType, payload []byte, txCount int) {
	slog.Debug("tx data", "data_type", dataType, "field", field, "bytes", len(payload), "tx_count", txCount)
}
