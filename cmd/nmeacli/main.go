package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"nmeacli/internal/config"
	"nmeacli/internal/ingest"
	"nmeacli/internal/nav"
	"nmeacli/internal/sim"
	"nmeacli/internal/transport"
	"nmeacli/internal/ui"
	"nmeacli/internal/web"
)

func main() {
	var configPath string
	var headless bool
	var debug bool
	pflag.StringVar(&configPath, "config", "./nmeacli.yaml", "Path to YAML config")
	pflag.BoolVar(&headless, "headless", false, "Run without the terminal view")
	pflag.BoolVar(&debug, "debug", false, "Log rejected lines")
	pflag.Parse()

	// The terminal view owns the screen; unless --debug asked for log
	// chatter, only warnings go to stderr while it is up.
	level := zerolog.InfoLevel
	switch {
	case debug:
		level = zerolog.DebugLevel
	case !headless:
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := nav.NewStore(cfg.UI.History)
	svc := ingest.New(store, cfg.Ingest.MaxFrameLen, logger)

	if cfg.Sim.Enable {
		feed := sim.NewFeed(sim.Scenario{
			CenterLatDeg: cfg.Sim.CenterLatDeg,
			CenterLonDeg: cfg.Sim.CenterLonDeg,
			AltM:         cfg.Sim.AltM,
			GroundKt:     cfg.Sim.GroundKt,
			RadiusNm:     cfg.Sim.RadiusNm,
			Period:       cfg.Sim.Period,
		}, cfg.Sim.Interval, logger)
		if cfg.Sim.UDPDest != "" {
			b, err := sim.NewBroadcaster(cfg.Sim.UDPDest)
			if err != nil {
				logger.Fatal().Err(err).Msg("sim udp init failed")
			}
			defer b.Close()
			feed.AttachUDP(b)
		}
		addr, err := feed.Start(ctx, cfg.Sim.Listen)
		if err != nil {
			logger.Fatal().Err(err).Msg("sim feed start failed")
		}
		defer feed.Close()
		logger.Info().Str("addr", addr).Msg("sim feed serving")

		// With no explicit source, consume our own feed.
		if cfg.Source.Kind == "tcp" && cfg.Source.Addr == "" {
			cfg.Source.Addr = addr
		}
	}

	var src transport.Source
	switch cfg.Source.Kind {
	case "serial":
		src = transport.SerialSource{Device: cfg.Source.Device, Baud: cfg.Source.Baud}
	default:
		src = transport.TCPSource{Addr: cfg.Source.Addr, DialTimeout: cfg.Source.DialTimeout}
	}

	go transport.RunWithReconnect(ctx, logger, src, svc.Run)

	if cfg.Web.Enable {
		go func() {
			if err := web.Serve(ctx, cfg.Web.Listen, store, logger); err != nil {
				logger.Error().Err(err).Msg("status server failed")
			}
		}()
	}

	if headless {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(cfg.UI.Refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case <-ticker.C:
			view := ui.Render(store.Current(), store.Health(), store.RecentLines(), time.Now().UTC())
			// Home the cursor and clear before each redraw.
			fmt.Print("\033[H\033[2J" + view)
		}
	}
}
