package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/murmurlabs/murmur-speech/internal/bus"
	"github.com/murmurlabs/murmur-speech/internal/capability"
	"github.com/murmurlabs/murmur-speech/internal/config"
	"github.com/murmurlabs/murmur-speech/internal/natsserver"
	"github.com/murmurlabs/murmur-speech/internal/speech"
	"github.com/murmurlabs/murmur-speech/internal/synthesis"
	"github.com/murmurlabs/murmur-speech/internal/utterancelog"
	"go.opentelemetry.io/otel"
)

// Runtime wires the bus, synthesizer, speech service, and telemetry into
// one process and manages their lifecycle.
type Runtime struct {
	cfg           config.Config
	logger        *slog.Logger
	httpServer    *http.Server
	metricsServer *http.Server
	tracerClose   func(context.Context) error
	ready         atomic.Bool
	health        []func() bool
	wg            sync.WaitGroup
}

func New(cfg config.Config, logger *slog.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		logger: logger,
	}
}

func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, metricHandler, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	r.tracerClose = shutdownTelemetry

	embedded, err := natsserver.Start(r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to start embedded bus: %w", err)
	}
	defer embedded.Shutdown()

	busClient, err := bus.Connect(ctx, r.cfg.Bus, r.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to bus: %w", err)
	}
	defer busClient.Close()

	store, err := utterancelog.Open(ctx, r.cfg.UtteranceLog, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open utterance log: %w", err)
	}
	defer store.Close()

	synth, err := r.buildSynthesizer(ctx)
	if err != nil {
		return fmt.Errorf("failed to build synthesizer: %w", err)
	}
	defer synth.Close()

	speechService := speech.NewService(ctx, r.cfg.Speech, busClient, synth, store, r.logger)
	if err := speechService.Start(); err != nil {
		return fmt.Errorf("failed to start speech service: %w", err)
	}
	defer speechService.Close()

	announcer, err := capability.NewAnnouncer(ctx, r.cfg.Node, r.capabilities(), busClient, r.logger)
	if err != nil {
		r.logger.Warn("failed to start capability announcer", slog.String("error", err.Error()))
	} else {
		defer announcer.Close()
		r.health = append(r.health, announcer.Healthy)
	}
	r.health = append(r.health, busClient.Healthy, speechService.Healthy)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", r.handleHealth)
	mux.HandleFunc("/readyz", r.handleReady)

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	if metricHandler != nil {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metricHandler)
		r.metricsServer = &http.Server{
			Addr:              r.cfg.Telemetry.PrometheusBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := r.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				r.logger.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	r.ready.Store(true)
	r.logger.Info("runtime started",
		slog.String("addr", addr),
		slog.String("synthesis_mode", r.cfg.Synthesis.Mode),
		slog.String("voice", r.cfg.Synthesis.Voice))

	<-ctx.Done()
	r.ready.Store(false)
	r.logger.Info("runtime stopping")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Error("http shutdown error", slog.String("error", err.Error()))
	}
	if r.metricsServer != nil {
		if err := r.metricsServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("metrics shutdown error", slog.String("error", err.Error()))
		}
	}
	r.wg.Wait()

	if r.tracerClose != nil {
		if err := r.tracerClose(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}

	return nil
}

func (r *Runtime) buildSynthesizer(ctx context.Context) (synthesis.Synthesizer, error) {
	meter := otel.Meter("github.com/murmurlabs/murmur-speech/synthesis")
	metrics, err := synthesis.NewMetrics(meter)
	if err != nil {
		r.logger.Warn("failed to create synthesis metrics", slog.String("error", err.Error()))
	}

	switch r.cfg.Synthesis.Mode {
	case "google":
		return synthesis.NewGoogleSynthesizer(ctx, r.cfg.Synthesis, metrics, r.logger)
	case "exec":
		return synthesis.NewExecSynthesizer(r.cfg.Synthesis, metrics, r.logger)
	case "mock":
		return synthesis.NewMockSynthesizer(synthesis.SettingsFromConfig(r.cfg.Synthesis)), nil
	}
	return nil, fmt.Errorf("unknown synthesis mode %q", r.cfg.Synthesis.Mode)
}

func (r *Runtime) capabilities() []capability.Capability {
	return []capability.Capability{
		{
			Name: "speech.synthesize",
			Attributes: map[string]string{
				"voice":       r.cfg.Synthesis.Voice,
				"sample_rate": strconv.Itoa(r.cfg.Synthesis.SampleRate),
				"mode":        r.cfg.Synthesis.Mode,
			},
		},
	}
}

func (r *Runtime) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (r *Runtime) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := r.ready.Load()
	for _, healthy := range r.health {
		ready = ready && healthy()
	}
	if ready {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}
