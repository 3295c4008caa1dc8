package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/murmurlabs/murmur-speech/internal/bus"
	"github.com/murmurlabs/murmur-speech/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Capability describes one thing this node can do for the rest of the
// pipeline, e.g. synthesize a voice at a sample rate.
type Capability struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type announceMessage struct {
	NodeID       string       `json:"node_id"`
	Role         string       `json:"role"`
	Capabilities []Capability `json:"capabilities"`
	Timestamp    time.Time    `json:"timestamp"`
}

type heartbeatMessage struct {
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Announcer advertises this node's synthesis capabilities on the bus and
// keeps a heartbeat going so the rest of the pipeline can track liveness.
type Announcer struct {
	cfg          config.NodeConfig
	log          *slog.Logger
	bus          *bus.Client
	capabilities []Capability
	heartbeat    *time.Ticker
	cancel       context.CancelFunc
	announced    atomic.Bool
}

func NewAnnouncer(ctx context.Context, cfg config.NodeConfig, capabilities []Capability, busClient *bus.Client, log *slog.Logger) (*Announcer, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &Announcer{
		cfg:          cfg,
		log:          log.With(slog.String("component", "capability-announcer")),
		bus:          busClient,
		capabilities: capabilities,
		cancel:       cancel,
	}

	if err := a.initMetrics(); err != nil {
		a.log.Warn("failed to initialize metrics", slog.String("error", err.Error()))
	}

	if err := a.announce(); err != nil {
		cancel()
		return nil, fmt.Errorf("announce node: %w", err)
	}

	a.heartbeat = time.NewTicker(time.Duration(cfg.HeartbeatInterval) * time.Millisecond)
	go a.runHeartbeat(ctx)

	return a, nil
}

func (a *Announcer) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.heartbeat != nil {
		a.heartbeat.Stop()
	}
}

func (a *Announcer) Healthy() bool {
	return a.announced.Load()
}

func (a *Announcer) runHeartbeat(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.heartbeat.C:
			if err := a.publishHeartbeat(); err != nil {
				a.log.Warn("failed to publish heartbeat", slog.String("error", err.Error()))
			}
		}
	}
}

func (a *Announcer) announce() error {
	msg := announceMessage{
		NodeID:       a.cfg.ID,
		Role:         a.cfg.Role,
		Capabilities: a.capabilities,
		Timestamp:    time.Now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := a.bus.Conn().Publish("ctrl.node.announce", payload); err != nil {
		return err
	}
	a.announced.Store(true)
	return nil
}

func (a *Announcer) publishHeartbeat() error {
	msg := heartbeatMessage{
		NodeID:    a.cfg.ID,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("ctrl.node.heartbeat.%s", a.cfg.ID)
	return a.bus.Conn().Publish(subject, payload)
}

func (a *Announcer) initMetrics() error {
	meter := otel.Meter("github.com/murmurlabs/murmur-speech/runtime")
	gauge, err := meter.Int64ObservableGauge("murmur.capabilities.total",
		metric.WithDescription("Advertised synthesis capabilities"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(ctx context.Context, obs metric.Observer) error {
		obs.ObserveInt64(gauge, int64(len(a.capabilities)))
		return nil
	}, gauge)
	return err
}
