package messaging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/protocol"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// Recorder persists ingested telemetry. livestate.Manager satisfies it.
type Recorder interface {
	RecordRobotTelemetry(ctx context.Context, samples []shift.RobotTelemetry) error
	RecordPickerActivity(ctx context.Context, samples []shift.PickerActivity) error
	RecordOrderEvents(ctx context.Context, samples []shift.OrderEvent) error
	RecordCartMovement(ctx context.Context, samples []shift.CartMovement) error
}

const recordTimeout = 10 * time.Second

// FeedHandler handles inbound feed messages on the dashboard side.
// Telemetry batches are written through the Recorder; control messages
// are passed to the callbacks.
type FeedHandler struct {
	protocol.NoOpHandler

	rec Recorder

	// OnIngest is called after a batch was recorded.
	OnIngest func(stream string, n int)
	// OnShift is called when the simulator announces a populated shift.
	OnShift func(p *protocol.ShiftPopulated)
	// OnCleared is called when the simulator announces an emptied store.
	OnCleared func(p *protocol.ShiftCleared)
}

func NewFeedHandler(rec Recorder) *FeedHandler {
	return &FeedHandler{rec: rec}
}

func (h *FeedHandler) HandleRobotTelemetry(env *protocol.Envelope, p *protocol.RobotTelemetryBatch) {
	h.record(env, protocol.TypeRobotTelemetry, len(p.Samples), func(ctx context.Context) error {
		return h.rec.RecordRobotTelemetry(ctx, p.Samples)
	})
}

func (h *FeedHandler) HandlePickerActivity(env *protocol.Envelope, p *protocol.PickerActivityBatch) {
	h.record(env, protocol.TypePickerActivity, len(p.Samples), func(ctx context.Context) error {
		return h.rec.RecordPickerActivity(ctx, p.Samples)
	})
}

func (h *FeedHandler) HandleOrderEvents(env *protocol.Envelope, p *protocol.OrderEventBatch) {
	h.record(env, protocol.TypeOrderEvents, len(p.Samples), func(ctx context.Context) error {
		return h.rec.RecordOrderEvents(ctx, p.Samples)
	})
}

func (h *FeedHandler) HandleCartMovement(env *protocol.Envelope, p *protocol.CartMovementBatch) {
	h.record(env, protocol.TypeCartMovement, len(p.Samples), func(ctx context.Context) error {
		return h.rec.RecordCartMovement(ctx, p.Samples)
	})
}

func (h *FeedHandler) HandleShiftPopulated(env *protocol.Envelope, p *protocol.ShiftPopulated) {
	logrus.Infof("messaging: shift populated by %s (%d samples, seed %d)", env.Src.Node, p.Samples, p.Seed)
	if h.OnShift != nil {
		h.OnShift(p)
	}
}

func (h *FeedHandler) HandleShiftCleared(env *protocol.Envelope, p *protocol.ShiftCleared) {
	logrus.Infof("messaging: shift cleared by %s: %s", env.Src.Node, p.Reason)
	if h.OnCleared != nil {
		h.OnCleared(p)
	}
}

func (h *FeedHandler) record(env *protocol.Envelope, stream string, n int, fn func(context.Context) error) {
	if n == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logrus.Errorf("messaging: record %s batch %s (seq %d): %v", stream, env.ID, env.Seq, err)
		return
	}
	if h.OnIngest != nil {
		h.OnIngest(stream, n)
	}
}

// Consumer subscribes to every feed topic and routes messages through an
// ingestor.
type Consumer struct {
	transport Transport
	topics    Topics
	ingestor  *protocol.Ingestor
}

func NewConsumer(t Transport, topics Topics, handler protocol.MessageHandler) *Consumer {
	return &Consumer{
		transport: t,
		topics:    topics,
		ingestor: protocol.NewIngestor(handler, func(hdr *protocol.RawHeader) bool {
			return hdr.Dst.Role == "" || hdr.Dst.Role == protocol.RoleDashboard
		}),
	}
}

func (c *Consumer) Start() error {
	for _, topic := range c.topics.All() {
		if err := c.transport.Subscribe(topic, c.handleMessage); err != nil {
			return err
		}
	}
	return nil
}

func (c *Consumer) handleMessage(_ string, payload []byte) {
	c.ingestor.HandleRaw(payload)
}
