package messaging

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/protocol"
	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

// Topics names the feed topics under a common prefix.
type Topics struct {
	RobotTelemetry string
	PickerActivity string
	OrderEvents    string
	CartMovement   string
	Control        string
}

func TopicsFor(prefix string) Topics {
	if prefix == "" {
		prefix = "amrdash"
	}
	return Topics{
		RobotTelemetry: prefix + ".robot_telemetry",
		PickerActivity: prefix + ".picker_activity",
		OrderEvents:    prefix + ".order_events",
		CartMovement:   prefix + ".cart_movement",
		Control:        prefix + ".control",
	}
}

// All returns every topic, telemetry streams first.
func (t Topics) All() []string {
	return []string{t.RobotTelemetry, t.PickerActivity, t.OrderEvents, t.CartMovement, t.Control}
}

// Publisher pushes a generated shift onto the feed in bounded batches.
type Publisher struct {
	transport Transport
	topics    Topics
	src       protocol.Address
	dst       protocol.Address
	batchSize int
}

func NewPublisher(t Transport, topics Topics, node string) *Publisher {
	return &Publisher{
		transport: t,
		topics:    topics,
		src:       protocol.Address{Role: protocol.RoleSimulator, Node: node},
		dst:       protocol.Address{Role: protocol.RoleDashboard, Node: "*"},
		batchSize: protocol.MaxBatch,
	}
}

// PublishShift sends every series of d followed by a ShiftPopulated
// control message. It returns the number of envelopes sent.
func (p *Publisher) PublishShift(d *shift.Data, seed int64) (int, error) {
	streams := []func() (int, error){
		func() (int, error) {
			return publishBatches(p, p.topics.RobotTelemetry, protocol.TypeRobotTelemetry, d.RobotTelemetry,
				func(b []shift.RobotTelemetry) any { return &protocol.RobotTelemetryBatch{Samples: b} })
		},
		func() (int, error) {
			return publishBatches(p, p.topics.PickerActivity, protocol.TypePickerActivity, d.PickerActivity,
				func(b []shift.PickerActivity) any { return &protocol.PickerActivityBatch{Samples: b} })
		},
		func() (int, error) {
			return publishBatches(p, p.topics.OrderEvents, protocol.TypeOrderEvents, d.OrderEvents,
				func(b []shift.OrderEvent) any { return &protocol.OrderEventBatch{Samples: b} })
		},
		func() (int, error) {
			return publishBatches(p, p.topics.CartMovement, protocol.TypeCartMovement, d.CartMovement,
				func(b []shift.CartMovement) any { return &protocol.CartMovementBatch{Samples: b} })
		},
	}
	sent := 0
	for _, publish := range streams {
		n, err := publish()
		sent += n
		if err != nil {
			return sent, err
		}
	}

	total := len(d.RobotTelemetry) + len(d.PickerActivity) + len(d.OrderEvents) + len(d.CartMovement)
	if err := p.send(p.topics.Control, protocol.TypeShiftPopulated, 0, &protocol.ShiftPopulated{
		ShiftStart: d.ShiftStart,
		ShiftEnd:   d.ShiftEnd,
		Seed:       seed,
		Robots:     len(d.Robots),
		Pickers:    len(d.Pickers),
		Carts:      len(d.Carts),
		Orders:     len(d.Orders),
		Samples:    total,
	}); err != nil {
		return sent, err
	}
	sent++
	logrus.Infof("messaging: published shift %s (%d samples, %d envelopes)",
		d.ShiftStart.Format("2006-01-02 15:04"), total, sent)
	return sent, nil
}

// PublishCleared announces that the store was emptied.
func (p *Publisher) PublishCleared(reason string) error {
	return p.send(p.topics.Control, protocol.TypeShiftCleared, 0, &protocol.ShiftCleared{Reason: reason})
}

func (p *Publisher) send(topic, msgType string, seq int, payload any) error {
	env, err := protocol.NewEnvelope(msgType, p.src, p.dst, payload)
	if err != nil {
		return fmt.Errorf("build %s envelope: %w", msgType, err)
	}
	env.Seq = seq
	if err := PublishEnvelope(p.transport, topic, env); err != nil {
		return fmt.Errorf("publish %s to %s: %w", msgType, topic, err)
	}
	return nil
}

func publishBatches[T any](p *Publisher, topic, msgType string, samples []T, wrap func([]T) any) (int, error) {
	batches := protocol.Batches(samples, p.batchSize)
	for i, b := range batches {
		if err := p.send(topic, msgType, i+1, wrap(b)); err != nil {
			return i, err
		}
	}
	return len(batches), nil
}
