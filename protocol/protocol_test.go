package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Sankeerth-S-Narayan/AMR-Dashboard/shift"
)

var (
	simulator = Address{Role: RoleSimulator, Node: "amrdash-populate"}
	dashboard = Address{Role: RoleDashboard}
)

func TestEnvelopeRoundTrip(t *testing.T) {
	at := time.Date(2025, 9, 7, 8, 5, 0, 0, time.UTC)
	env, err := NewEnvelope(TypeRobotTelemetry, simulator, dashboard, &RobotTelemetryBatch{
		Samples: []shift.RobotTelemetry{{Time: at, RobotID: "AMR-001", Status: shift.RobotActive, Battery: 84.3}},
	})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}

	if env.Version != Version {
		t.Errorf("version = %d, want %d", env.Version, Version)
	}
	if env.Type != TypeRobotTelemetry {
		t.Errorf("type = %q, want %q", env.Type, TypeRobotTelemetry)
	}
	if env.Src != simulator {
		t.Errorf("src = %+v, want %+v", env.Src, simulator)
	}
	if env.ID == "" {
		t.Error("ID should not be empty")
	}

	data, err := env.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID != env.ID {
		t.Errorf("decoded id = %q, want %q", decoded.ID, env.ID)
	}

	var batch RobotTelemetryBatch
	if err := decoded.DecodePayload(&batch); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if len(batch.Samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(batch.Samples))
	}
	s := batch.Samples[0]
	if s.RobotID != "AMR-001" || s.Battery != 84.3 || !s.Time.Equal(at) {
		t.Errorf("sample = %+v", s)
	}
}

func TestEnvelopeIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		env, _ := NewEnvelope(TypeCartMovement, simulator, dashboard, &CartMovementBatch{})
		if seen[env.ID] {
			t.Fatalf("duplicate id %s", env.ID)
		}
		seen[env.ID] = true
	}
}

func TestExpiry(t *testing.T) {
	env := &Envelope{ExpiresAt: time.Now().UTC().Add(-1 * time.Minute)}
	if !IsExpired(env) {
		t.Error("expected expired envelope to be detected")
	}

	env.ExpiresAt = time.Now().UTC().Add(10 * time.Minute)
	if IsExpired(env) {
		t.Error("expected future-expiry envelope to not be expired")
	}

	env.ExpiresAt = time.Time{}
	if IsExpired(env) {
		t.Error("expected zero-expiry envelope to not be expired")
	}
}

func TestExpiryHeader(t *testing.T) {
	hdr := &RawHeader{ExpiresAt: time.Now().UTC().Add(-1 * time.Second)}
	if !IsExpiredHeader(hdr) {
		t.Error("expected expired header to be detected")
	}

	hdr.ExpiresAt = time.Now().UTC().Add(5 * time.Minute)
	if IsExpiredHeader(hdr) {
		t.Error("expected future header to not be expired")
	}
}

func TestDefaultTTLFor(t *testing.T) {
	if ttl := DefaultTTLFor(TypeRobotTelemetry); ttl != 5*time.Minute {
		t.Errorf("robot telemetry TTL = %v, want 5m", ttl)
	}
	if ttl := DefaultTTLFor(TypeShiftPopulated); ttl != 30*time.Minute {
		t.Errorf("shift populated TTL = %v, want 30m", ttl)
	}
	if ttl := DefaultTTLFor("unknown.type"); ttl != FallbackTTL {
		t.Errorf("unknown TTL = %v, want %v", ttl, FallbackTTL)
	}
}

func TestBatches(t *testing.T) {
	samples := make([]int, 450)
	for i := range samples {
		samples[i] = i
	}
	got := Batches(samples, MaxBatch)
	if len(got) != 3 {
		t.Fatalf("batches = %d, want 3", len(got))
	}
	if len(got[0]) != 200 || len(got[1]) != 200 || len(got[2]) != 50 {
		t.Errorf("batch sizes = %d, %d, %d", len(got[0]), len(got[1]), len(got[2]))
	}
	if got[2][49] != 449 {
		t.Errorf("last sample = %d, want 449", got[2][49])
	}
	if n := len(Batches([]int{}, 10)); n != 0 {
		t.Errorf("empty batches = %d, want 0", n)
	}

	// Appending to a batch must not clobber the next one.
	got = Batches(samples[:4], 2)
	_ = append(got[0], -1)
	if got[1][0] != 2 {
		t.Errorf("batch aliasing: got[1][0] = %d", got[1][0])
	}
}

func TestIngestorDispatch(t *testing.T) {
	handler := &testHandler{}
	ingestor := NewIngestor(handler, nil)

	env, _ := NewEnvelope(TypePickerActivity, simulator, dashboard, &PickerActivityBatch{
		Samples: []shift.PickerActivity{{PickerID: "PICKER-03", TotalPicks: 77}},
	})
	data, _ := env.Encode()
	ingestor.HandleRaw(data)

	if handler.pickerCalls != 1 {
		t.Fatalf("HandlePickerActivity calls = %d, want 1", handler.pickerCalls)
	}
	if handler.pickerPayload.Samples[0].PickerID != "PICKER-03" {
		t.Errorf("picker_id = %q, want PICKER-03", handler.pickerPayload.Samples[0].PickerID)
	}

	env, _ = NewEnvelope(TypeShiftPopulated, simulator, dashboard, &ShiftPopulated{Orders: 200})
	data, _ = env.Encode()
	ingestor.HandleRaw(data)
	if handler.populated == nil || handler.populated.Orders != 200 {
		t.Errorf("populated = %+v", handler.populated)
	}
}

func TestIngestorFilter(t *testing.T) {
	handler := &testHandler{}
	// Filter that rejects everything
	ingestor := NewIngestor(handler, func(_ *RawHeader) bool { return false })

	env, _ := NewEnvelope(TypePickerActivity, simulator, dashboard, &PickerActivityBatch{})
	data, _ := env.Encode()
	ingestor.HandleRaw(data)

	if handler.pickerCalls != 0 {
		t.Error("expected handler to NOT be called when filter rejects")
	}
}

func TestIngestorDropsExpiredAndUnknown(t *testing.T) {
	handler := &testHandler{}
	ingestor := NewIngestor(handler, nil)

	env, _ := NewEnvelope(TypePickerActivity, simulator, dashboard, &PickerActivityBatch{})
	env.ExpiresAt = time.Now().UTC().Add(-1 * time.Minute)
	data, _ := env.Encode()
	ingestor.HandleRaw(data)

	env, _ = NewEnvelope(TypePickerActivity, simulator, dashboard, &PickerActivityBatch{})
	env.Version = Version + 1
	data, _ = env.Encode()
	ingestor.HandleRaw(data)

	ingestor.HandleRaw([]byte(`{"v":1,"type":"telemetry.unknown","p":{}}`))
	ingestor.HandleRaw([]byte(`not json`))
	ingestor.HandleRaw([]byte(`{"v":1,"type":"telemetry.picker","p":"bad"}`))

	if handler.pickerCalls != 0 {
		t.Errorf("handler called %d times, want 0", handler.pickerCalls)
	}
}

func TestWireFormatKeys(t *testing.T) {
	env, _ := NewEnvelope(TypeOrderEvents, simulator, dashboard, &OrderEventBatch{})
	data, _ := env.Encode()

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	expected := []string{"v", "type", "id", "src", "dst", "ts", "exp", "p"}
	for _, k := range expected {
		if _, ok := m[k]; !ok {
			t.Errorf("expected key %q in wire format", k)
		}
	}
	long := []string{"version", "payload", "timestamp", "expires_at", "source", "destination"}
	for _, k := range long {
		if _, ok := m[k]; ok {
			t.Errorf("unexpected long key %q in wire format", k)
		}
	}
}

// testHandler tracks which methods were called.
type testHandler struct {
	NoOpHandler
	pickerCalls   int
	pickerPayload PickerActivityBatch
	populated     *ShiftPopulated
}

func (h *testHandler) HandlePickerActivity(env *Envelope, p *PickerActivityBatch) {
	h.pickerCalls++
	h.pickerPayload = *p
}

func (h *testHandler) HandleShiftPopulated(env *Envelope, p *ShiftPopulated) {
	h.populated = p
}
