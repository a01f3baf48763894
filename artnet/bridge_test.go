package artnet

import (
	"net"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"github.com/lumenctl/lumen/engine"
	"github.com/lumenctl/lumen/registry"
	"github.com/lumenctl/lumen/value"
)

type fakeConn struct {
	mu   sync.Mutex
	sent [][]byte
}

func (f *fakeConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), b...)
	f.sent = append(f.sent, cp)
	return len(b), nil
}

func (f *fakeConn) Close() error { return nil }

func newTestBridge(reg registry.EntityRegistry) (*Bridge, *fakeConn) {
	conn := &fakeConn{}
	b := &Bridge{
		Registry:    reg,
		conn:        conn,
		addr:        &net.UDPAddr{IP: net.IPv4(2, 255, 255, 255), Port: Port},
		universes:   map[int]*universeState{},
		sendLimiter: nil,
	}
	return b, conn
}

func f64(v float64) *float64 { return &v }

func TestBridgeRedToGroupScenario(t *testing.T) {
	reg := registry.NewMemRegistry()
	reg.PutFixtureModel(registry.FixtureModel{
		ID: "m1",
		Channels: map[string]int{
			registry.ChanDimmer: 1,
			registry.ChanRed:    2,
			registry.ChanGreen:  3,
			registry.ChanBlue:   4,
		},
	})
	reg.PutFixture(registry.Fixture{ID: "F", ModelID: "m1", Universe: 0, StartChannel: 1})

	b, conn := newTestBridge(reg)
	// sendLimiter is used only on error; a nil limiter is fine as long as
	// WriteTo never errors in this test.
	b.sendLimiter = rate.NewLimiter(rate.Inf, 1)

	frame := engine.FrameOutput{
		Fixtures: map[string]value.AttributeBundle{
			"F": {ColorR: f64(1), ColorG: f64(0), ColorB: f64(0)},
		},
	}
	b.OnFrame(frame)

	if len(conn.sent) != 1 {
		t.Fatalf("expected 1 packet sent, got %d", len(conn.sent))
	}
	packet := conn.sent[0]
	if packet[18+0] != 0 {
		t.Errorf("dimmer channel = %d, want 0 (untouched)", packet[18+0])
	}
	if packet[18+1] != 255 {
		t.Errorf("red channel = %d, want 255", packet[18+1])
	}
	if packet[18+2] != 0 {
		t.Errorf("green channel = %d, want 0", packet[18+2])
	}
	if packet[18+3] != 0 {
		t.Errorf("blue channel = %d, want 0", packet[18+3])
	}
	if packet[12] != 1 {
		t.Errorf("sequence = %d, want 1 (first send)", packet[12])
	}
}

func TestBridgeFaderScalingScenario(t *testing.T) {
	reg := registry.NewMemRegistry()
	reg.PutFixtureModel(registry.FixtureModel{
		ID:       "m1",
		Channels: map[string]int{registry.ChanRed: 2},
	})
	reg.PutFixture(registry.Fixture{ID: "F", ModelID: "m1", Universe: 0, StartChannel: 1})

	b, conn := newTestBridge(reg)
	b.sendLimiter = rate.NewLimiter(rate.Inf, 1)

	frame := engine.FrameOutput{
		Fixtures: map[string]value.AttributeBundle{
			"F": {ColorR: f64(0.5)},
		},
	}
	b.OnFrame(frame)

	packet := conn.sent[0]
	if packet[18+1] != 128 {
		t.Errorf("red channel = %d, want 128 (round(0.5*255))", packet[18+1])
	}
}

func TestBridgeMissingFixtureSkipped(t *testing.T) {
	reg := registry.NewMemRegistry()
	b, conn := newTestBridge(reg)
	frame := engine.FrameOutput{Fixtures: map[string]value.AttributeBundle{"missing": {}}}
	b.OnFrame(frame)
	if len(conn.sent) != 0 {
		t.Errorf("expected no packets sent for an unknown fixture, got %d", len(conn.sent))
	}
}
