// Package artnet projects per-fixture attribute bundles into DMX512
// universe buffers and emits them as Art-Net ArtDmx UDP broadcast packets
// (spec.md §4.7).
package artnet

import (
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lumenctl/lumen/engine"
	"github.com/lumenctl/lumen/registry"
	"github.com/lumenctl/lumen/util/errwrap"
)

// DefaultBroadcastAddr is the default Art-Net broadcast destination
// (spec.md §6).
const DefaultBroadcastAddr = "2.255.255.255"

// universeState is a universe's DMX buffer plus its ArtDmx sequence
// counter, both lazily created on first use (spec.md §4.7 step 1).
type universeState struct {
	dmx      [dmxChannels]byte
	sequence byte // 1..255, 0 is reserved "disabled" and never emitted
}

func (u *universeState) nextSequence() byte {
	if u.sequence >= 255 {
		u.sequence = 1
	} else {
		u.sequence++
	}
	return u.sequence
}

// Bridge owns one UDP broadcast socket and every universe's DMX state. It
// is meant to subscribe inline to an *engine.Engine via OnFrameInline so it
// is never dropped under subscriber back-pressure (spec.md §9).
type Bridge struct {
	Logf func(format string, v ...interface{})

	// SendObserver, if set, is called once per ArtDmx send attempt with
	// the universe id and the resulting error, if any (e.g.
	// metrics.Metrics.ObserveDMXSend).
	SendObserver func(universeID int, err error)

	Registry registry.EntityRegistry
	conn     broadcastConn
	addr     *net.UDPAddr

	mu        sync.Mutex
	universes map[int]*universeState

	sendLimiter *rate.Limiter
}

// broadcastConn is the subset of net.PacketConn the bridge needs; it exists
// so tests can substitute a fake socket instead of opening a real one.
type broadcastConn interface {
	WriteTo(b []byte, addr net.Addr) (int, error)
	Close() error
}

// New opens a UDP broadcast socket and returns a ready-to-use Bridge.
// broadcastAddr defaults to DefaultBroadcastAddr if empty; port defaults to
// Port if 0.
func New(reg registry.EntityRegistry, broadcastAddr string, port int, logf func(format string, v ...interface{})) (*Bridge, error) {
	if broadcastAddr == "" {
		broadcastAddr = DefaultBroadcastAddr
	}
	if port == 0 {
		port = Port
	}
	conn, err := newBroadcastSocket()
	if err != nil {
		return nil, err
	}
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(broadcastAddr, strconv.Itoa(port)))
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Bridge{
		Logf:        logf,
		Registry:    reg,
		conn:        conn,
		addr:        addr,
		universes:   map[int]*universeState{},
		sendLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

func (b *Bridge) universeFor(id int) *universeState {
	u, ok := b.universes[id]
	if !ok {
		u = &universeState{}
		b.universes[id] = u
	}
	return u
}

// OnFrame is the engine.OnFrameInline-compatible handler: it projects the
// frame's fixture outputs into their universes' DMX buffers and sends one
// ArtDmx packet per touched universe (spec.md §4.7).
func (b *Bridge) OnFrame(frame engine.FrameOutput) {
	if b.Registry == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	touched := map[int]bool{}
	for fixtureID, bundle := range frame.Fixtures {
		fixture, ok := b.Registry.GetFixture(fixtureID)
		if !ok {
			continue
		}
		model, ok := b.Registry.GetFixtureModel(fixture.ModelID)
		if !ok {
			continue
		}
		u := b.universeFor(fixture.Universe)
		writeBundle(&u.dmx, fixture.StartChannel, model, bundle)
		touched[fixture.Universe] = true
	}

	for universeID := range touched {
		b.sendUniverse(universeID)
	}
}

func (b *Bridge) sendUniverse(universeID int) error {
	u := b.universeFor(universeID)
	packet := buildArtDmx(universeID, u.nextSequence(), &u.dmx)
	_, err := b.conn.WriteTo(packet, b.addr)
	if b.SendObserver != nil {
		b.SendObserver(universeID, err)
	}
	if err != nil && b.sendLimiter.Allow() && b.Logf != nil {
		b.Logf("artnet: send to universe %d failed: %v", universeID, err)
	}
	return err
}

// Close blackouts every universe that has ever been touched (one all-zero
// frame each), then closes the socket (spec.md §4.7 "On shutdown"). Send
// failures during blackout and the socket close error are folded into one
// chain via errwrap so a caller sees every failure, not just the last one.
func (b *Bridge) Close() error {
	b.mu.Lock()
	var sendErr error
	for id, u := range b.universes {
		u.dmx = [dmxChannels]byte{}
		sendErr = errwrap.Append(sendErr, errwrap.Wrapf(b.sendUniverse(id), "blackout universe %d", id))
	}
	b.mu.Unlock()

	closeErr := errwrap.Wrapf(b.conn.Close(), "close artnet socket")
	return errwrap.Append(sendErr, closeErr)
}
