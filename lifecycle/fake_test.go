package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/procon"
)

// journal records collaborator calls in order.
type journal struct {
	mu sync.Mutex
	ee []string
}

func (j *journal) add(format string, a ...interface{}) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ee = append(j.ee, fmt.Sprintf(format, a...))
}

func (j *journal) entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.ee...)
}

type fakeChannel struct {
	psm  procon.PSM
	addr procon.Addr
	j    *journal

	mu     sync.Mutex
	writes [][]byte
	failAt int // index of the write that fails, -1 for none
	closed int
}

func newFakeChannel(j *journal, psm procon.PSM, addr string) *fakeChannel {
	return &fakeChannel{psm: psm, addr: procon.NewAddr(addr), j: j, failAt: -1}
}

func (c *fakeChannel) PSM() procon.PSM         { return c.psm }
func (c *fakeChannel) RemoteAddr() procon.Addr { return c.addr }

func (c *fakeChannel) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAt == len(c.writes) {
		return 0, errors.New("write refused")
	}
	c.writes = append(c.writes, append([]byte(nil), b...))
	return len(b), nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	c.j.add("close %v", c.psm)
	return nil
}

func (c *fakeChannel) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

func (c *fakeChannel) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeRadio struct {
	j    *journal
	addr procon.Addr

	mu         sync.Mutex
	identity   procon.Identity
	scan       bool
	records    map[RecordHandle][]byte
	observers  map[procon.PSM]Observer
	failConfig error
	failScan   error
}

func newFakeRadio(j *journal) *fakeRadio {
	return &fakeRadio{
		j:         j,
		addr:      procon.NewAddr("dc:a6:32:00:00:01"),
		records:   map[RecordHandle][]byte{},
		observers: map[procon.PSM]Observer{},
	}
}

func (r *fakeRadio) Addr() procon.Addr { return r.addr }

func (r *fakeRadio) SetScanEnable(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.j.add("scan %v", enabled)
	if r.failScan != nil {
		return r.failScan
	}
	r.scan = enabled
	return nil
}

func (r *fakeRadio) ConfigureIdentity(id procon.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.j.add("identity %s", id.Name)
	if r.failConfig != nil {
		return r.failConfig
	}
	r.identity = id
	return nil
}

func (r *fakeRadio) PublishServiceRecord(record []byte) (RecordHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.j.add("publish")
	h := RecordHandle(fmt.Sprintf("record%d", len(r.records)))
	r.records[h] = record
	return h, nil
}

func (r *fakeRadio) RemoveServiceRecord(h RecordHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.j.add("unpublish")
	delete(r.records, h)
	return nil
}

func (r *fakeRadio) RegisterChannelOpenObserver(psm procon.PSM, o Observer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.j.add("observe %v", psm)
	r.observers[psm] = o
	return nil
}

func (r *fakeRadio) scanning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scan
}

type fakeTransport struct {
	j *journal

	mu       sync.Mutex
	linked   map[string]bool
	channels map[procon.PSM]*fakeChannel
	failOpen map[procon.PSM]error
	failLink error
}

func newFakeTransport(j *journal) *fakeTransport {
	return &fakeTransport{
		j:        j,
		linked:   map[string]bool{},
		channels: map[procon.PSM]*fakeChannel{},
		failOpen: map[procon.PSM]error{},
	}
}

func (t *fakeTransport) OpenLink(ctx context.Context, a procon.Addr) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.j.add("link %v", a)
	if t.failLink != nil {
		return t.failLink
	}
	t.linked[a.String()] = true
	return nil
}

func (t *fakeTransport) IsLinked(a procon.Addr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.linked[a.String()]
}

func (t *fakeTransport) CloseLink(a procon.Addr) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.j.add("unlink %v", a)
	delete(t.linked, a.String())
	return nil
}

func (t *fakeTransport) Open(ctx context.Context, a procon.Addr, psm procon.PSM, o Observer) (procon.Channel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.j.add("open %v", psm)
	if err := t.failOpen[psm]; err != nil {
		return nil, err
	}
	ch := newFakeChannel(t.j, psm, a.String())
	t.channels[psm] = ch
	return ch, nil
}

func (t *fakeTransport) channel(psm procon.PSM) *fakeChannel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channels[psm]
}

// fakeEngine sends one report as soon as it exists, like a real engine
// starting its input report loop.
type fakeEngine struct {
	mem  procon.Flash
	host procon.Addr
	ch   procon.Channel

	mu       sync.Mutex
	received [][]byte
	lost     int
}

func (e *fakeEngine) OnBytesReceived(b []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.received = append(e.received, b)
}

func (e *fakeEngine) OnConnectionLost() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lost++
}

func (e *fakeEngine) lostCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lost
}

func (e *fakeEngine) receivedData() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]byte(nil), e.received...)
}

type engines struct {
	mu   sync.Mutex
	all  []*fakeEngine
	fail error
}

func (es *engines) factory(mem procon.Flash, host procon.Addr, ch procon.Channel) (procon.Engine, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.fail != nil {
		return nil, es.fail
	}
	e := &fakeEngine{mem: mem, host: host, ch: ch}
	if _, err := ch.Write([]byte{0x30, 0x01}); err != nil {
		return nil, err
	}
	es.all = append(es.all, e)
	return e, nil
}

func (es *engines) count() int {
	es.mu.Lock()
	defer es.mu.Unlock()
	return len(es.all)
}

func (es *engines) last() *fakeEngine {
	es.mu.Lock()
	defer es.mu.Unlock()
	if len(es.all) == 0 {
		return nil
	}
	return es.all[len(es.all)-1]
}
