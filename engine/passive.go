// Package engine holds protocol engines for the lifecycle manager.
//
// Passive does not answer the console. It decodes what the host sends and
// logs it, which is enough to watch a pairing attempt from the command line.
package engine

import (
	"encoding/hex"
	"sync"

	"github.com/rigado/procon"
)

// Passive is an engine that only logs host reports.
type Passive struct {
	mem  procon.Flash
	host procon.Addr
	ch   procon.Channel
	log  procon.Logger

	sync.Mutex
	reports   uint64
	malformed uint64
	lost      bool
}

// NewPassive returns a Passive engine bound to ch.
func NewPassive(mem procon.Flash, host procon.Addr, ch procon.Channel) *Passive {
	return &Passive{
		mem:  mem,
		host: host,
		ch:   ch,
		log: procon.GetLogger().ChildLogger(map[string]interface{}{
			"pkg":  "engine",
			"peer": ch.RemoteAddr().String(),
		}),
	}
}

// PassiveFactory is a procon.EngineFactory for Passive.
func PassiveFactory(mem procon.Flash, host procon.Addr, ch procon.Channel) (procon.Engine, error) {
	return NewPassive(mem, host, ch), nil
}

// OnBytesReceived implements procon.Engine.
func (p *Passive) OnBytesReceived(b []byte) {
	p.Lock()
	defer p.Unlock()

	r, err := DecodeOutputReport(b)
	if err != nil {
		p.malformed++
		p.log.Warnf("%v: %s", err, hex.EncodeToString(b))
		return
	}
	p.reports++

	if r.ID != ReportSubcommand || r.Subcommand != SubcmdSPIRead {
		p.log.Debugf("%v", r)
		return
	}

	addr, n, err := r.SPIRead()
	if err != nil {
		p.log.Warnf("%v: %v", r, err)
		return
	}
	buf := make([]byte, n)
	if _, err := p.mem.ReadAt(buf, int64(addr)); err != nil {
		p.log.Warnf("host read 0x%x bytes at 0x%05x: %v", n, addr, err)
		return
	}
	p.log.Infof("host read 0x%x bytes at 0x%05x: %s", n, addr, hex.EncodeToString(buf))
}

// OnConnectionLost implements procon.Engine.
func (p *Passive) OnConnectionLost() {
	p.Lock()
	defer p.Unlock()
	p.lost = true
	p.log.Infof("connection lost after %d reports", p.reports)
}

// Reports returns how many well formed and malformed reports arrived.
func (p *Passive) Reports() (ok, malformed uint64) {
	p.Lock()
	defer p.Unlock()
	return p.reports, p.malformed
}

// Lost reports whether the session ended.
func (p *Passive) Lost() bool {
	p.Lock()
	defer p.Unlock()
	return p.lost
}
