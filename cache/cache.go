// Package cache keeps known consoles in a JSON file.
package cache

import (
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/procon"
)

// ErrNotFound is returned by Load for an adapter without a known console.
var ErrNotFound = errors.New("no console cached")

type consoleCache struct {
	filename string
	lock     sync.RWMutex
}

func New(filename string) procon.ConsoleCache {
	return &consoleCache{filename: filename}
}

func (cc *consoleCache) Store(host procon.Addr, c procon.Console, replace bool) error {
	cc.lock.Lock()
	defer cc.lock.Unlock()

	cache, err := cc.loadExisting()
	if err != nil {
		return err
	}

	if _, ok := cache[host.String()]; ok && !replace {
		return errors.Errorf("cache already holds a console for %s", host)
	}
	c.Addr = procon.NewAddr(c.Addr).String()
	cache[host.String()] = c

	return cc.storeCache(cache)
}

func (cc *consoleCache) Load(host procon.Addr) (procon.Console, error) {
	cc.lock.RLock()
	defer cc.lock.RUnlock()

	cache, err := cc.loadExisting()
	if err != nil {
		return procon.Console{}, err
	}

	c, ok := cache[host.String()]
	if !ok {
		return procon.Console{}, errors.Wrapf(ErrNotFound, "adapter %s", host)
	}
	return c, nil
}

func (cc *consoleCache) Clear() error {
	cc.lock.Lock()
	defer cc.lock.Unlock()

	err := os.Remove(cc.filename)
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "can't clear console cache")
}

func (cc *consoleCache) loadExisting() (map[string]procon.Console, error) {
	in, err := ioutil.ReadFile(cc.filename)
	if os.IsNotExist(err) {
		return map[string]procon.Console{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't read console cache")
	}

	cache := map[string]procon.Console{}
	if err := jsoniter.Unmarshal(in, &cache); err != nil {
		return nil, errors.Wrapf(err, "can't parse console cache %s", cc.filename)
	}
	return cache, nil
}

func (cc *consoleCache) storeCache(cache map[string]procon.Console) error {
	out, err := jsoniter.Marshal(cache)
	if err != nil {
		return errors.Wrap(err, "can't encode console cache")
	}
	return errors.Wrap(ioutil.WriteFile(cc.filename, out, 0644), "can't write console cache")
}
