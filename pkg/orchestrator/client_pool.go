package orchestrator

import (
	"sync"

	"provider-balancer/balancer/pkg/providers"
)

// clientPool lazily builds and caches one providers.Client per provider
// name, rebuilding it whenever the provider's proxy URL changes across a
// reload.
type clientPool struct {
	mu      sync.Mutex
	clients map[string]*providers.Client
	proxies map[string]string
}

func newClientPool() *clientPool {
	return &clientPool{
		clients: make(map[string]*providers.Client),
		proxies: make(map[string]string),
	}
}

func (p *clientPool) get(prov *providers.Provider, poolTimeout TimeoutGroup) (*providers.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[prov.Name]; ok && p.proxies[prov.Name] == prov.ProxyURL {
		return c, nil
	}

	c, err := providers.NewClient(prov.ProxyURL, poolTimeout.Pool)
	if err != nil {
		return nil, err
	}
	if old, ok := p.clients[prov.Name]; ok {
		old.CloseIdleConnections()
	}
	p.clients[prov.Name] = c
	p.proxies[prov.Name] = prov.ProxyURL
	return c, nil
}
