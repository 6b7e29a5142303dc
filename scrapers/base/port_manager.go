package base

import (
	"context"
	"fmt"
	"sync"
)

// PortPool hands out chromedriver ports. Acquire blocks until a port is
// free or ctx is done, so concurrent Selenium fetches queue instead of
// failing when every driver port is busy.
type PortPool struct {
	free chan int
}

var (
	driverPorts     *PortPool
	driverPortsOnce sync.Once
)

// DriverPorts returns the process-wide chromedriver port pool.
func DriverPorts() *PortPool {
	driverPortsOnce.Do(func() {
		driverPorts = NewPortPool(seleniumBasePort, seleniumPortRange)
	})
	return driverPorts
}

// NewPortPool creates a pool over [first, first+size).
func NewPortPool(first, size int) *PortPool {
	p := &PortPool{free: make(chan int, size)}
	for port := first; port < first+size; port++ {
		p.free <- port
	}
	return p
}

// Acquire reserves a port.
func (p *PortPool) Acquire(ctx context.Context) (int, error) {
	select {
	case port := <-p.free:
		return port, nil
	case <-ctx.Done():
		return 0, fmt.Errorf("waiting for a chromedriver port: %w", ctx.Err())
	}
}

// Release returns port to the pool.
func (p *PortPool) Release(port int) {
	select {
	case p.free <- port:
	default:
	}
}
