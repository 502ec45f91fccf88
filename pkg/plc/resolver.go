// Package plc assembles one PLC process: the tag resolver, the bounded-retry
// read policy, and the pre-loop/main-loop runtime driving the lock-step
// iteration protocol.
package plc

import (
	"context"
	"time"

	"github.com/dd0wney/plcnet/pkg/logging"
	"github.com/dd0wney/plcnet/pkg/metrics"
	"github.com/dd0wney/plcnet/pkg/tags"
	"github.com/dd0wney/plcnet/pkg/topology"
	"github.com/dd0wney/plcnet/pkg/transport"
)

// Resolver locates a tag's current value anywhere in the topology. Locally
// owned tags read straight from the store; everything else goes over the wire
// to the first peer descriptor declaring the tag, in topology order. Remote
// values are never cached: every resolution is a fresh round trip.
type Resolver struct {
	store     *tags.Store
	topo      *topology.Topology
	selfIndex int
	client    *transport.TagClient
	metrics   *metrics.Registry
	logger    logging.Logger
}

// NewResolver creates a resolver for the PLC at selfIndex in the topology.
func NewResolver(store *tags.Store, topo *topology.Topology, selfIndex int, client *transport.TagClient, reg *metrics.Registry, logger logging.Logger) *Resolver {
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resolver{
		store:     store,
		topo:      topo,
		selfIndex: selfIndex,
		client:    client,
		metrics:   reg,
		logger:    logger.With(logging.Component("resolver")),
	}
}

// Read resolves the named tag to its current value. A tag no descriptor in
// the topology declares fails with ErrTagDoesNotExist.
func (r *Resolver) Read(ctx context.Context, name string) (float64, error) {
	if r.store.Owns(name) {
		v, err := r.store.Get(tags.NewTag(name))
		if err != nil {
			r.metrics.RecordTagRead("local", "error", 0)
			return 0, err
		}
		r.metrics.RecordTagRead("local", "ok", 0)
		return v, nil
	}

	owner, ok := r.topo.Owner(name, r.selfIndex)
	if !ok {
		r.metrics.RecordTagRead("remote", "error", 0)
		return 0, tags.NotFoundError("Read", name, r.store.PLC())
	}

	start := time.Now()
	v, err := r.client.Receive(ctx, tags.NewTag(name), owner.PublicAddress)
	if err != nil {
		r.metrics.RecordTagRead("remote", "error", time.Since(start))
		r.logger.Debug("remote tag read failed",
			logging.TagName(name),
			logging.Addr(owner.PublicAddress),
			logging.Error(err))
		return 0, err
	}
	r.metrics.RecordTagRead("remote", "ok", time.Since(start))
	return v, nil
}

// Write sets a locally owned tag. Writes never cross the network: a PLC only
// ever drives its own actuators.
func (r *Resolver) Write(name string, value any) error {
	if err := r.store.Set(tags.NewTag(name), value); err != nil {
		r.metrics.RecordTagWrite("error")
		return err
	}
	r.metrics.RecordTagWrite("ok")
	return nil
}
