// Package client is the programmatic entry point for snapvault. A Client
// pairs a storage backend with a control layer, so callers can search and
// edit the database and move values between it and the machine.
package client

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/beamtime/snapvault/pkg/backend"
	"github.com/beamtime/snapvault/pkg/control"
	"github.com/beamtime/snapvault/pkg/model"
)

// Client wraps a Backend and a control Layer.
type Client struct {
	backend backend.Backend
	control *control.Layer
}

// New builds a Client over the given backend. A nil layer gets an empty
// one, which rejects every PV address until shims are registered.
func New(b backend.Backend, cl *control.Layer) *Client {
	if cl == nil {
		cl = control.NewLayer()
	}
	return &Client{backend: b, control: cl}
}

// Backend exposes the underlying storage engine.
func (c *Client) Backend() backend.Backend { return c.backend }

// Control exposes the control layer for shim registration.
func (c *Client) Control() *control.Layer { return c.control }

// Get returns the entry with the given id.
func (c *Client) Get(id uuid.UUID) (model.Entry, error) {
	return c.backend.GetEntry(id)
}

// Save inserts a new entry into the database.
func (c *Client) Save(e model.Entry) error {
	return c.backend.SaveEntry(e)
}

// Update replaces the stored entry with the same id.
func (c *Client) Update(e model.Entry) error {
	return c.backend.UpdateEntry(e)
}

// Delete removes the entry from the database, everywhere it occurs.
func (c *Client) Delete(e model.Entry) error {
	return c.backend.DeleteEntry(e)
}

// Search returns a fresh sequence of entries matching the criteria.
func (c *Client) Search(crit backend.Criteria) (iter.Seq[model.Entry], error) {
	return c.backend.Search(crit)
}

// Apply writes every Setpoint under the snapshot back to the machine.
func (c *Client) Apply(ctx context.Context, snap *model.Snapshot) error {
	var addrs []string
	var values []any
	model.Walk(snap.Children, func(e model.Entry) {
		if sp, ok := e.(*model.Setpoint); ok {
			addrs = append(addrs, sp.PVName)
			values = append(values, sp.Data)
		}
	})
	if len(addrs) == 0 {
		return nil
	}
	if err := c.control.PutMany(ctx, addrs, values); err != nil {
		return fmt.Errorf("client: apply snapshot %s: %w", snap.ID(), err)
	}
	return nil
}

// Snap captures the current machine state of every Parameter under the
// collection into a new Snapshot linked back to it. The snapshot is
// returned unsaved; pass it to Save to persist it.
func (c *Client) Snap(ctx context.Context, coll *model.Collection, title string) (*model.Snapshot, error) {
	var params []*model.Parameter
	model.Walk(coll.Children, func(e model.Entry) {
		if p, ok := e.(*model.Parameter); ok {
			params = append(params, p)
		}
	})
	addrs := make([]string, len(params))
	for i, p := range params {
		addrs[i] = p.PVName
	}
	values, err := c.control.GetMany(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("client: snap collection %s: %w", coll.ID(), err)
	}
	snap := &model.Snapshot{
		Meta:             model.NewMeta("snapshot of " + coll.Title),
		Title:            title,
		OriginCollection: model.RefToID(coll.ID()),
		Children:         make(model.EntryList, 0, len(params)),
	}
	for i, p := range params {
		snap.Children = append(snap.Children, &model.Setpoint{
			Meta:     model.NewMeta("captured from " + p.PVName),
			PVName:   p.PVName,
			Data:     values[i],
			Status:   model.StatusNoAlarm,
			Severity: model.SeverityNoAlarm,
		})
	}
	return snap, nil
}
