package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beamtime/snapvault/pkg/backend"
	"github.com/beamtime/snapvault/pkg/backend/filestore"
	"github.com/beamtime/snapvault/pkg/backend/memstore"
	"github.com/beamtime/snapvault/pkg/control"
	"github.com/beamtime/snapvault/pkg/model"
)

func TestFromConfigResolvesRelativePath(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "snapvault.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("backend:\n  path: data/db.yaml\n"), 0o644))

	c, err := FromConfig(cfg)
	require.NoError(t, err)

	fs, ok := c.Backend().(*filestore.Store)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "data", "db.yaml"), fs.Path())
}

func TestFromConfigMissingPath(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "snapvault.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("backend: {}\n"), 0o644))

	_, err := FromConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.path")
}

func TestClientCRUDDelegation(t *testing.T) {
	c := New(memstore.New(), nil)
	p := &model.Parameter{Meta: model.NewMeta("pv"), PVName: "MOTOR:01"}

	require.NoError(t, c.Save(p))
	require.ErrorIs(t, c.Save(p), backend.ErrAlreadyExists)

	got, err := c.Get(p.ID())
	require.NoError(t, err)
	assert.Equal(t, p, got)

	require.NoError(t, c.Delete(p))
	_, err = c.Get(p.ID())
	require.ErrorIs(t, err, backend.ErrNotFound)
}

func TestApplyWritesSetpoints(t *testing.T) {
	shim := control.NewMockShim(map[string]any{"MOTOR:01": 0.0})
	layer := control.NewLayer()
	layer.Register("ca", shim)
	c := New(memstore.New(), layer)

	snap := &model.Snapshot{
		Meta:  model.NewMeta("snap"),
		Title: "restore point",
		Children: model.EntryList{
			&model.Setpoint{Meta: model.NewMeta("sp"), PVName: "MOTOR:01", Data: 7.5},
			&model.Readback{Meta: model.NewMeta("rb"), PVName: "MOTOR:01.RBV", Data: 7.4},
		},
	}
	require.NoError(t, c.Apply(context.Background(), snap))

	v, err := shim.Get(context.Background(), "MOTOR:01")
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)

	// readbacks are not written back to the machine
	_, err = shim.Get(context.Background(), "MOTOR:01.RBV")
	require.Error(t, err)
}

func TestApplyEmptySnapshotIsNoOp(t *testing.T) {
	c := New(memstore.New(), nil) // no shims registered
	snap := &model.Snapshot{Meta: model.NewMeta("empty"), Title: "empty"}
	require.NoError(t, c.Apply(context.Background(), snap))
}

func TestSnapCapturesCollection(t *testing.T) {
	shim := control.NewMockShim(map[string]any{"MOTOR:01": 1.5, "MOTOR:02": 2.5})
	layer := control.NewLayer()
	layer.Register("ca", shim)
	c := New(memstore.New(), layer)

	coll := &model.Collection{
		Meta:  model.NewMeta("motors"),
		Title: "motors",
		Children: model.EntryList{
			&model.Parameter{Meta: model.NewMeta("m1"), PVName: "MOTOR:01"},
			&model.Parameter{Meta: model.NewMeta("m2"), PVName: "MOTOR:02"},
		},
	}
	snap, err := c.Snap(context.Background(), coll, "shift end")
	require.NoError(t, err)

	assert.Equal(t, "shift end", snap.Title)
	require.NotNil(t, snap.OriginCollection)
	assert.Equal(t, coll.ID(), snap.OriginCollection.Target())

	require.Len(t, snap.Children, 2)
	sp := snap.Children[0].(*model.Setpoint)
	assert.Equal(t, "MOTOR:01", sp.PVName)
	assert.Equal(t, 1.5, sp.Data)

	// the snapshot is returned unsaved
	_, err = c.Get(snap.ID())
	require.ErrorIs(t, err, backend.ErrNotFound)
}

func TestSnapFailsWhenPVMissing(t *testing.T) {
	layer := control.NewLayer()
	layer.Register("ca", control.NewMockShim(nil))
	c := New(memstore.New(), layer)

	coll := &model.Collection{
		Meta:     model.NewMeta("motors"),
		Title:    "motors",
		Children: model.EntryList{&model.Parameter{Meta: model.NewMeta("m"), PVName: "GONE:01"}},
	}
	_, err := c.Snap(context.Background(), coll, "x")
	require.Error(t, err)
}
