package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/avi3tal/stepflow/internal/logging"
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
)

var flowKey = []byte("flow:current")

// BadgerStore persists the graph in a badger database.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (or creates) a badger database in dir. An empty dir opens an
// in-memory database.
func Open(dir string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger store at %q", dir)
	}
	return NewBadgerStore(db, logger), nil
}

func NewBadgerStore(db *badger.DB, logger *slog.Logger) *BadgerStore {
	if logger == nil {
		logger = logging.Discard()
	}

	return &BadgerStore{
		db:     db,
		logger: logger.With("component", "flow-store"),
		now:    time.Now,
	}
}

func (bs *BadgerStore) Save(ctx context.Context, flow Flow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	flow.SavedAt = bs.now()
	data, err := encode(flow)
	if err != nil {
		return err
	}

	err = bs.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(flowKey, data))
	})
	if err != nil {
		return errors.Wrap(err, "save flow")
	}

	bs.logger.Debug("saved flow",
		"nodes", len(flow.Nodes),
		"edges", len(flow.Edges),
		"bytes", len(data))
	return nil
}

func (bs *BadgerStore) Load(ctx context.Context) (Flow, error) {
	if err := ctx.Err(); err != nil {
		return Flow{}, err
	}

	var data []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(flowKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Flow{}, ErrNotFound
	}
	if err != nil {
		return Flow{}, errors.Wrap(err, "load flow")
	}
	return decode(data)
}

func (bs *BadgerStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(flowKey)
	})
	return errors.Wrap(err, "clear flow")
}

func (bs *BadgerStore) Exists(ctx context.Context) (bool, error) {
	_, err := bs.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (bs *BadgerStore) LastSaved(ctx context.Context) (time.Time, error) {
	flow, err := bs.Load(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return flow.SavedAt, nil
}

// Close releases the database.
func (bs *BadgerStore) Close() error {
	return bs.db.Close()
}
