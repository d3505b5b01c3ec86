package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

// Reset deletes every row and restarts the id sequences. Tables that
// reference others are cleared first.
func (b *Backend) Reset(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDetached
	}

	order := b.resetOrder()
	err := b.withTx(ctx, func(tx *sql.Tx) error {
		for _, def := range order {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+def.Schema.Name); err != nil {
				return err
			}
		}
		for _, def := range order {
			query, args := b.dialect.resetSequence(def.Schema.Name, def.Schema.PrimaryKey)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return b.storeError(opReset, "*", err)
	}

	b.logger.Info("reset directory", slog.Int("tables", len(order)))
	return nil
}

// resetOrder lists child tables before the tables they reference.
func (b *Backend) resetOrder() []types.TableDef {
	var children, parents []types.TableDef
	for _, name := range b.catalog.Names() {
		def, _ := b.catalog.Def(name)
		if len(def.Parents()) > 0 {
			children = append(children, def)
		} else {
			parents = append(parents, def)
		}
	}
	return append(children, parents...)
}
