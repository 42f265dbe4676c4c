// Package persistence keeps device state across daemon restarts.
//
// The Store is a section/key/value map held in memory. Devices read
// their section at construction and mark the store changed whenever
// their lighting, DPI or poll rate moves on. The Syncer notices the
// changed flag on its next tick, asks every device to snapshot itself
// into the store and flushes the result to SQLite in one transaction.
//
// # Layout
//
// One section per device storage name (the serial, or a fixed model
// name for hardware without a usable serial). Keys are
// "<zone>_<field>" for zone state plus dpi_x, dpi_y and poll_rate.
//
// # Usage
//
//	store := persistence.NewStore(persistence.NewSQLiteRepository(db.DB))
//	if err := store.Load(ctx); err != nil {
//	    return err
//	}
//	syncer := persistence.NewSyncer(store, 10*time.Second, manager.Snapshotters)
//	syncer.Start(ctx)
//	defer syncer.Stop(context.Background())
package persistence
