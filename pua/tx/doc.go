// Package tx guards a set of files so a multi-step install either completes
// or leaves every touched file exactly as it was.
//
// # Overview
//
// Before a file is modified it is registered with Guard.Backup, which copies
// its bytes to a sibling backup (<name>_BAK<ext>) and pushes an undo frame.
// A file that does not exist yet gets a zero-byte backup and a frame marked
// as not pre-existing, so rollback deletes whatever the install created.
//
// Guard lifecycle:
//  1. Begin(): open the scope
//  2. Backup(path) for each file, then modify it
//  3. Commit(): delete every backup, keep the new contents
//  4. Rollback(): restore frames newest first, delete backups
//
// Run wraps the lifecycle around a function and resolves every frame exactly
// once, including when the function panics.
//
// # Rollback errors
//
// Rollback never fails. A frame that cannot be restored is logged and
// recorded in RollbackErrors; its backup is left on disk so the user can
// recover by hand. Run always returns the error that triggered the rollback.
//
// # Example
//
//	g := tx.NewGuard(tx.Options{})
//	err := g.Run(ctx, func(ctx context.Context, g *tx.Guard) error {
//	    if _, err := g.Backup(tablePath); err != nil {
//	        return err
//	    }
//	    return rewrite(tablePath)
//	})
//
// A Guard is NOT thread-safe. Only one goroutine should use it at a time.
package tx
