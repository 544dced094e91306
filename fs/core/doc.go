// Package core defines the capability set that every storage backend
// implements, independent of the protocol used to reach it.
//
// # Interface Hierarchy
//
// The main Backend interface is composed of five sub-interfaces:
//
//   - QueryFS: Path queries (Exists, IsDir, IsFile, Stat)
//   - GlobFS: Pattern expansion (Glob)
//   - ReadFS: Read streams (Open)
//   - WriteFS: Write streams and directories (Create, MkdirAll)
//   - ManageFS: Removal (Remove)
//
// Optional capabilities are discovered with type assertions:
//
//   - Aborter: Writers that can discard data instead of committing it
//
// Every method takes a context.Context and a protocol-stripped path. Backends
// report missing paths with *fs.PathError values wrapping fs.ErrNotExist, the
// same way the standard library does.
//
// # Usage Example
//
//	func Fetch(ctx context.Context, remote, local core.Backend, key, dst string) error {
//	    if err := local.MkdirAll(ctx, path.Dir(dst), true); err != nil {
//	        return err
//	    }
//	    _, err := core.Copy(ctx, remote, key, local, dst)
//	    return err
//	}
//
// # Provider Implementations
//
//   - github.com/amphancm/olmocr/fs/billy - local disk and in-memory backends
//   - github.com/amphancm/olmocr/fs/minio - S3-compatible object stores
//   - github.com/amphancm/olmocr/fs/web - read-only HTTP(S)
package core
