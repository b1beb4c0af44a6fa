// Package storage provides the filesystem side of archive writing.
//
// It handles:
//   - Creating directory trees idempotently, safe under concurrent callers
//   - Writing content files atomically (temporary file then rename)
//   - Opening image destinations for streamed downloads
//
// Failures are returned as *errors.Error values of kind directory_create or
// file_write so callers can record them per post or per image.
//
// Usage:
//
//	manager, err := storage.NewManager("out")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := manager.EnsureDir("out/2023/hello-world"); err != nil {
//	    return err
//	}
//	err = manager.WriteFile("out/2023/hello-world/index.md", data)
package storage
