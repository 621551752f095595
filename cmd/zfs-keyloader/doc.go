// Package main (cmd/zfs-keyloader) implements the ZFS remote key loader.
//
// The server subcommand lets an operator supply the decryption key of an
// encrypted ZFS dataset over HTTP, typically from an initramfs where no
// console is available. On startup it checks the dataset key status:
//
//   - available: the key is already loaded, the process exits 0 without
//     opening a listener
//   - unavailable: a form is served on --listen-addr until a submitted key is
//     accepted by `zfs load-key`, then the server shuts down gracefully and
//     the process exits 0
//   - not encrypted or any other failure: the process exits non-zero
//
// The key is handed to zfs on stdin. It is never written to disk, never put on
// a command line and never logged. Authentication and TLS are expected to be
// provided by whatever fronts the listener.
//
// Example usage:
//
//	zfs-remote-keyloader server --dataset rpool/home --listen-addr 0.0.0.0:3333
//
//	zfs-remote-keyloader status --dataset rpool/home
package main
