// Package zfs loads and inspects ZFS dataset encryption keys by running the
// zfs command line utility.
//
// Keys are handed to `zfs load-key` through the child process's stdin
// (`-L file:///proc/self/fd/0`), so they never touch the filesystem and never
// show up in the process table or accounting logs.
//
// Basic usage:
//
//	client := zfs.NewClient(zfs.Config{})
//
//	status, err := client.KeyStatus(ctx, "rpool/home")
//	if errors.Is(err, zfs.ErrNotEncrypted) {
//		// nothing to unlock
//	}
//
//	if status == interfaces.KeyStatusUnavailable {
//		err = client.LoadKey(ctx, "rpool/home", key)
//	}
//
// Failures are reported as *cmdutil.SpawnError when the utility could not be
// started and as *cmdutil.ExecError, carrying the captured standard error,
// when it exited with a non-zero status.
package zfs
