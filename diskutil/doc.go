// Package diskutil unlocks LUKS encrypted block devices by running the
// cryptsetup command line utility.
//
// It implements the same KeyLoader contract as the zfs package, so the key
// loader can front either kind of volume. The "dataset" is the path of the
// LUKS device and the opened volume is mapped to /dev/mapper/<MapperName>.
// Passphrases are handed to cryptsetup on stdin via --key-file=-.
//
// Basic usage:
//
//	client := diskutil.NewClient(diskutil.Config{MapperName: "cryptdata"})
//
//	status, err := client.KeyStatus(ctx, "/dev/sdb1")
//	if errors.Is(err, interfaces.ErrNotEncrypted) {
//		// not a LUKS device
//	}
//
//	if status == interfaces.KeyStatusUnavailable {
//		err = client.LoadKey(ctx, "/dev/sdb1", passphrase)
//	}
package diskutil
