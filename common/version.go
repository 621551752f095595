package common

// PackageName is used as the metrics namespace and default log service tag.
const PackageName = "zfs_keyloader"

// Version is overridden at build time with -ldflags "-X ...common.Version=<v>".
var Version = "dev"
