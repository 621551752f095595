// Package interfaces defines the unlock-backend contract shared by the
// key loader's HTTP layer, its metrics decorator and the concrete backends
// (zfs, diskutil), separating interface definitions from implementations.
package interfaces
