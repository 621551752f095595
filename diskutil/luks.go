package diskutil

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/samhug/zfs-remote-keyloader/cmdutil"
	"github.com/samhug/zfs-remote-keyloader/interfaces"
)

const (
	// DefaultCommand is the cryptsetup binary looked up on PATH.
	DefaultCommand = "cryptsetup"

	// DefaultMapperName is used when no mapper name is configured.
	DefaultMapperName = "keyloader"

	// cryptsetup exits with 4 for "wrong device specified", which is what
	// `status` reports for a mapping that is not active.
	exitCodeInactive = 4
)

// ErrNotLUKS is returned by KeyStatus for devices without a LUKS header.
// It matches interfaces.ErrNotEncrypted.
var ErrNotLUKS = interfaces.ErrNotEncrypted

// Config contains configuration for running cryptsetup.
type Config struct {
	// Command is the cryptsetup binary name or path. Defaults to DefaultCommand.
	Command string

	// MapperName is the device-mapper name the volume is opened as.
	MapperName string

	// Timeout bounds every cryptsetup invocation. Zero means no bound.
	Timeout time.Duration
}

// Client runs cryptsetup to query and open a LUKS device.
type Client struct {
	runner     cmdutil.Runner
	mapperName string
}

var _ interfaces.KeyLoader = (*Client)(nil)

// NewClient creates a cryptsetup client, filling in defaults for unset fields.
func NewClient(cfg Config) *Client {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.MapperName == "" {
		cfg.MapperName = DefaultMapperName
	}
	return &Client{
		runner: cmdutil.Runner{
			Program: "cryptsetup",
			Path:    cfg.Command,
			Timeout: cfg.Timeout,
		},
		mapperName: cfg.MapperName,
	}
}

// MapperDevice returns the path the opened volume appears at.
func (c *Client) MapperDevice() string {
	return "/dev/mapper/" + c.mapperName
}

// KeyStatus checks that the device carries a LUKS header and reports whether
// the mapping is already open.
func (c *Client) KeyStatus(ctx context.Context, device string) (interfaces.KeyStatus, error) {
	if _, err := c.runner.Run(ctx, "isLuks", nil, "isLuks", device); err != nil {
		if exitCode(err) == 1 {
			return interfaces.KeyStatusUnavailable, ErrNotLUKS
		}
		return interfaces.KeyStatusUnavailable, err
	}

	_, err := c.runner.Run(ctx, "status", nil, "status", c.mapperName)
	switch {
	case err == nil:
		return interfaces.KeyStatusAvailable, nil
	case exitCode(err) == exitCodeInactive:
		return interfaces.KeyStatusUnavailable, nil
	default:
		return interfaces.KeyStatusUnavailable, err
	}
}

// LoadKey opens the LUKS device, feeding the passphrase through the child's
// stdin.
func (c *Client) LoadKey(ctx context.Context, device string, key []byte) error {
	_, err := c.runner.Run(ctx, "open", bytes.NewReader(key),
		"open", "--type", "luks", "--key-file=-", device, c.mapperName)
	return err
}

// DevicePathForGlob finds a device path matching the provided glob pattern.
// Device names are not always stable across boots, e.g. /dev/disk/by-id/*-part2.
func DevicePathForGlob(deviceGlob string) (string, error) {
	devices, err := filepath.Glob(deviceGlob)
	if err != nil {
		return "", err
	} else if len(devices) == 0 {
		return "", errors.New("no devices matched")
	}
	return devices[0], nil
}

func exitCode(err error) int {
	var execErr *cmdutil.ExecError
	if errors.As(err, &execErr) {
		return execErr.ExitCode
	}
	return -1
}
