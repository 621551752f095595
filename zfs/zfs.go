package zfs

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/samhug/zfs-remote-keyloader/cmdutil"
	"github.com/samhug/zfs-remote-keyloader/interfaces"
)

const (
	// DefaultCommand is the zfs binary looked up on PATH.
	DefaultCommand = "zfs"

	// keyLocationStdin makes load-key read the key from the inherited stdin.
	keyLocationStdin = "file:///proc/self/fd/0"
)

// Config contains configuration for running the zfs utility.
type Config struct {
	// Command is the zfs binary name or path. Defaults to DefaultCommand.
	Command string

	// Timeout bounds every zfs invocation. Zero means no bound.
	Timeout time.Duration
}

// Client runs the zfs utility to query and load dataset keys.
type Client struct {
	runner cmdutil.Runner
}

var _ interfaces.KeyLoader = (*Client)(nil)

// NewClient creates a zfs client, filling in defaults for unset fields.
func NewClient(cfg Config) *Client {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	return &Client{
		runner: cmdutil.Runner{
			Program: "zfs",
			Path:    cfg.Command,
			Timeout: cfg.Timeout,
		},
	}
}

// KeyStatus runs `zfs get -H -o value keystatus` for the dataset.
func (c *Client) KeyStatus(ctx context.Context, dataset string) (interfaces.KeyStatus, error) {
	stdout, err := c.runner.Run(ctx, "get keystatus", nil, "get", "-H", "-o", "value", "keystatus", "--", dataset)
	if err != nil {
		return interfaces.KeyStatusUnavailable, err
	}

	switch value := strings.TrimSpace(cmdutil.Decode(stdout)); value {
	case "available":
		return interfaces.KeyStatusAvailable, nil
	case "unavailable":
		return interfaces.KeyStatusUnavailable, nil
	case "-":
		return interfaces.KeyStatusUnavailable, ErrNotEncrypted
	default:
		return interfaces.KeyStatusUnavailable, &UnexpectedKeyStatusError{Value: value}
	}
}

// LoadKey runs `zfs load-key` for the dataset, feeding the key through the
// child's stdin. The key is never written to disk or passed as an argument.
func (c *Client) LoadKey(ctx context.Context, dataset string, key []byte) error {
	_, err := c.runner.Run(ctx, "load-key", bytes.NewReader(key), "load-key", "-L", keyLocationStdin, "--", dataset)
	return err
}
