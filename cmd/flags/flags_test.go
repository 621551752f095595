package flags

import (
	"testing"

	"github.com/samhug/zfs-remote-keyloader/diskutil"
	"github.com/samhug/zfs-remote-keyloader/interfaces"
	"github.com/samhug/zfs-remote-keyloader/zfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newKeyLoaderFromArgs(t *testing.T, args ...string) (interfaces.KeyLoader, error) {
	t.Helper()

	var (
		loader interfaces.KeyLoader
		err    error
	)
	app := &cli.App{
		Flags: KeyLoaderFlags,
		Action: func(cCtx *cli.Context) error {
			loader, err = NewKeyLoader(cCtx)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return loader, err
}

func TestNewKeyLoader(t *testing.T) {
	loader, err := newKeyLoaderFromArgs(t, "--dataset", "rpool/home")
	require.NoError(t, err)
	assert.IsType(t, &zfs.Client{}, loader)

	loader, err = newKeyLoaderFromArgs(t, "--dataset", "/dev/sdb1", "--backend", "luks", "--luks-mapper-name", "cryptdata")
	require.NoError(t, err)
	require.IsType(t, &diskutil.Client{}, loader)
	assert.Equal(t, "/dev/mapper/cryptdata", loader.(*diskutil.Client).MapperDevice())

	_, err = newKeyLoaderFromArgs(t, "--dataset", "rpool/home", "--backend", "btrfs")
	assert.ErrorContains(t, err, `unknown backend "btrfs"`)
}
