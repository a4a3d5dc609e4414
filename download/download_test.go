package download

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotosm/scaleodm-go/client"
)

var noContext = context.Background()

type fakeAssetClient struct {
	data []byte
	err  error
}

func (f *fakeAssetClient) DownloadAsset(context.Context, string, string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func zipFixture(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	f, err := zw.Create("odm_orthophoto/odm_orthophoto.tif")
	require.NoError(t, err)
	_, err = f.Write([]byte("not-really-a-tif"))
	require.NoError(t, err)
	f, err = zw.Create("log.json")
	require.NoError(t, err)
	_, err = f.Write([]byte(`{"stages":[]}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFetch_ExtractsArchive(t *testing.T) {
	dir := t.TempDir()
	d := New(&fakeAssetClient{data: zipFixture(t)}, dir)

	dest, err := d.Fetch(noContext, "abc", "all.zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc"), dest)

	data, err := os.ReadFile(filepath.Join(dest, "odm_orthophoto", "odm_orthophoto.tif"))
	require.NoError(t, err)
	assert.Equal(t, "not-really-a-tif", string(data))

	data, err = os.ReadFile(filepath.Join(dest, "log.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"stages":[]}`, string(data))

	// the archive itself is cleaned up after extraction
	_, err = os.Stat(filepath.Join(dest, "all.zip"))
	assert.True(t, os.IsNotExist(err))
}

func TestFetch_PlainAsset(t *testing.T) {
	dir := t.TempDir()
	d := New(&fakeAssetClient{data: []byte("tif-bytes")}, dir)

	path, err := d.Fetch(noContext, "abc", "orthophoto.tif")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc", "orthophoto.tif"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tif-bytes", string(data))
}

func TestFetch_ClientError(t *testing.T) {
	d := New(&fakeAssetClient{err: &client.RequestError{Status: 404, Body: "Task not found"}}, t.TempDir())

	_, err := d.Fetch(noContext, "abc", "all.zip")
	rerr := &client.RequestError{}
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 404, rerr.Status)
}

func TestFetch_ExtractFailureCleansUp(t *testing.T) {
	// Save the original function to restore it later
	originalExtractFn := extractFn
	defer func() { extractFn = originalExtractFn }() // Restore after the test

	extractFn = func(context.Context, string, string) error {
		return assert.AnError
	}

	dir := t.TempDir()
	d := New(&fakeAssetClient{data: []byte("corrupt")}, dir)

	_, err := d.Fetch(noContext, "abc", "all.zip")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "abc"))
	assert.True(t, os.IsNotExist(statErr), "partial output must be removed")
}
