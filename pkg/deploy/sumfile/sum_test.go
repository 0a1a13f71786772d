package sumfile_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"vecartdeploy/pkg/deploy/sumfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestCalculateAndWrite(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"Vecart_v1.0_Windows_x86.exe": "win",
		"Vecart_v1.0_Linux_x86":       "linux",
	}
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		paths = append(paths, p)
	}

	sums, err := sumfile.Calculate(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "Vecart_v1.0_Linux_x86", sums[0].Name)
	assert.Equal(t, "sha256:"+sha("linux"), sums[0].Digest.String())

	path, err := sumfile.Write(dir, sums)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		sha("linux")+"  Vecart_v1.0_Linux_x86\n"+sha("win")+"  Vecart_v1.0_Windows_x86.exe\n",
		string(data))

	read, err := sumfile.Read(path)
	require.NoError(t, err)
	assert.Equal(t, sums, read)
	assert.NoError(t, sumfile.Verify(context.Background(), dir, read))

	require.NoError(t, os.WriteFile(paths[0], []byte("tampered"), 0o644))
	assert.ErrorContains(t, sumfile.Verify(context.Background(), dir, read), "checksum mismatch")
}

func TestCalculateMissingFile(t *testing.T) {
	_, err := sumfile.Calculate(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}
