package blob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutAndGet(t *testing.T) {
	st, err := NewLocal(t.TempDir(), "/blobs/")
	require.NoError(t, err)

	obj, err := st.Put("report.pdf", []byte("pdf bytes"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", obj.Key)
	assert.Equal(t, "/blobs/report.pdf", obj.URL)

	data, err := st.Get("report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	st, err := NewLocal(t.TempDir(), "/blobs")
	require.NoError(t, err)

	_, err = st.Put("../escape.txt", []byte("x"), "text/plain")
	require.Error(t, err)

	_, err = st.Get("../../etc/passwd")
	require.Error(t, err)
}

func TestLocalStore_GetMissing(t *testing.T) {
	st, err := NewLocal(t.TempDir(), "/blobs")
	require.NoError(t, err)

	_, err = st.Get("nope.bin")
	require.Error(t, err)
}

func TestNewKey_PreservesExtension(t *testing.T) {
	key := NewKey("annual-report.pdf")
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotEqual(t, NewKey("a.pdf"), NewKey("a.pdf"))

	assert.NotContains(t, NewKey("plain"), ".")
}
