package images

import (
	"context"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/shop-admin/internal/db"
)

// Smallest valid PNG header is enough for content sniffing.
var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	return NewService(db.NewMemoryStore(), DefaultConfig(), "/api/services", logger)
}

func TestService_UploadAndData(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	added, err := svc.Upload(ctx, "oil-change", []File{{Name: "bay.png", Type: "image/jpeg", Data: pngData}})
	require.NoError(t, err)
	require.Len(t, added, 1)
	img := added[0]
	assert.Equal(t, "image/png", img.Type)
	assert.Equal(t, int64(len(pngData)), img.Size)
	assert.Equal(t, "/api/services/oil-change/images/"+img.ID, img.URL)
	assert.True(t, img.IsPrimary)

	data, contentType, err := svc.Data(ctx, "oil-change", img.ID)
	require.NoError(t, err)
	assert.Equal(t, pngData, data)
	assert.Equal(t, "image/png", contentType)

	list, err := svc.List(ctx, "oil-change")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other, err := svc.List(ctx, "brakes")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestService_UploadKeepsBytesOfSameNamedFiles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	front := append(append([]byte{}, pngData...), 'A')
	rear := append(append([]byte{}, pngData...), 'B', 'B')
	added, err := svc.Upload(ctx, "bodywork", []File{
		{Name: "photo.png", Data: front},
		{Name: "photo.png", Data: rear},
	})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, int64(len(front)), added[0].Size)
	assert.Equal(t, int64(len(rear)), added[1].Size)

	for i, want := range [][]byte{front, rear} {
		data, _, err := svc.Data(ctx, "bodywork", added[i].ID)
		require.NoError(t, err)
		assert.Equal(t, want, data, "image %d", i)
	}
}

func TestService_RejectsNonImageData(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Upload(context.Background(), "oil-change", []File{{Name: "x.jpg", Type: "image/jpeg", Data: []byte("plain text")}})
	var uerr *UploadError
	assert.ErrorAs(t, err, &uerr)
}

func TestService_GalleryOperations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	added, err := svc.Upload(ctx, "s1", []File{
		{Name: "a.png", Data: pngData},
		{Name: "b.png", Data: pngData},
	})
	require.NoError(t, err)
	first, second := added[0].ID, added[1].ID

	require.NoError(t, svc.SetPrimary(ctx, "s1", second))
	require.NoError(t, svc.UpdateAltText(ctx, "s1", first, "Engine bay"))
	require.NoError(t, svc.Move(ctx, "s1", 1, 0))

	list, err := svc.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.True(t, list[0].IsPrimary)
	assert.Equal(t, "Engine bay", list[1].AltText)

	require.NoError(t, svc.Remove(ctx, "s1", second))
	list, err = svc.List(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsPrimary)

	_, _, err = svc.Data(ctx, "s1", second)
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, "s1", second), ErrImageNotFound)
}
