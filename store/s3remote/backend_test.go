package s3remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/prefs"
	"github.com/poiesic/stride/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}

// mockS3 is a thread-safe in-memory S3 backend for testing.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte

	listErr error
	putErr  error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func newBackend(t *testing.T, mock *mockS3, opts ...Option) *Backend {
	t.Helper()
	p, err := prefs.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	b, err := New(store.NewSelector(p), mock, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func configured(t *testing.T, mock *mockS3, opts ...Option) *Backend {
	t.Helper()
	b := newBackend(t, mock, opts...)
	_, err := b.SelectRoot(context.Background(), "photos")
	require.NoError(t, err)
	return b
}

func sampleItem(created int64) (*core.Item, map[string][]byte) {
	meta := &core.Item{
		ID:        core.NewID(),
		Client:    "ACME",
		CreatedAt: created,
		Images: []core.ImageRef{
			{ID: "img-1", Name: "front.jpg", Mime: "image/jpeg"},
			{ID: "img-2", Name: "back.png", Mime: "image/png"},
		},
	}
	blobs := map[string][]byte{
		"img-1": []byte("front"),
		"img-2": []byte("back"),
	}
	return meta, blobs
}

func TestSelectRoot_PersistsBucket(t *testing.T) {
	b := newBackend(t, newMockS3())
	ref, err := b.SelectRoot(context.Background(), "photos")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, core.ModeRemote, ref.Mode)
	assert.Equal(t, "photos", ref.Ref)
}

func TestSelectRoot_AccessDeniedReturnsNil(t *testing.T) {
	mock := newMockS3()
	b := newBackend(t, mock)
	// Wrapped so classification has to unwrap to the API error code rather
	// than inspect the message.
	mock.listErr = fmt.Errorf("probe bucket: %w", &apiError{code: "AccessDenied", msg: "forbidden"})

	ref, err := b.SelectRoot(context.Background(), "photos")
	require.NoError(t, err)
	assert.Nil(t, ref)
	assert.Nil(t, b.GetRoot())
}

func TestVerifyRoot_LostOnListFailure(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock)

	require.NotNil(t, b.VerifyRoot(context.Background()))

	mock.listErr = &apiError{code: "NoSuchBucket", msg: "bucket removed"}
	assert.Nil(t, b.VerifyRoot(context.Background()))

	_, err := b.ListItems(context.Background())
	assert.ErrorIs(t, err, store.ErrRootLost)
}

func TestWriteItem_UploadsBlobsAndRecord(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock)
	ctx := context.Background()

	meta, blobs := sampleItem(1000)
	require.NoError(t, b.WriteItem(ctx, meta, blobs))

	assert.Contains(t, mock.objects, "records/"+meta.ID+".json")
	assert.Contains(t, mock.objects, "photos/"+meta.ID+"/img-1.jpg")
	assert.Contains(t, mock.objects, "photos/"+meta.ID+"/img-2.png")
}

func TestWriteItem_GeneratesPreviews(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock, WithPreview(func(blob []byte) ([]byte, error) {
		return append([]byte("small-"), blob...), nil
	}))
	ctx := context.Background()

	meta, blobs := sampleItem(1000)
	require.NoError(t, b.WriteItem(ctx, meta, blobs))

	assert.Equal(t, []byte("small-front"), mock.objects["previews/"+meta.ID+"/img-1.jpg"])
}

func TestWriteItem_UploadFailureSurfaces(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock)
	mock.putErr = &apiError{code: "InternalError", msg: "upload exploded"}

	meta, blobs := sampleItem(1000)
	err := b.WriteItem(context.Background(), meta, blobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload exploded")
}

func TestWriteItem_MergesImageLists(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock)
	ctx := context.Background()

	meta, blobs := sampleItem(1000)
	require.NoError(t, b.WriteItem(ctx, meta, blobs))

	// re-save the same item with one new image only
	update := *meta
	update.Images = []core.ImageRef{{ID: "img-3", Name: "side.jpg", Mime: "image/jpeg"}}
	require.NoError(t, b.WriteItem(ctx, &update, map[string][]byte{"img-3": []byte("side")}))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Len(t, items[0].Meta.Images, 3)
}

func TestListItems_NewestFirstAndPreviewPreferred(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock, WithPreview(func(blob []byte) ([]byte, error) {
		return append([]byte("p-"), blob...), nil
	}))
	ctx := context.Background()

	older, olderBlobs := sampleItem(1000)
	newer, newerBlobs := sampleItem(2000)
	require.NoError(t, b.WriteItem(ctx, older, olderBlobs))
	require.NoError(t, b.WriteItem(ctx, newer, newerBlobs))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].Meta.ID)
	assert.Equal(t, older.ID, items[1].Meta.ID)
	// previews win over originals
	assert.Equal(t, []byte("p-front"), items[0].Blobs["img-1"])
}

func TestListItems_CapKeepsNewest(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock, WithListingCap(1))
	ctx := context.Background()

	// The older item's record key sorts first; the cap must still keep the
	// newest item.
	older, olderBlobs := sampleItem(1000)
	older.ID = "aaaa"
	older.Client = "old"
	newer, newerBlobs := sampleItem(2000)
	newer.ID = "zzzz"
	newer.Client = "new"
	require.NoError(t, b.WriteItem(ctx, older, olderBlobs))
	require.NoError(t, b.WriteItem(ctx, newer, newerBlobs))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].Meta.Client)
}

func TestListItems_FallsBackToOriginal(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock) // no preview fn: only originals stored
	ctx := context.Background()

	meta, blobs := sampleItem(1000)
	require.NoError(t, b.WriteItem(ctx, meta, blobs))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []byte("front"), items[0].Blobs["img-1"])
}

func TestListItems_SkipsCorruptRecord(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock)
	ctx := context.Background()

	meta, blobs := sampleItem(1000)
	require.NoError(t, b.WriteItem(ctx, meta, blobs))
	mock.objects["records/broken.json"] = []byte("{nope")

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, meta.ID, items[0].Meta.ID)
}

func TestDeleteItem_RemovesBlobsAndRecord(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock)
	ctx := context.Background()

	meta, blobs := sampleItem(1000)
	require.NoError(t, b.WriteItem(ctx, meta, blobs))
	require.NoError(t, b.DeleteItem(ctx, meta.ID, meta.ImageIDs()))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotContains(t, mock.objects, "photos/"+meta.ID+"/img-1.jpg")
}

func TestClearAll(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock)
	ctx := context.Background()

	for i := range 3 {
		meta, blobs := sampleItem(int64(1000 + i))
		require.NoError(t, b.WriteItem(ctx, meta, blobs))
	}
	require.NoError(t, b.ClearAll(ctx))

	items, err := b.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	require.NotNil(t, b.GetRoot()) // configuration survives ClearAll
}

func TestForgetConfiguration(t *testing.T) {
	mock := newMockS3()
	b := configured(t, mock)

	require.NoError(t, b.ForgetConfiguration(context.Background()))
	assert.Nil(t, b.GetRoot())
}
