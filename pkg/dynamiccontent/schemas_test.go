package dynamiccontent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
	"github.com/emdneves/admin-panel/pkg/dynamiccontent/remote/memory"
)

// fakeRemote delegates to an embedded Remote, letting a test override single
// methods for error injection or call counting.
type fakeRemote struct {
	dynamiccontent.Remote

	listTypesFn  func(ctx context.Context) ([]dynamiccontent.ContentType, error)
	listFn       func(ctx context.Context, typeID uuid.UUID) ([]dynamiccontent.ContentItem, error)
	updateItemFn func(ctx context.Context, req dynamiccontent.UpdateContentRequest) (*dynamiccontent.ContentItem, error)
	deleteItemFn func(ctx context.Context, id uuid.UUID) error
	healthFn     func(ctx context.Context) error
}

func (f *fakeRemote) ListContentTypes(ctx context.Context) ([]dynamiccontent.ContentType, error) {
	if f.listTypesFn != nil {
		return f.listTypesFn(ctx)
	}
	return f.Remote.ListContentTypes(ctx)
}

func (f *fakeRemote) ListContent(ctx context.Context, typeID uuid.UUID) ([]dynamiccontent.ContentItem, error) {
	if f.listFn != nil {
		return f.listFn(ctx, typeID)
	}
	return f.Remote.ListContent(ctx, typeID)
}

func (f *fakeRemote) UpdateContent(ctx context.Context, req dynamiccontent.UpdateContentRequest) (*dynamiccontent.ContentItem, error) {
	if f.updateItemFn != nil {
		return f.updateItemFn(ctx, req)
	}
	return f.Remote.UpdateContent(ctx, req)
}

func (f *fakeRemote) DeleteContent(ctx context.Context, id uuid.UUID) error {
	if f.deleteItemFn != nil {
		return f.deleteItemFn(ctx, id)
	}
	return f.Remote.DeleteContent(ctx, id)
}

func (f *fakeRemote) Health(ctx context.Context) error {
	if f.healthFn != nil {
		return f.healthFn(ctx)
	}
	return f.Remote.Health(ctx)
}

// seedType creates a content type on the remote and fails the test on error.
func seedType(t *testing.T, r dynamiccontent.Remote, name string, fields ...dynamiccontent.FieldSpec) *dynamiccontent.ContentType {
	t.Helper()
	created, err := r.CreateContentType(context.Background(), dynamiccontent.CreateContentTypeRequest{
		Name:   name,
		Fields: fields,
	})
	require.NoError(t, err)
	return created
}

func seedItem(t *testing.T, r dynamiccontent.Remote, typeID uuid.UUID, data map[string]any) *dynamiccontent.ContentItem {
	t.Helper()
	created, err := r.CreateContent(context.Background(), dynamiccontent.CreateContentRequest{
		ContentTypeID: typeID,
		Data:          data,
	})
	require.NoError(t, err)
	return created
}

func TestSchemaStoreRefreshSelectsFirst(t *testing.T) {
	ctx := context.Background()
	remote := memory.New()
	first := seedType(t, remote, "articles",
		dynamiccontent.FieldSpec{Name: "title", Kind: dynamiccontent.FieldText})
	seedType(t, remote, "authors",
		dynamiccontent.FieldSpec{Name: "name", Kind: dynamiccontent.FieldText})

	store := dynamiccontent.NewSchemaStore(remote, nil)
	require.NoError(t, store.Refresh(ctx))

	assert.Len(t, store.List(), 2)
	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, first.ID, selected.ID)
}

func TestSchemaStoreSelectionSurvivesRefresh(t *testing.T) {
	ctx := context.Background()
	remote := memory.New()
	seedType(t, remote, "articles",
		dynamiccontent.FieldSpec{Name: "title", Kind: dynamiccontent.FieldText})
	second := seedType(t, remote, "authors",
		dynamiccontent.FieldSpec{Name: "name", Kind: dynamiccontent.FieldText})

	store := dynamiccontent.NewSchemaStore(remote, nil)
	require.NoError(t, store.Refresh(ctx))
	_, err := store.Select(second.ID)
	require.NoError(t, err)

	require.NoError(t, store.Refresh(ctx))
	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, second.ID, selected.ID)
}

func TestSchemaStoreDeleteReselects(t *testing.T) {
	ctx := context.Background()
	remote := memory.New()
	first := seedType(t, remote, "articles",
		dynamiccontent.FieldSpec{Name: "title", Kind: dynamiccontent.FieldText})
	second := seedType(t, remote, "authors",
		dynamiccontent.FieldSpec{Name: "name", Kind: dynamiccontent.FieldText})

	store := dynamiccontent.NewSchemaStore(remote, nil)
	require.NoError(t, store.Refresh(ctx))
	_, err := store.Select(second.ID)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, second.ID))
	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, first.ID, selected.ID)

	require.NoError(t, store.Delete(ctx, first.ID))
	_, ok = store.Selected()
	assert.False(t, ok)
}

func TestSchemaStoreFailedRefreshKeepsCache(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	seedType(t, backend, "articles",
		dynamiccontent.FieldSpec{Name: "title", Kind: dynamiccontent.FieldText})

	remote := &fakeRemote{Remote: backend}
	store := dynamiccontent.NewSchemaStore(remote, nil)
	require.NoError(t, store.Refresh(ctx))

	remote.listTypesFn = func(ctx context.Context) ([]dynamiccontent.ContentType, error) {
		return nil, errors.New("backend down")
	}
	require.Error(t, store.Refresh(ctx))
	assert.Len(t, store.List(), 1, "failed refresh must not clear the cache")
}

func TestSchemaStoreCreateValidates(t *testing.T) {
	ctx := context.Background()
	store := dynamiccontent.NewSchemaStore(memory.New(), nil)

	tests := []struct {
		name    string
		req     dynamiccontent.CreateContentTypeRequest
		wantErr error
	}{
		{
			name:    "empty name",
			req:     dynamiccontent.CreateContentTypeRequest{},
			wantErr: dynamiccontent.ErrTypeNameRequired,
		},
		{
			name: "duplicate field names",
			req: dynamiccontent.CreateContentTypeRequest{
				Name: "articles",
				Fields: []dynamiccontent.FieldSpec{
					{Name: "title", Kind: dynamiccontent.FieldText},
					{Name: "title", Kind: dynamiccontent.FieldText},
				},
			},
			wantErr: dynamiccontent.ErrDuplicateFieldName,
		},
		{
			name: "enum without options",
			req: dynamiccontent.CreateContentTypeRequest{
				Name: "articles",
				Fields: []dynamiccontent.FieldSpec{
					{Name: "status", Kind: dynamiccontent.FieldEnum},
				},
			},
			wantErr: dynamiccontent.ErrEnumOptionsRequired,
		},
		{
			name: "relation without target",
			req: dynamiccontent.CreateContentTypeRequest{
				Name: "articles",
				Fields: []dynamiccontent.FieldSpec{
					{Name: "author", Kind: dynamiccontent.FieldRelation},
				},
			},
			wantErr: dynamiccontent.ErrRelationTargetRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
	assert.Empty(t, store.List(), "no invalid type may enter the cache")
}
