package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"apprehension-service/internal/model"
	"apprehension-service/internal/query"
)

type fakeApprehensionRepo struct {
	records  []model.Apprehension
	total    int64
	byID     map[bson.ObjectID]*model.Apprehension
	inserted int

	gotMatch query.Match
	gotSkip  int64
	gotLimit int64
}

func (f *fakeApprehensionRepo) Find(_ context.Context, match query.Match, skip, limit int64) ([]model.Apprehension, error) {
	f.gotMatch = match
	f.gotSkip = skip
	f.gotLimit = limit

	if skip >= int64(len(f.records)) {
		return nil, nil
	}
	end := skip + limit
	if end > int64(len(f.records)) {
		end = int64(len(f.records))
	}
	return f.records[skip:end], nil
}

func (f *fakeApprehensionRepo) Count(_ context.Context, match query.Match) (int64, error) {
	return f.total, nil
}

func (f *fakeApprehensionRepo) GetByID(_ context.Context, id bson.ObjectID) (*model.Apprehension, error) {
	if record, ok := f.byID[id]; ok {
		return record, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeApprehensionRepo) Insert(_ context.Context, record *model.Apprehension) error {
	record.ID = bson.NewObjectID()
	return nil
}

func (f *fakeApprehensionRepo) InsertMany(_ context.Context, records []model.Apprehension) (int, error) {
	f.inserted = len(records)
	return len(records), nil
}

func (f *fakeApprehensionRepo) Update(_ context.Context, id bson.ObjectID, _ model.ApprehensionUpdate) (*model.Apprehension, error) {
	if record, ok := f.byID[id]; ok {
		return record, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeApprehensionRepo) Delete(_ context.Context, id bson.ObjectID) error {
	if _, ok := f.byID[id]; ok {
		delete(f.byID, id)
		return nil
	}
	return mongo.ErrNoDocuments
}

type fakeInvalidator struct {
	patterns []string
}

func (f *fakeInvalidator) DeletePattern(_ context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	return nil
}

func makeRecords(n int) []model.Apprehension {
	records := make([]model.Apprehension, n)
	for i := range records {
		records[i].ID = bson.NewObjectID()
	}
	return records
}

func TestListPaginates(t *testing.T) {
	repo := &fakeApprehensionRepo{records: makeRecords(25), total: 25}
	svc := NewApprehensionService(repo, nil)

	page, err := svc.List(context.Background(), model.ApprehensionFilter{}, model.Pagination{Page: 3, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(20), repo.gotSkip)
	assert.Equal(t, int64(10), repo.gotLimit)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 3, page.Pagination.Page)
	assert.Equal(t, int64(25), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestListNormalizesPagination(t *testing.T) {
	repo := &fakeApprehensionRepo{total: 0}
	svc := NewApprehensionService(repo, nil)

	page, err := svc.List(context.Background(), model.ApprehensionFilter{}, model.Pagination{Page: -2, Limit: 1000})

	require.NoError(t, err)
	assert.Equal(t, int64(0), repo.gotSkip)
	assert.Equal(t, int64(100), repo.gotLimit)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestListBeyondLastPage(t *testing.T) {
	repo := &fakeApprehensionRepo{records: makeRecords(5), total: 5}
	svc := NewApprehensionService(repo, nil)

	page, err := svc.List(context.Background(), model.ApprehensionFilter{}, model.Pagination{Page: 4, Limit: 20})

	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.Pagination.TotalPages)
}

func TestGetRejectsMalformedID(t *testing.T) {
	svc := NewApprehensionService(&fakeApprehensionRepo{}, nil)

	_, err := svc.Get(context.Background(), "not-a-hex-id")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetUnknownID(t *testing.T) {
	svc := NewApprehensionService(&fakeApprehensionRepo{byID: map[bson.ObjectID]*model.Apprehension{}}, nil)

	_, err := svc.Get(context.Background(), bson.NewObjectID().Hex())

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateInvalidatesCaches(t *testing.T) {
	invalidator := &fakeInvalidator{}
	svc := NewApprehensionService(&fakeApprehensionRepo{}, invalidator)

	err := svc.Create(context.Background(), &model.Apprehension{})

	require.NoError(t, err)
	assert.Contains(t, invalidator.patterns, "apprehensions:list*")
	assert.Contains(t, invalidator.patterns, "apprehensions:detail*")
	assert.Contains(t, invalidator.patterns, "apprehensions:stats*")
	assert.Contains(t, invalidator.patterns, "analytics*")
}

func TestDeleteUnknownID(t *testing.T) {
	invalidator := &fakeInvalidator{}
	svc := NewApprehensionService(&fakeApprehensionRepo{byID: map[bson.ObjectID]*model.Apprehension{}}, invalidator)

	err := svc.Delete(context.Background(), bson.NewObjectID().Hex())

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, invalidator.patterns)
}

func TestUpdateReturnsStoredRecord(t *testing.T) {
	id := bson.NewObjectID()
	stored := &model.Apprehension{ID: id}
	repo := &fakeApprehensionRepo{byID: map[bson.ObjectID]*model.Apprehension{id: stored}}
	svc := NewApprehensionService(repo, nil)

	record, err := svc.Update(context.Background(), id.Hex(), model.ApprehensionUpdate{})

	require.NoError(t, err)
	assert.Equal(t, stored, record)
}
