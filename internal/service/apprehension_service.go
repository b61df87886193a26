package service

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"

	"apprehension-service/internal/cache"
	"apprehension-service/internal/importer"
	"apprehension-service/internal/model"
	"apprehension-service/internal/query"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ApprehensionRepository is the store surface for individual records.
type ApprehensionRepository interface {
	Find(ctx context.Context, match query.Match, skip, limit int64) ([]model.Apprehension, error)
	Count(ctx context.Context, match query.Match) (int64, error)
	GetByID(ctx context.Context, id bson.ObjectID) (*model.Apprehension, error)
	Insert(ctx context.Context, record *model.Apprehension) error
	InsertMany(ctx context.Context, records []model.Apprehension) (int, error)
	Update(ctx context.Context, id bson.ObjectID, update model.ApprehensionUpdate) (*model.Apprehension, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// PatternInvalidator drops cached responses by key prefix after writes.
type PatternInvalidator interface {
	DeletePattern(ctx context.Context, pattern string) error
}

type ApprehensionService struct {
	records ApprehensionRepository
	cache   PatternInvalidator
}

// NewApprehensionService wires the record store and an optional cache; a nil
// cache disables invalidation.
func NewApprehensionService(records ApprehensionRepository, invalidator PatternInvalidator) *ApprehensionService {
	return &ApprehensionService{records: records, cache: invalidator}
}

// List returns one page of records, newest apprehension first. The page query
// and the total count run concurrently.
func (s *ApprehensionService) List(ctx context.Context, filter model.ApprehensionFilter, page model.Pagination) (*model.PaginatedApprehensions, error) {
	page = page.Normalize(defaultPageLimit, maxPageLimit)
	match := query.ForApprehensions(filter)

	var (
		records []model.Apprehension
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.records.Find(gctx, match, page.Skip(), int64(page.Limit))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.records.Count(gctx, match)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if records == nil {
		records = []model.Apprehension{}
	}
	return &model.PaginatedApprehensions{
		Data:       records,
		Pagination: model.NewPageMeta(page, total),
	}, nil
}

func (s *ApprehensionService) Get(ctx context.Context, id string) (*model.Apprehension, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	record, err := s.records.GetByID(ctx, objectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ApprehensionService) Create(ctx context.Context, record *model.Apprehension) error {
	if err := s.records.Insert(ctx, record); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ApprehensionService) Update(ctx context.Context, id string, update model.ApprehensionUpdate) (*model.Apprehension, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	record, err := s.records.Update(ctx, objectID, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return record, nil
}

func (s *ApprehensionService) Delete(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.records.Delete(ctx, objectID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	s.invalidate(ctx)
	return nil
}

// ImportXLSX parses an uploaded workbook and bulk-inserts every usable row.
// Rows the store rejects are counted as skipped rather than failing the
// whole import.
func (s *ApprehensionService) ImportXLSX(ctx context.Context, r io.Reader) (*model.ImportResult, error) {
	records, err := importer.Parse(r)
	if err != nil {
		return nil, invalidParameterf("unreadable workbook: %v", err)
	}
	if len(records) == 0 {
		return &model.ImportResult{}, nil
	}

	imported, err := s.records.InsertMany(ctx, records)
	if err != nil && imported == 0 {
		return nil, err
	}

	s.invalidate(ctx)
	return &model.ImportResult{
		Total:    len(records),
		Imported: imported,
		Skipped:  len(records) - imported,
	}, nil
}

// invalidate drops every cached response family touched by record writes.
// Invalidation is best effort; the write already succeeded.
func (s *ApprehensionService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, prefix := range []string{cache.PrefixList, cache.PrefixDetail, cache.PrefixStats, cache.PrefixAnalytics} {
		_ = s.cache.DeletePattern(ctx, prefix+"*")
	}
}
