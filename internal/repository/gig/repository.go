package gig

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skilllink/skilllink/internal/database"
	"github.com/skilllink/skilllink/internal/entity"
)

var repoTracer = otel.Tracer("github.com/skilllink/skilllink/repository/gig")

// ErrNotFound is returned when a gig is missing.
var ErrNotFound = errors.New("gig not found")

// Filter narrows and pages gig listings.
type Filter struct {
	Category string
	Tag      string
	Search   string
	Sort     string
	Page     int
	Limit    int
}

// Repository encapsulates read/write access for gigs.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new gig using the write connection.
func (r *Repository) Create(ctx context.Context, gig *entity.Gig) error {
	if gig == nil {
		return errors.New("nil gig")
	}
	ctx, span := repoTracer.Start(ctx, "GigRepository.Create", trace.WithAttributes(attribute.Int64("gig.seller_id", gig.SellerID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(gig).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a gig by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Gig, error) {
	ctx, span := repoTracer.Start(ctx, "GigRepository.GetByID", trace.WithAttributes(attribute.Int64("gig.id", id)))
	defer span.End()

	gig := new(entity.Gig)
	err := r.reader.NewSelect().Model(gig).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return gig, nil
}

// List returns gigs matching the filter, paged.
func (r *Repository) List(ctx context.Context, filter Filter) ([]*entity.Gig, error) {
	ctx, span := repoTracer.Start(ctx, "GigRepository.List")
	defer span.End()

	gigs := make([]*entity.Gig, 0)
	q := r.reader.NewSelect().Model(&gigs)

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Tag != "" {
		q = q.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Search != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	switch filter.Sort {
	case "price_asc":
		q = q.Order("price ASC")
	case "price_desc":
		q = q.Order("price DESC")
	default:
		q = q.Order("id ASC")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	q = q.Limit(limit).Offset((page - 1) * limit)

	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return gigs, nil
}

// Update overwrites a stored gig by primary key.
func (r *Repository) Update(ctx context.Context, gig *entity.Gig) error {
	if gig == nil {
		return errors.New("nil gig")
	}
	ctx, span := repoTracer.Start(ctx, "GigRepository.Update", trace.WithAttributes(attribute.Int64("gig.id", gig.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(gig).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

// Delete removes a gig by primary key.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "GigRepository.Delete", trace.WithAttributes(attribute.Int64("gig.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.Gig)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}
