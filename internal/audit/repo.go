package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	"github.com/sentinelworks/sentinel-backend/pkg/pagination"
)

// Filters narrow the admin audit listing.
type Filters struct {
	Action *enums.AuditAction
}

// Repository persists and queries audit facts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an audit repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one audit fact.
func (r *Repository) Insert(ctx context.Context, row *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// List returns audit facts newest first using cursor pagination.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters Filters) (*LogList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.AuditLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &LogList{Logs: make([]LogDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: rows[limit-1].CreatedAt,
				ID:        rows[limit-1].ID,
			})
			break
		}
		list.Logs = append(list.Logs, fromModel(&rows[i]))
	}
	return list, nil
}
