// Package notes is the example application's domain: a small note store
// backed by the lifespan-managed database pool.
package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/km-arc/go-lifespan/framework/lifespan"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("note not found")

type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository struct {
	db *gorm.DB
}

// Provide migrates the notes table on the pool published by db and
// publishes a Repository over it.
func Provide(db lifespan.Accessor[*gorm.DB]) lifespan.SetupFunc[*Repository] {
	return func(ctx context.Context, deps lifespan.Deps) (*Repository, lifespan.Teardown, error) {
		conn, err := db.From(deps)
		if err != nil {
			return nil, nil, err
		}
		if err := conn.WithContext(ctx).AutoMigrate(&Note{}); err != nil {
			return nil, nil, fmt.Errorf("notes: migrate: %w", err)
		}
		return &Repository{db: conn}, nil, nil
	}
}

func (r *Repository) Create(ctx context.Context, n *Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// List returns up to limit notes, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Note, error) {
	var out []Note
	err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

func (r *Repository) Find(ctx context.Context, id uint) (*Note, error) {
	var n Note
	err := r.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
