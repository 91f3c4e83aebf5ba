package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/gtd-inbox/internal/model"
)

// ErrInboxNotFound 指定 ID 的条目不存在
var ErrInboxNotFound = errors.New("inbox not found")

// InboxRepository 收集箱仓储接口
type InboxRepository interface {
	// List 返回全部条目，按 ID 升序
	List(ctx context.Context) ([]*model.Inbox, error)

	// GetByID 不存在时返回 ErrInboxNotFound
	GetByID(ctx context.Context, id int64) (*model.Inbox, error)

	// Create 写入新条目，ID 由数据库分配并回填
	Create(ctx context.Context, inbox *model.Inbox) error

	// UpdateItem 在一个事务内只改 item 和 modify_time，返回更新后的整行
	UpdateItem(ctx context.Context, id int64, item string, modifiedAt time.Time) (*model.Inbox, error)

	// Delete 不存在时返回 ErrInboxNotFound
	Delete(ctx context.Context, id int64) error

	// Count 统计条目数量
	Count(ctx context.Context) (int64, error)
}

type inboxRepository struct {
	db *gorm.DB
}

// NewInboxRepository 创建收集箱仓储
func NewInboxRepository(db *gorm.DB) InboxRepository {
	return &inboxRepository{db: db}
}

func (r *inboxRepository) List(ctx context.Context) ([]*model.Inbox, error) {
	res := make([]*model.Inbox, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&res).Error; err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return res, nil
}

func (r *inboxRepository) GetByID(ctx context.Context, id int64) (*model.Inbox, error) {
	var inbox model.Inbox
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inbox).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInboxNotFound
		}
		return nil, fmt.Errorf("get inbox %d: %w", id, err)
	}
	return &inbox, nil
}

func (r *inboxRepository) Create(ctx context.Context, inbox *model.Inbox) error {
	if err := r.db.WithContext(ctx).Create(inbox).Error; err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}
	return nil
}

func (r *inboxRepository) UpdateItem(ctx context.Context, id int64, item string, modifiedAt time.Time) (*model.Inbox, error) {
	var updated model.Inbox
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Inbox{}).
			Where("id = ?", id).
			Updates(map[string]any{"item": item, "modify_time": modifiedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInboxNotFound
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, ErrInboxNotFound) {
			return nil, ErrInboxNotFound
		}
		return nil, fmt.Errorf("update inbox %d: %w", id, err)
	}
	return &updated, nil
}

func (r *inboxRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Inbox{})
	if res.Error != nil {
		return fmt.Errorf("delete inbox %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInboxNotFound
	}
	return nil
}

func (r *inboxRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Inbox{}).Count(&count).Error
	return count, err
}

// InitSchema 初始化数据库表结构
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Inbox{}); err != nil {
		return fmt.Errorf("failed to migrate inbox table: %w", err)
	}
	return nil
}
