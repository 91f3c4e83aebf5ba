package service

import (
	"context"
	"errors"
	"time"

	"github.com/samber/mo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/gtd-inbox/internal/model"
	"github.com/d60-Lab/gtd-inbox/internal/repository"
	"github.com/d60-Lab/gtd-inbox/pkg/logger"
	"github.com/d60-Lab/gtd-inbox/pkg/monitoring"
	"github.com/d60-Lab/gtd-inbox/pkg/validator"
)

var (
	ErrBlankItem = errors.New("inbox item is blank")
	ErrInvalidID = errors.New("inbox id must be positive")
)

var tracer = otel.Tracer("github.com/d60-Lab/gtd-inbox/internal/service")

// InboxService 收集箱业务逻辑
//
// 除 GetAll 外所有方法都不向调用方返回错误：校验失败、记录不存在、存储故障
// 都折叠为 mo.None / false，存储故障会记录日志并上报。
type InboxService interface {
	GetAll(ctx context.Context) ([]*model.Inbox, error)
	GetByID(ctx context.Context, id int64) mo.Option[*model.Inbox]
	Create(ctx context.Context, candidate model.Inbox) mo.Option[*model.Inbox]
	Update(ctx context.Context, candidate model.Inbox) mo.Option[*model.Inbox]
	Delete(ctx context.Context, id int64) bool
}

// Option 服务构造选项
type Option func(*inboxService)

// WithClock 替换时间源，测试里用固定时钟
func WithClock(now func() time.Time) Option {
	return func(s *inboxService) { s.now = now }
}

type inboxService struct {
	repo repository.InboxRepository
	now  func() time.Time
}

func NewInboxService(repo repository.InboxRepository, opts ...Option) InboxService {
	s := &inboxService{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *inboxService) GetAll(ctx context.Context) ([]*model.Inbox, error) {
	ctx, span := tracer.Start(ctx, "InboxService.GetAll")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		s.fault(ctx, span, "list", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("inbox.count", len(items)))
	return items, nil
}

func (s *inboxService) GetByID(ctx context.Context, id int64) mo.Option[*model.Inbox] {
	ctx, span := tracer.Start(ctx, "InboxService.GetByID", trace.WithAttributes(attribute.Int64("inbox.id", id)))
	defer span.End()

	inbox, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		return mo.Some(inbox)
	case errors.Is(err, repository.ErrInboxNotFound):
	default:
		s.fault(ctx, span, "get", err, zap.Int64("id", id))
	}
	return mo.None[*model.Inbox]()
}

func (s *inboxService) Create(ctx context.Context, candidate model.Inbox) mo.Option[*model.Inbox] {
	ctx, span := tracer.Start(ctx, "InboxService.Create")
	defer span.End()

	if validator.IsBlank(candidate.Item) {
		s.rejected(span, "create", ErrBlankItem)
		return mo.None[*model.Inbox]()
	}

	// 只取 item，ID 与时间戳一律由服务端生成
	now := s.now().UTC()
	inbox := &model.Inbox{Item: candidate.Item, CreateTime: &now}
	if err := s.repo.Create(ctx, inbox); err != nil {
		s.fault(ctx, span, "create", err)
		return mo.None[*model.Inbox]()
	}
	span.SetAttributes(attribute.Int64("inbox.id", inbox.ID))
	return mo.Some(inbox)
}

func (s *inboxService) Update(ctx context.Context, candidate model.Inbox) mo.Option[*model.Inbox] {
	ctx, span := tracer.Start(ctx, "InboxService.Update", trace.WithAttributes(attribute.Int64("inbox.id", candidate.ID)))
	defer span.End()

	if candidate.ID <= 0 {
		s.rejected(span, "update", ErrInvalidID)
		return mo.None[*model.Inbox]()
	}
	if validator.IsBlank(candidate.Item) {
		s.rejected(span, "update", ErrBlankItem)
		return mo.None[*model.Inbox]()
	}

	updated, err := s.repo.UpdateItem(ctx, candidate.ID, candidate.Item, s.now().UTC())
	switch {
	case err == nil:
		return mo.Some(updated)
	case errors.Is(err, repository.ErrInboxNotFound):
		s.rejected(span, "update", err)
	default:
		s.fault(ctx, span, "update", err, zap.Int64("id", candidate.ID))
	}
	return mo.None[*model.Inbox]()
}

func (s *inboxService) Delete(ctx context.Context, id int64) bool {
	ctx, span := tracer.Start(ctx, "InboxService.Delete", trace.WithAttributes(attribute.Int64("inbox.id", id)))
	defer span.End()

	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		return true
	case errors.Is(err, repository.ErrInboxNotFound):
		s.rejected(span, "delete", err)
	default:
		s.fault(ctx, span, "delete", err, zap.Int64("id", id))
	}
	return false
}

// rejected 业务上的否定结果，不算故障
func (s *inboxService) rejected(span trace.Span, op string, reason error) {
	span.SetAttributes(attribute.String("inbox.rejected", reason.Error()))
	logger.Debug("inbox "+op+" rejected", zap.Error(reason))
}

func (s *inboxService) fault(ctx context.Context, span trace.Span, op string, err error, fields ...zap.Field) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error("inbox "+op+" failed", append(fields, zap.Error(err))...)
	monitoring.CaptureError(ctx, "inbox."+op, err)
}
