package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallpress/folio/internal/catalog/domain"
	"github.com/smallpress/folio/pkg/db"
	"github.com/smallpress/folio/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateTitle(ctx context.Context, req domain.CreateTitleRequest) (domain.TitleDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.TitleDetail{}, domain.ErrInvalidName
	}

	authorNames := make([]string, 0, len(req.Authors))
	for _, a := range req.Authors {
		a = strings.TrimSpace(a)
		if a != "" {
			authorNames = append(authorNames, a)
		}
	}
	if len(authorNames) == 0 {
		return domain.TitleDetail{}, domain.ErrNoAuthors
	}

	var detail domain.TitleDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		title := &domain.Title{
			ID:        s.genID.Generate(),
			Name:      name,
			Slug:      slug.Make(name),
			CreatedAt: now,
			UpdatedAt: now,
		}

		if publisherName := strings.TrimSpace(req.Publisher); publisherName != "" {
			publisher, err := s.repo.EnsurePublisher(ctx, tx, &domain.Publisher{
				ID:        s.genID.Generate(),
				Name:      publisherName,
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil {
				return err
			}
			title.PublisherID = &publisher.ID
			detail.Publisher = publisher
		}

		if err := s.repo.InsertTitle(ctx, tx, title); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateSlug
			}
			return err
		}

		for i, authorName := range authorNames {
			author := &domain.Author{
				ID:        s.genID.Generate(),
				Name:      authorName,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.repo.EnsureAuthor(ctx, tx, author); err != nil {
				return err
			}
			if err := s.repo.LinkAuthor(ctx, tx, &domain.TitleAuthor{
				TitleID:   title.ID,
				AuthorID:  author.ID,
				Position:  i,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			detail.Authors = append(detail.Authors, *author)
		}

		detail.Title = *title
		return nil
	})
	if err != nil {
		return domain.TitleDetail{}, err
	}

	s.log.Info("title created",
		zap.String("title_id", detail.Title.ID.String()),
		zap.String("slug", detail.Title.Slug),
		zap.Int("authors", len(detail.Authors)),
	)
	return detail, nil
}

func (s *Service) ListTitles(ctx context.Context, req domain.ListTitleRequest) (domain.ListTitleResponse, error) {
	page := pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	}
	if page.PageSize <= 0 {
		page.PageSize = 25
	}

	titles, err := s.repo.ListTitles(ctx, s.db, page)
	if err != nil {
		return domain.ListTitleResponse{}, err
	}

	pageInfo, titles := pagination.BuildCursorPageInfo(titles, page.PageSize, func(t *domain.Title) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        t.ID.String(),
			CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	resp := domain.ListTitleResponse{PageInfo: *pageInfo}
	for _, t := range titles {
		resp.Titles = append(resp.Titles, *t)
	}
	return resp, nil
}

func (s *Service) GetTitle(ctx context.Context, id string) (domain.TitleDetail, error) {
	titleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.TitleDetail{}, domain.ErrInvalidID
	}

	title, err := s.repo.FindTitleByID(ctx, s.db, titleID)
	if err != nil {
		return domain.TitleDetail{}, err
	}
	if title == nil {
		return domain.TitleDetail{}, domain.ErrNotFound
	}

	authors, err := s.repo.AuthorsForTitle(ctx, s.db, title.ID)
	if err != nil {
		return domain.TitleDetail{}, err
	}

	detail := domain.TitleDetail{Title: *title, Authors: authors}
	if title.PublisherID != nil {
		publisher, err := s.repo.PublisherByID(ctx, s.db, *title.PublisherID)
		if err != nil {
			return domain.TitleDetail{}, err
		}
		detail.Publisher = publisher
	}
	return detail, nil
}
