package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/delivery"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

var semverPattern = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

// ValidVersion reports whether s looks like v?MAJOR.MINOR.PATCH[-suffix].
func ValidVersion(s string) bool { return semverPattern.MatchString(s) }

type VersionInput struct {
	Version     *string    `json:"version"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Changes     []string   `json:"changes"`
	ReleaseType *string    `json:"releaseType"`
	ReleaseDate *time.Time `json:"releaseDate"`
}

type VersionListQuery struct {
	ReleaseType string
	Page        repoutil.Page
}

type VersionHistoryService interface {
	List(ctx context.Context, q VersionListQuery) ([]*types.VersionHistory, repoutil.Pagination, error)
	Latest(ctx context.Context) (*types.VersionHistory, error)
	Get(ctx context.Context, id uuid.UUID) (*types.VersionHistory, error)
	Create(ctx context.Context, authorID uuid.UUID, in VersionInput) (*types.VersionHistory, error)
	Update(ctx context.Context, id uuid.UUID, in VersionInput) (*types.VersionHistory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type versionHistoryService struct {
	db          *gorm.DB
	log         *logger.Logger
	versionRepo repos.VersionHistoryRepo
	pub         realtime.Publisher
	now         func() time.Time
}

func NewVersionHistoryService(db *gorm.DB, log *logger.Logger, versionRepo repos.VersionHistoryRepo, pub realtime.Publisher) VersionHistoryService {
	return &versionHistoryService{
		db:          db,
		log:         log.With("service", "VersionHistoryService"),
		versionRepo: versionRepo,
		pub:         pub,
		now:         time.Now,
	}
}

func (vs *versionHistoryService) List(ctx context.Context, q VersionListQuery) ([]*types.VersionHistory, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("releaseType", q.ReleaseType, delivery.ReleaseTypes)
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	list, total, err := vs.versionRepo.List(ctx, nil, repos.VersionFilter{ReleaseType: q.ReleaseType, Page: page})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return list, page.Result(total), nil
}

func (vs *versionHistoryService) Latest(ctx context.Context) (*types.VersionHistory, error) {
	v, err := vs.versionRepo.Latest(ctx, nil)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("version")
	}
	return v, err
}

func (vs *versionHistoryService) Get(ctx context.Context, id uuid.UUID) (*types.VersionHistory, error) {
	return vs.getVersion(ctx, nil, id)
}

func (vs *versionHistoryService) Create(ctx context.Context, authorID uuid.UUID, in VersionInput) (*types.VersionHistory, error) {
	v := &types.VersionHistory{
		ReleaseType: delivery.ReleaseMinor,
		ReleaseDate: vs.now().UTC(),
		Changes:     datatypes.JSONSlice[string]{},
		AuthorID:    &authorID,
	}
	applyVersionInput(v, in)
	if err := validateVersion(v); err != nil {
		return nil, err
	}
	err := vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := vs.checkUnique(ctx, tx, v.Version, nil); err != nil {
			return err
		}
		_, err := vs.versionRepo.Create(ctx, tx, v)
		return err
	})
	if err != nil {
		return nil, err
	}
	vs.log.Info("Version released", "version", v.Version, "release_type", v.ReleaseType)
	publish(ctx, vs.log, vs.pub, realtime.Activity(realtime.EventVersionReleased, v))
	return v, nil
}

func (vs *versionHistoryService) Update(ctx context.Context, id uuid.UUID, in VersionInput) (*types.VersionHistory, error) {
	var out *types.VersionHistory
	err := vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := vs.getVersion(ctx, tx, id)
		if err != nil {
			return err
		}
		next := *existing
		applyVersionInput(&next, in)
		if err := validateVersion(&next); err != nil {
			return err
		}
		if err := vs.checkUnique(ctx, tx, next.Version, &id); err != nil {
			return err
		}
		if err := vs.versionRepo.Update(ctx, tx, id, map[string]any{
			"version":      next.Version,
			"title":        next.Title,
			"description":  next.Description,
			"changes":      next.Changes,
			"release_type": next.ReleaseType,
			"release_date": next.ReleaseDate,
		}); err != nil {
			return err
		}
		out, err = vs.versionRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (vs *versionHistoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := vs.versionRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("version")
		}
		return err
	}
	return nil
}

func (vs *versionHistoryService) checkUnique(ctx context.Context, tx *gorm.DB, version string, excludeID *uuid.UUID) error {
	exists, err := vs.versionRepo.VersionExists(ctx, tx, version, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apierr.Conflict("version " + version + " already exists")
	}
	return nil
}

func (vs *versionHistoryService) getVersion(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.VersionHistory, error) {
	v, err := vs.versionRepo.GetByID(ctx, tx, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("version")
	}
	return v, err
}

func applyVersionInput(v *types.VersionHistory, in VersionInput) {
	if in.Version != nil {
		v.Version = trim(*in.Version)
	}
	if in.Title != nil {
		v.Title = trim(*in.Title)
	}
	if in.Description != nil {
		v.Description = trim(*in.Description)
	}
	if in.ReleaseType != nil {
		v.ReleaseType = trim(*in.ReleaseType)
	}
	if in.ReleaseDate != nil && !in.ReleaseDate.IsZero() {
		v.ReleaseDate = in.ReleaseDate.UTC()
	}
	if in.Changes != nil {
		changes := make([]string, 0, len(in.Changes))
		for _, c := range in.Changes {
			if c = trim(c); c != "" {
				changes = append(changes, c)
			}
		}
		v.Changes = changes
	}
}

func validateVersion(v *types.VersionHistory) error {
	fe := fieldErrors{}
	fe.required("version", v.Version)
	if v.Version != "" && !ValidVersion(v.Version) {
		fe.add("version", "version must look like MAJOR.MINOR.PATCH")
	}
	fe.required("title", v.Title)
	fe.oneOf("releaseType", v.ReleaseType, delivery.ReleaseTypes)
	return fe.err()
}
