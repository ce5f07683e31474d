package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/projectdesk-backend/internal/data/repos"
	clientrepo "github.com/yungbote/projectdesk-backend/internal/data/repos/clients"
	"github.com/yungbote/projectdesk-backend/internal/data/repos/repoutil"
	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
	"github.com/yungbote/projectdesk-backend/internal/realtime"
)

const clientSearchLimit = 20

var clientStatuses = []string{types.ClientStatusActive, types.ClientStatusInactive, types.ClientStatusProspect}

type ClientInput struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Status  *string `json:"status"`
	Address *string `json:"address"`
	Logo    *string `json:"logo"`
	Notes   *string `json:"notes"`
}

type ClientListQuery struct {
	Status string
	Search string
	Sort   string
	Page   repoutil.Page
}

type ClientService interface {
	List(ctx context.Context, q ClientListQuery) ([]*types.Client, repoutil.Pagination, error)
	Search(ctx context.Context, query string) ([]*types.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Client, error)
	Create(ctx context.Context, in ClientInput) (*types.Client, error)
	Update(ctx context.Context, id uuid.UUID, in ClientInput) (*types.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	db         *gorm.DB
	log        *logger.Logger
	clientRepo repos.ClientRepo
	pub        realtime.Publisher
}

func NewClientService(db *gorm.DB, log *logger.Logger, clientRepo repos.ClientRepo, pub realtime.Publisher) ClientService {
	return &clientService{
		db:         db,
		log:        log.With("service", "ClientService"),
		clientRepo: clientRepo,
		pub:        pub,
	}
}

func (cs *clientService) List(ctx context.Context, q ClientListQuery) ([]*types.Client, repoutil.Pagination, error) {
	fe := fieldErrors{}
	fe.oneOf("status", q.Status, clientStatuses)
	if q.Sort != "" && !clientrepo.ValidSort(q.Sort) {
		fe.add("sort", "sort must be one of: newest, oldest, name-asc, name-desc")
	}
	if err := fe.err(); err != nil {
		return nil, repoutil.Pagination{}, err
	}
	page := q.Page.Normalize()
	list, total, err := cs.clientRepo.List(ctx, nil, repos.ClientFilter{
		Status: q.Status,
		Search: trim(q.Search),
		Sort:   q.Sort,
		Page:   page,
	})
	if err != nil {
		return nil, repoutil.Pagination{}, err
	}
	return withLogos(list), page.Result(total), nil
}

func (cs *clientService) Search(ctx context.Context, query string) ([]*types.Client, error) {
	query = trim(query)
	if query == "" {
		return nil, apierr.BadRequest("missing_query", "search query is required")
	}
	list, err := cs.clientRepo.Search(ctx, nil, query, clientSearchLimit)
	if err != nil {
		return nil, err
	}
	return withLogos(list), nil
}

func (cs *clientService) Get(ctx context.Context, id uuid.UUID) (*types.Client, error) {
	c, err := cs.clientRepo.GetByID(ctx, nil, id)
	if errors.Is(err, apierr.ErrNotFound) {
		return nil, apierr.NotFound("client")
	}
	if err != nil {
		return nil, err
	}
	return c.WithDefaultLogo(), nil
}

func (cs *clientService) Create(ctx context.Context, in ClientInput) (*types.Client, error) {
	c := &types.Client{Status: types.ClientStatusActive}
	applyClientInput(c, in)

	fe := fieldErrors{}
	fe.required("name", c.Name)
	fe.required("email", c.Email)
	fe.email("email", c.Email)
	fe.maxLen("name", c.Name, 200)
	fe.oneOf("status", c.Status, clientStatuses)
	if err := fe.err(); err != nil {
		return nil, err
	}

	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.checkDuplicate(ctx, tx, c.Email, c.Name, nil); err != nil {
			return err
		}
		_, err := cs.clientRepo.Create(ctx, tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	cs.log.Info("Client created", "client_id", c.ID)
	c.WithDefaultLogo()
	publish(ctx, cs.log, cs.pub, realtime.Activity(realtime.EventClientCreated, c))
	return c, nil
}

func (cs *clientService) Update(ctx context.Context, id uuid.UUID, in ClientInput) (*types.Client, error) {
	var out *types.Client
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := cs.clientRepo.GetByID(ctx, tx, id)
		if errors.Is(err, apierr.ErrNotFound) {
			return apierr.NotFound("client")
		}
		if err != nil {
			return err
		}
		next := *existing
		applyClientInput(&next, in)

		fe := fieldErrors{}
		fe.required("name", next.Name)
		fe.required("email", next.Email)
		fe.email("email", next.Email)
		fe.maxLen("name", next.Name, 200)
		fe.oneOf("status", next.Status, clientStatuses)
		if err := fe.err(); err != nil {
			return err
		}

		var email, name string
		if !strings.EqualFold(next.Email, existing.Email) {
			email = next.Email
		}
		if !strings.EqualFold(next.Name, existing.Name) {
			name = next.Name
		}
		if err := cs.checkDuplicate(ctx, tx, email, name, &id); err != nil {
			return err
		}

		updates := map[string]any{
			"name":    next.Name,
			"contact": next.Contact,
			"email":   next.Email,
			"phone":   next.Phone,
			"company": next.Company,
			"status":  next.Status,
			"address": next.Address,
			"logo":    next.Logo,
			"notes":   next.Notes,
		}
		if err := cs.clientRepo.Update(ctx, tx, id, updates); err != nil {
			return err
		}
		out, err = cs.clientRepo.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	out.WithDefaultLogo()
	publish(ctx, cs.log, cs.pub, realtime.Activity(realtime.EventClientUpdated, out))
	return out, nil
}

func (cs *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.clientRepo.GetByID(ctx, tx, id); err != nil {
			if errors.Is(err, apierr.ErrNotFound) {
				return apierr.NotFound("client")
			}
			return err
		}
		return cs.clientRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	cs.log.Info("Client deleted", "client_id", id)
	publish(ctx, cs.log, cs.pub, realtime.Activity(realtime.EventClientDeleted, map[string]any{"id": id}))
	return nil
}

func (cs *clientService) checkDuplicate(ctx context.Context, tx *gorm.DB, email, name string, excludeID *uuid.UUID) error {
	dup, err := cs.clientRepo.FindDuplicate(ctx, tx, email, name, excludeID)
	if err != nil {
		return err
	}
	if dup == nil {
		return nil
	}
	if email != "" && strings.EqualFold(dup.Email, email) {
		return apierr.Conflict("a client with this email already exists")
	}
	return apierr.Conflict("a client with this name already exists")
}

func applyClientInput(c *types.Client, in ClientInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.Name, in.Name)
	set(&c.Contact, in.Contact)
	set(&c.Email, in.Email)
	set(&c.Phone, in.Phone)
	set(&c.Company, in.Company)
	set(&c.Status, in.Status)
	set(&c.Address, in.Address)
	set(&c.Logo, in.Logo)
	set(&c.Notes, in.Notes)
	c.Email = strings.ToLower(c.Email)
	if c.Status == "" {
		c.Status = types.ClientStatusActive
	}
}

func withLogos(list []*types.Client) []*types.Client {
	for _, c := range list {
		c.WithDefaultLogo()
	}
	return list
}
