package product

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo     productrepo.Repository
	pageSize int
}

func New(repo productrepo.Repository, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Service{repo: repo, pageSize: pageSize}
}

// Input is the product form used for create and update.
type Input struct {
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Description   string             `json:"description"`
	ProductType   domain.ProductType `json:"productType"`
	PriceCents    int64              `json:"priceCents"`
	StockQuantity int                `json:"stockQuantity"`
	IsFeatured    bool               `json:"isFeatured"`
	IsBestseller  bool               `json:"isBestseller"`
	IsNew         bool               `json:"isNew"`
	FreeDelivery  bool               `json:"freeDelivery"`
}

type Page struct {
	Products   []domain.Product `json:"products"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

func (s *Service) List(ctx context.Context, productType string, page int) (*Page, error) {
	t := domain.ProductType(strings.TrimSpace(productType))
	if t != "" && !t.Valid() {
		return nil, domain.NewValidationError("type", "unknown product type "+productType)
	}
	if page < 1 {
		page = 1
	}
	products, total, err := s.repo.List(ctx, productrepo.ListFilter{
		ProductType: t,
		Limit:       s.pageSize,
		Offset:      (page - 1) * s.pageSize,
	})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &Page{Products: products, Total: total, Page: page, TotalPages: (total + s.pageSize - 1) / s.pageSize}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := fromInput(in)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.Create(ctx, p)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.NewValidationError("slug", "already in use")
	}
	return out, err
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	p, err := fromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	out, err := s.repo.Update(ctx, p)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.NewValidationError("slug", "already in use")
	}
	return out, err
}

// SetStock is the quick stock edit from the product list.
func (s *Service) SetStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity < 0 {
		return nil, domain.NewValidationError("stockQuantity", "must not be negative")
	}
	if err := s.repo.SetStock(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func fromInput(in Input) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	verr := &domain.ValidationError{}
	if name == "" {
		verr.Add("name", "required")
	}
	if !slugPattern.MatchString(slug) {
		verr.Add("slug", "must be lowercase letters, digits and dashes")
	}
	if !in.ProductType.Valid() {
		verr.Add("productType", "must be fresh-corn, bundles, snacks or farm-goods")
	}
	if in.PriceCents < 0 {
		verr.Add("priceCents", "must not be negative")
	}
	if in.StockQuantity < 0 {
		verr.Add("stockQuantity", "must not be negative")
	}
	if !verr.Empty() {
		return domain.Product{}, verr
	}
	return domain.Product{
		Name:          name,
		Slug:          slug,
		Description:   strings.TrimSpace(in.Description),
		ProductType:   in.ProductType,
		PriceCents:    in.PriceCents,
		StockQuantity: in.StockQuantity,
		IsFeatured:    in.IsFeatured,
		IsBestseller:  in.IsBestseller,
		IsNew:         in.IsNew,
		FreeDelivery:  in.FreeDelivery,
	}, nil
}
