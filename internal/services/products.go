package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-crm/internal/cache"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/validation"
	"gorm.io/gorm"
)

type ProductService struct {
	db    *gorm.DB
	views *cache.Views
}

func NewProductService(db *gorm.DB, views *cache.Views) *ProductService {
	return &ProductService{db: db, views: views}
}

type ProductInput struct {
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	IsActive    *bool   `json:"is_active"`
}

// ProductPatch updates only the non-nil fields. An empty SKU clears it.
type ProductPatch struct {
	Name        *string  `json:"name"`
	SKU         *string  `json:"sku"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	IsActive    *bool    `json:"is_active"`
}

func (s *ProductService) List(ctx context.Context, query string) ([]models.Product, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if p := likePattern(query); p != "" {
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", p, p)
	}
	var products []models.Product
	err := q.Order("created_at DESC").Find(&products).Error
	return products, err
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func skuValue(sku string) *string {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil
	}
	return &sku
}

// Create stores a product. Products are active unless IsActive is explicitly false.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if err := check(v); err != nil {
		return nil, err
	}
	p := models.Product{
		Name:        in.Name,
		SKU:         skuValue(in.SKU),
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.invalidate()
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductPatch) (*models.Product, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	updates := map[string]any{}
	if in.Name != nil {
		v := validation.Violations{}
		validation.Required("name", *in.Name, v)
		if err := check(v); err != nil {
			return nil, err
		}
		updates["name"] = *in.Name
	}
	if in.SKU != nil {
		updates["sku"] = skuValue(*in.SKU)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.Quantity != nil {
		updates["quantity"] = *in.Quantity
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&p).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return nil, ErrConflict
			}
			return nil, err
		}
		s.invalidate()
	}
	return s.Get(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidate()
	return nil
}

func (s *ProductService) invalidate() {
	s.views.Invalidate(cache.TagProducts)
}
