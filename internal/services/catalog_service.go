package services

import (
	"hamsterworld/internal/domain"
	"hamsterworld/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) List(cat domain.Category, f repos.CatalogFilter) ([]domain.Product, error) {
	if !cat.Valid() {
		return nil, domain.ErrNotFound
	}
	return s.Prods.ListByCategory(cat, f)
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}
