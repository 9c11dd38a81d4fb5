package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/models"
)

type ProductRepository interface {
	GetAllProducts() ([]*models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(product *models.Product) error
	DeleteProduct(id int64) error
}

type productRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewProductRepository(db *sqlx.DB, logger *zap.Logger) ProductRepository {
	return &productRepository{db: db, logger: logger}
}

func (r *productRepository) GetAllProducts() ([]*models.Product, error) {
	products := []*models.Product{}
	query := `SELECT id, name, description, price, image, category, stock, created_at FROM products ORDER BY created_at DESC`
	if err := r.db.Select(&products, query); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductByID(id int64) (*models.Product, error) {
	var product models.Product
	query := `SELECT id, name, description, price, image, category, stock, created_at FROM products WHERE id = $1`
	err := r.db.Get(&product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) CreateProduct(product *models.Product) error {
	query := `INSERT INTO products (name, description, price, image, category, stock) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.db.QueryRowx(query, product.Name, product.Description, product.Price, product.Image, product.Category, product.Stock).
		Scan(&product.ID, &product.CreatedAt)
}

func (r *productRepository) UpdateProduct(product *models.Product) error {
	query := `UPDATE products SET name = $1, description = $2, price = $3, image = $4, category = $5, stock = $6 WHERE id = $7 RETURNING created_at`
	err := r.db.QueryRowx(query, product.Name, product.Description, product.Price, product.Image, product.Category, product.Stock, product.ID).
		Scan(&product.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *productRepository) DeleteProduct(id int64) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
