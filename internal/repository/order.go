package repository

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"storefront/internal/models"
)

type OrderRepository interface {
	CreateOrder(order *models.Order) error
	GetOrdersByUserID(userID int64) ([]*models.Order, error)
	GetAllOrdersWithUsers() ([]*models.OrderWithUser, error)
}

type orderRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewOrderRepository(db *sqlx.DB, logger *zap.Logger) OrderRepository {
	return &orderRepository{db: db, logger: logger}
}

func (r *orderRepository) CreateOrder(order *models.Order) error {
	query := `INSERT INTO orders (reference, user_id, items, total, status) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowx(query, order.Reference, order.UserID, order.Items, order.Total, order.Status).
		Scan(&order.ID, &order.CreatedAt)
}

func (r *orderRepository) GetOrdersByUserID(userID int64) ([]*models.Order, error) {
	orders := []*models.Order{}
	query := `SELECT id, reference, user_id, items, total, status, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.Select(&orders, query, userID); err != nil {
		return nil, err
	}
	return orders, nil
}

// orderUserRow is the flat shape of the orders-with-users join; sqlx cannot
// scan join columns into the nested OrderWithUser.User field directly.
type orderUserRow struct {
	ID        int64           `db:"id"`
	Reference string          `db:"reference"`
	UserID    int64           `db:"user_id"`
	Items     json.RawMessage `db:"items"`
	Total     float64         `db:"total"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
	UserName  string          `db:"user_name"`
	UserEmail string          `db:"user_email"`
}

func (r *orderRepository) GetAllOrdersWithUsers() ([]*models.OrderWithUser, error) {
	rows := []orderUserRow{}
	query := `SELECT o.id, o.reference, o.user_id, o.items, o.total, o.status, o.created_at,
		u.name AS user_name, u.email AS user_email
		FROM orders o
		JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC`
	if err := r.db.Select(&rows, query); err != nil {
		return nil, err
	}

	orders := make([]*models.OrderWithUser, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, &models.OrderWithUser{
			Order: models.Order{
				ID:        row.ID,
				Reference: row.Reference,
				UserID:    row.UserID,
				Items:     row.Items,
				Total:     row.Total,
				Status:    row.Status,
				CreatedAt: row.CreatedAt,
			},
			User: models.OrderUser{Name: row.UserName, Email: row.UserEmail},
		})
	}
	return orders, nil
}
