package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/google/uuid"
)

func generateOrderRef() string {
	// Generate 8 chars alphanumeric (uppercase)
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // No I, O, 1, 0 to avoid confusion
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "ORD" + strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// CreateOrder stores the order and its lines in one transaction. When the
// order carries an idempotency key that was already used, the earlier order
// is returned and replayed is true.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (created *models.Order, replayed bool, err error) {
	if order.IdempotencyKey != "" {
		existing, err := s.getOrderByKey(ctx, order.IdempotencyKey)
		if err == nil {
			return existing, true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	o := *order
	o.ID = uuid.NewString()
	o.OrderRef = generateOrderRef()
	o.CreatedAt = time.Now().UTC()

	var key interface{}
	if o.IdempotencyKey != "" {
		key = o.IdempotencyKey
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, order_ref, idempotency_key, first_name, last_name, phone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OrderRef, key, o.FirstName, o.LastName, o.Phone, o.CreatedAt); err != nil {
		if o.IdempotencyKey != "" {
			// Lost a race with the same key; release the connection and
			// hand back the winner.
			tx.Rollback()
			if existing, kerr := s.getOrderByKey(ctx, o.IdempotencyKey); kerr == nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}
	for _, line := range o.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_lines (order_id, lesson_id, quantity, topic) VALUES (?, ?, ?, ?)`,
			o.ID, line.LessonID, line.Quantity, line.Topic); err != nil {
			return nil, false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return &o, false, nil
}

func (s *Store) getOrderByKey(ctx context.Context, key string) (*models.Order, error) {
	return s.getOrder(ctx, `idempotency_key = ?`, key)
}

func (s *Store) GetOrderByRef(ctx context.Context, ref string) (*models.Order, error) {
	return s.getOrder(ctx, `order_ref = ?`, ref)
}

func (s *Store) getOrder(ctx context.Context, where string, arg interface{}) (*models.Order, error) {
	var (
		o   models.Order
		key sql.NullString
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, order_ref, idempotency_key, first_name, last_name, phone, created_at FROM orders WHERE `+where, arg).
		Scan(&o.ID, &o.OrderRef, &key, &o.FirstName, &o.LastName, &o.Phone, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.IdempotencyKey = key.String

	rows, err := s.DB.QueryContext(ctx,
		`SELECT lesson_id, quantity, topic FROM order_lines WHERE order_id = ? ORDER BY rowid`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(&line.LessonID, &line.Quantity, &line.Topic); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, line)
	}
	return &o, rows.Err()
}

func (s *Store) GetTotalOrdersCount(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
