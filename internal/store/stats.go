package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alextreichler/lessonshop/internal/models"
)

func (s *Store) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	// 1. Total Lessons
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM lessons").Scan(&stats.TotalLessons)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// 2. Total Orders
	err = s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&stats.TotalOrders)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// 3. Seats booked per lesson
	rows, err := s.DB.QueryContext(ctx, `
		SELECT l.id, l.topic, l.space, COALESCE(SUM(ol.quantity), 0) AS booked
		FROM lessons l
		LEFT JOIN order_lines ol ON l.id = ol.lesson_id
		GROUP BY l.id
		ORDER BY booked DESC, l.topic
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b models.LessonBookingCount
		if err := rows.Scan(&b.LessonID, &b.Topic, &b.Space, &b.Booked); err != nil {
			return nil, err
		}
		stats.TotalSeats += b.Booked
		stats.LessonBookings = append(stats.LessonBookings, b)
	}

	return stats, rows.Err()
}
