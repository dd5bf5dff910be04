package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/alextreichler/lessonshop/internal/models"
	"github.com/google/uuid"
)

const lessonColumns = `id, topic, location, price, space, image`

func scanLessons(rows *sql.Rows) ([]models.Lesson, error) {
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.Topic, &l.Location, &l.Price, &l.Space, &l.Image); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (s *Store) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+lessonColumns+` FROM lessons ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	return scanLessons(rows)
}

// SearchLessons matches query case-insensitively anywhere in topic or location.
func (s *Store) SearchLessons(ctx context.Context, query string) ([]models.Lesson, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons
		 WHERE topic LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\'
		 ORDER BY rowid`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	return scanLessons(rows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *Store) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	var l models.Lesson
	err := s.DB.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id).
		Scan(&l.ID, &l.Topic, &l.Location, &l.Price, &l.Space, &l.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLesson inserts the lesson, assigning an id when it has none.
func (s *Store) CreateLesson(ctx context.Context, l *models.Lesson) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO lessons (id, topic, location, price, space, image, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		l.ID, l.Topic, l.Location, l.Price, l.Space, l.Image)
	return err
}

func (s *Store) SetLessonSpace(ctx context.Context, id string, space int) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE lessons SET space = ? WHERE id = ?`, space, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedLessons inserts the lessons that do not exist yet and reports how many
// were added.
func (s *Store) SeedLessons(ctx context.Context, lessons []models.Lesson) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added := 0
	for _, l := range lessons {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO lessons (id, topic, location, price, space, image) VALUES (?, ?, ?, ?, ?, ?)`,
			l.ID, l.Topic, l.Location, l.Price, l.Space, l.Image)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, tx.Commit()
}
