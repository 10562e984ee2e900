package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/middleware"
)

// TeacherService exposes the read-only teacher catalogue.
type TeacherService struct {
	teachers domain.TeacherRepository
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(teachers domain.TeacherRepository) *TeacherService {
	return &TeacherService{teachers: teachers}
}

// List returns every teacher.
func (s *TeacherService) List(ctx context.Context) ([]domain.Teacher, error) {
	ctx, span := middleware.StartSpan(ctx, "teacher.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	rows, err := s.teachers.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list teachers: %w", err)
	}

	out := make([]domain.Teacher, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToTeacher())
	}
	return out, nil
}

// Get returns one teacher.
func (s *TeacherService) Get(ctx context.Context, id int64) (*domain.Teacher, error) {
	ctx, span := middleware.StartSpan(ctx, "teacher.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("teacher.id", id),
	))
	defer span.End()

	row, err := s.teachers.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query teacher %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("get teacher %d: %w", id, ErrTeacherNotFound)
	}

	teacher := row.ToTeacher()
	return &teacher, nil
}
