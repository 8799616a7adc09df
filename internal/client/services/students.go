package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/classkeeper/internal/client/identity"
	"github.com/dmitrijs2005/classkeeper/internal/client/models"
	"github.com/dmitrijs2005/classkeeper/internal/client/remote/records"
	"github.com/dmitrijs2005/classkeeper/internal/common"
)

type StudentService struct {
	students records.StudentRepository
	session  *identity.Session
}

func NewStudentService(students records.StudentRepository, session *identity.Session) *StudentService {
	return &StudentService{students: students, session: session}
}

// Register adds a student to the signed-in teacher's registry.
func (s *StudentService) Register(ctx context.Context, name, group string) (*models.Student, error) {
	user := s.session.Current()
	if user == nil {
		return nil, common.ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: student name is empty", common.ErrValidation)
	}

	student := &models.Student{
		OwnerID: user.ID,
		Name:    name,
		Group:   strings.TrimSpace(group),
	}

	if _, err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	return student, nil
}

// List returns the signed-in teacher's students ordered by name.
func (s *StudentService) List(ctx context.Context) ([]*models.Student, error) {
	user := s.session.Current()
	if user == nil {
		return nil, common.ErrUnauthorized
	}

	return s.students.ListByOwner(ctx, user.ID)
}

func (s *StudentService) Rename(ctx context.Context, id, name string) error {
	user := s.session.Current()
	if user == nil {
		return common.ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: student name is empty", common.ErrValidation)
	}

	return s.students.Rename(ctx, user.ID, id, name)
}

func (s *StudentService) Remove(ctx context.Context, id string) error {
	user := s.session.Current()
	if user == nil {
		return common.ErrUnauthorized
	}

	return s.students.Delete(ctx, user.ID, id)
}
