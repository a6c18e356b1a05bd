// Package catalogsvc maintains the book and member records themselves.
// It never touches loan state beyond the integrity guards on delete.
package catalogsvc

import (
	"context"
	"strings"

	bookrepo "bookloans/repository/book"
	memberrepo "bookloans/repository/member"
	"bookloans/util/fail"

	"bookloans/model"
)

type Service interface {
	CreateBook(ctx context.Context, id, title string) error
	UpdateBook(ctx context.Context, id, title string) error
	DeleteBook(ctx context.Context, id string) error

	CreateMember(ctx context.Context, id, name string) error
	UpdateMember(ctx context.Context, id, name string) error
	DeleteMember(ctx context.Context, id string) error
}

type service struct {
	books   bookrepo.Repo
	members memberrepo.Repo
}

func New(books bookrepo.Repo, members memberrepo.Repo) Service {
	return &service{books: books, members: members}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (s *service) CreateBook(ctx context.Context, id, title string) error {
	if blank(id) || blank(title) {
		return fail.New(fail.CodeInvalidRequest)
	}
	exists, err := s.books.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return fail.New(fail.CodeBookAlreadyExists)
	}
	return s.books.Save(ctx, &model.Book{ID: id, Title: title})
}

func (s *service) UpdateBook(ctx context.Context, id, title string) error {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return fail.New(fail.CodeBookNotFound)
	}
	if blank(title) {
		return fail.New(fail.CodeInvalidRequest)
	}
	b.Title = title
	return s.books.Save(ctx, b)
}

func (s *service) DeleteBook(ctx context.Context, id string) error {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return fail.New(fail.CodeBookNotFound)
	}
	if b.IsLoaned() {
		return fail.New(fail.CodeBookLoaned)
	}
	if len(b.Queue) > 0 {
		return fail.New(fail.CodeBookReserved)
	}
	return s.books.Delete(ctx, id)
}

func (s *service) CreateMember(ctx context.Context, id, name string) error {
	if blank(id) || blank(name) {
		return fail.New(fail.CodeInvalidRequest)
	}
	exists, err := s.members.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return fail.New(fail.CodeMemberAlreadyExists)
	}
	return s.members.Save(ctx, &model.Member{ID: id, Name: name})
}

func (s *service) UpdateMember(ctx context.Context, id, name string) error {
	m, err := s.members.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return fail.New(fail.CodeMemberNotFound)
	}
	if blank(name) {
		return fail.New(fail.CodeInvalidRequest)
	}
	m.Name = name
	return s.members.Save(ctx, m)
}

// DeleteMember refuses while the member holds loans, then purges every
// reservation referencing the member before removing the record, so no
// queue ever points at a vanished member.
func (s *service) DeleteMember(ctx context.Context, id string) error {
	exists, err := s.members.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fail.New(fail.CodeMemberNotFound)
	}

	hasLoans, err := s.books.ExistsByLoanedTo(ctx, id)
	if err != nil {
		return err
	}
	if hasLoans {
		return fail.New(fail.CodeMemberHasLoans)
	}

	if err := s.books.RemoveFromAllQueues(ctx, id); err != nil {
		return err
	}
	return s.members.Delete(ctx, id)
}
