// Package fail carries the symbolic reason codes for business-rule
// rejections. Services return these as errors; controllers extract the
// code and map it to an HTTP status. Anything without a code is an
// internal error and surfaces as a 500.
package fail

import "errors"

type Code string

const (
	// Entity lookup
	CodeBookNotFound   Code = "BOOK_NOT_FOUND"
	CodeMemberNotFound Code = "MEMBER_NOT_FOUND"

	// Creation
	CodeBookAlreadyExists   Code = "BOOK_ALREADY_EXISTS"
	CodeMemberAlreadyExists Code = "MEMBER_ALREADY_EXISTS"
	CodeInvalidRequest      Code = "INVALID_REQUEST"

	// Borrow
	CodeBorrowLimit     Code = "BORROW_LIMIT"
	CodeAlreadyBorrowed Code = "ALREADY_BORROWED"
	CodeBookUnavailable Code = "BOOK_UNAVAILABLE"
	CodeReserved        Code = "RESERVED"

	// Reserve / cancel
	CodeAlreadyReserved Code = "ALREADY_RESERVED"
	CodeNotReserved     Code = "NOT_RESERVED"

	// Extend
	CodeInvalidExtension    Code = "INVALID_EXTENSION"
	CodeNotLoaned           Code = "NOT_LOANED"
	CodeNotBorrower         Code = "NOT_BORROWER"
	CodeMaxExtensionReached Code = "MAX_EXTENSION_REACHED"

	// Delete
	CodeBookLoaned     Code = "BOOK_LOANED"
	CodeBookReserved   Code = "BOOK_RESERVED"
	CodeMemberHasLoans Code = "MEMBER_HAS_LOANS"
)

type codedError struct{ code Code }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() Code    { return e.code }

// New wraps a reason code as an error.
func New(c Code) error { return codedError{code: c} }

// CodeOf extracts the reason code, or "" for uncoded errors.
func CodeOf(err error) Code {
	var ce interface{ Code() Code }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
