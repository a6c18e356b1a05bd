package loan

type BorrowReq struct {
	BookID   string `json:"bookId" validate:"required"`
	MemberID string `json:"memberId" validate:"required"`
}

// ReturnReq's memberId is optional on the wire; the engine rejects a missing
// or mismatched one.
type ReturnReq struct {
	BookID   string  `json:"bookId" validate:"required"`
	MemberID *string `json:"memberId"`
}

type ReserveReq struct {
	BookID   string `json:"bookId" validate:"required"`
	MemberID string `json:"memberId" validate:"required"`
}

type CancelReservationReq struct {
	BookID   string `json:"bookId" validate:"required"`
	MemberID string `json:"memberId" validate:"required"`
}

type ExtendReq struct {
	BookID   string  `json:"bookId" validate:"required"`
	MemberID *string `json:"memberId"`
	Days     *int    `json:"days" validate:"required"`
}
