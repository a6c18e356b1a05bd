package catalog

type CreateBookReq struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
}

type UpdateBookReq struct {
	Title string `json:"title" validate:"required"`
}

type CreateMemberReq struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type UpdateMemberReq struct {
	Name string `json:"name" validate:"required"`
}
