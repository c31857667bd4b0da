package accounts

type RegisterRequest struct {
	Username string `json:"username" binding:"required" validate:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// UserPublic is the profile shape exposed to other modules and clients.
type UserPublic struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
