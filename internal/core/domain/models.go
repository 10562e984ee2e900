package domain

import "time"

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=50"`
	FirstName string `json:"firstName" binding:"required,min=3,max=20"`
	LastName  string `json:"lastName" binding:"required,min=3,max=20"`
	Password  string `json:"password" binding:"required,min=6,max=40"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Admin     bool   `json:"admin"`
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// User is the public view of a user record.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	LastName  string    `json:"lastName"`
	FirstName string    `json:"firstName"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToUser drops the password hash.
func (u UserRow) ToUser() User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		LastName:  u.LastName,
		FirstName: u.FirstName,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Teacher is the public view of a teacher record.
type Teacher struct {
	ID        int64     `json:"id"`
	LastName  string    `json:"lastName"`
	FirstName string    `json:"firstName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToTeacher maps the record to its public view.
func (t TeacherRow) ToTeacher() Teacher {
	return Teacher{
		ID:        t.ID,
		LastName:  t.LastName,
		FirstName: t.FirstName,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// SessionRequest is the body of POST/PUT /api/session.
// Users is accepted for symmetry with Session but ignored on write;
// the roster only changes through the participate endpoints.
type SessionRequest struct {
	Name        string    `json:"name" binding:"required,max=50"`
	Date        time.Time `json:"date" binding:"required"`
	TeacherID   *int64    `json:"teacher_id" binding:"required"`
	Description string    `json:"description" binding:"required,max=2500"`
	Users       []int64   `json:"users"`
}

// Session is the public view of a session.
type Session struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	TeacherID   *int64    `json:"teacher_id"`
	Description string    `json:"description"`
	Users       []int64   `json:"users"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToSession maps the record to its public view.
func (s SessionRow) ToSession() Session {
	users := s.Users
	if users == nil {
		users = []int64{}
	}
	return Session{
		ID:          s.ID,
		Name:        s.Name,
		Date:        s.Date,
		TeacherID:   s.TeacherID,
		Description: s.Description,
		Users:       users,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
