package api

// Condition describes the physical state of a book.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionBad       Condition = "bad"
)

// Role describes a member's permission level.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleUser      Role = "user"
)

// Category is a book category. BookCount is derived by the backend and must
// never be patched locally.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BookCount   int    `json:"book_count"`
}

// Book is a library book with an owned snapshot of its category.
type Book struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Category      Category  `json:"category"`
	IsAvailable   bool      `json:"is_available"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	Pages         int       `json:"pages"`
	Publisher     string    `json:"publisher"`
	PublishedYear int       `json:"published_year"`
	Notes         string    `json:"notes"`
	Condition     Condition `json:"condition"`
	CoverURL      string    `json:"book_img"`
	CoverPath     string    `json:"book_path"`
	CreatedAt     string    `json:"created_at"`
}

// BookInput is the payload for creating or updating a book.
type BookInput struct {
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	CategoryID    int       `json:"category_id"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	Pages         int       `json:"pages"`
	Publisher     string    `json:"publisher,omitempty"`
	PublishedYear int       `json:"published_year,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Condition     Condition `json:"condition"`
	CoverURL      string    `json:"book_img,omitempty"`
	CoverPath     string    `json:"book_path,omitempty"`
}

// CategoryInput is the payload for creating or updating a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Member is a library member. A member may equal the authenticated user.
type Member struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      Role       `json:"role"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
	Checkouts []Checkout `json:"checkouts"`
}

// MemberInput is the payload for creating or updating a member.
type MemberInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

// MaxRenewals is the renewal cap; a checkout that has reached it is terminal
// ("Completed") and further renewal is rejected before any network call.
const MaxRenewals = 3

// Checkout records a book held by a member. Its existence implies the book is
// unavailable; returning it (delete) implies the book becomes available again.
type Checkout struct {
	ID            int    `json:"id"`
	User          Member `json:"user"`
	BookID        int    `json:"book_id"`
	Book          Book   `json:"book"`
	CreatedAt     string `json:"created_at"`
	RenewalNumber int    `json:"renewal_number"`
	ReturnDate    string `json:"return_date"`
}

// Completed reports whether the checkout has exhausted its renewals.
func (c *Checkout) Completed() bool {
	return c.RenewalNumber >= MaxRenewals
}

// CheckoutInput is the payload for creating a checkout.
type CheckoutInput struct {
	UserID     int    `json:"user_id"`
	BookID     int    `json:"book_id"`
	ReturnDate string `json:"return_date"`
}

// User is the authenticated account.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// ProfileInput is the payload for self-service profile updates.
type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PasswordInput is the payload for self-service password updates.
type PasswordInput struct {
	CurrentPassword      string `json:"current_password"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// PopularBook is an analytics aggregate for frequently borrowed books.
type PopularBook struct {
	BookID      int  `json:"book_id"`
	BorrowCount int  `json:"borrow_count"`
	Book        Book `json:"book"`
}

// Activity is a recent checkout or return event.
type Activity struct {
	ID        int    `json:"id"`
	BookID    int    `json:"book_id"`
	UserID    int    `json:"user_id"`
	CreatedAt string `json:"created_at"`
	Type      string `json:"type"` // "checkout" or "return"
	Book      Book   `json:"book"`
	User      User   `json:"user"`
}

// Analytics holds aggregate dashboard metrics.
type Analytics struct {
	TotalBooks       int           `json:"total_books"`
	TotalMembers     int           `json:"total_members"`
	TotalCheckouts   int           `json:"total_checkouts"`
	OverdueBooks     int           `json:"overdue_books"`
	PopularBooks     []PopularBook `json:"popular_books"`
	RecentActivities []Activity    `json:"recent_activities"`
}

// Page is the flat pagination envelope returned by listing endpoints.
type Page[T any] struct {
	CurrentPage int `json:"current_page"`
	Data        []T `json:"data"`
	From        int `json:"from"`
	To          int `json:"to"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Envelope is the mutation response envelope used by write endpoints.
type Envelope[T any] struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    T                   `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// Session is the authentication response envelope.
type Session struct {
	Status  bool   `json:"status"`
	Token   string `json:"token"`
	Message string `json:"message"`
	User    User   `json:"user"`
}
