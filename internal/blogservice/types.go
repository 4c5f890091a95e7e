package blogservice

import (
	"database/sql"

	"github.com/mirabelledev/inkwell/internal/userservice"
)

// DateFormat is the display format posts are stamped with at creation time.
const DateFormat = "January 02, 2006"

type Post struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	// Date is a fixed human-readable creation date, e.g. "August 09, 2025".
	Date     string           `json:"date"`
	Body     string           `json:"body"`
	ImgURL   string           `json:"img_url"`
	Author   userservice.User `json:"author"`
	AuthorID int              `json:"author_id"`

	Comments []Comment `json:"comments"`
}

type Comment struct {
	ID       int              `json:"id"`
	Text     string           `json:"text"`
	Author   userservice.User `json:"author"`
	AuthorID int              `json:"author_id"`
	PostID   int              `json:"post_id"`
}

type PostModel struct {
	db *sql.DB
}

type BlogService struct {
	m *PostModel
}
