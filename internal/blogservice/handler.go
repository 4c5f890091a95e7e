package blogservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/mirabelledev/inkwell/internal/common"
	"github.com/mirabelledev/inkwell/internal/userservice"
)

func NewBlogService(db *sql.DB) *BlogService {
	return &BlogService{m: newPostModel(db)}
}

type PostFields struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
	ImgURL   string `json:"img_url"`
}

func (s *BlogService) validateFields(fields *PostFields) error {
	v := common.NewValidator()
	validateTitle(v, fields.Title)
	validateSubtitle(v, fields.Subtitle)
	validateBody(v, fields.Body)
	validateImgURL(v, fields.ImgURL)
	if !v.Valid() {
		return v.ValidationError()
	}

	return nil
}

// CreatePost creates a new post authored by the given user and stamps it with
// the current date in display form.
func (s *BlogService) CreatePost(ctx context.Context, fields *PostFields, author *userservice.User) (*Post, error) {
	if err := s.validateFields(fields); err != nil {
		return nil, err
	}

	post := Post{
		Title:    fields.Title,
		Subtitle: fields.Subtitle,
		Date:     time.Now().Format(DateFormat),
		Body:     sanitizeRichText(fields.Body),
		ImgURL:   fields.ImgURL,
		AuthorID: author.ID,
	}

	err := s.m.insert(ctx, &post)
	if err != nil {
		return nil, err
	}

	post.Author = *author
	post.Comments = []Comment{}

	return &post, nil
}

// GetPosts returns every post. There is no pagination; posts come back in
// insertion order.
func (s *BlogService) GetPosts(ctx context.Context) ([]Post, error) {
	return s.m.getPosts(ctx)
}

// GetPost returns the post with the given id together with its comments, each
// comment's author resolved.
func (s *BlogService) GetPost(ctx context.Context, id int) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post, err := s.m.getPostById(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.m.getCommentsByPostId(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Comments = comments

	return post, nil
}

// UpdatePost overwrites all mutable fields of an existing post. The author is
// reassigned to the editor performing the update; the original creation date
// is kept.
func (s *BlogService) UpdatePost(ctx context.Context, id int, fields *PostFields, editor *userservice.User) error {
	if err := s.validateFields(fields); err != nil {
		return err
	}

	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	post := Post{
		ID:       id,
		Title:    fields.Title,
		Subtitle: fields.Subtitle,
		Body:     sanitizeRichText(fields.Body),
		ImgURL:   fields.ImgURL,
		AuthorID: editor.ID,
	}

	return s.m.updatePost(ctx, &post)
}

// DeletePost removes a post and, through the cascading foreign key, its
// comments.
func (s *BlogService) DeletePost(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.deletePost(ctx, id)
}

// AddComment records a comment on a post by the given author. Callers must
// already have resolved a non-anonymous identity.
func (s *BlogService) AddComment(ctx context.Context, postID int, text string, author *userservice.User) (*Comment, error) {
	v := common.NewValidator()
	validateCommentText(v, text)
	validateInt(v, postID, "post_id")
	validateInt(v, author.ID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	comment := Comment{
		Text:     sanitizeRichText(text),
		AuthorID: author.ID,
		PostID:   postID,
	}

	err := s.m.insertComment(ctx, &comment)
	if err != nil {
		return nil, err
	}

	comment.Author = *author

	return &comment, nil
}

// GetAuthorOf returns the author of a post as an explicit query.
func (s *BlogService) GetAuthorOf(ctx context.Context, postID int) (*userservice.User, error) {
	v := common.NewValidator()
	validateInt(v, postID, "post_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post, err := s.m.getAuthorOf(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &post.Author, nil
}

// GetCommentsOf returns a post's comments as an explicit query.
func (s *BlogService) GetCommentsOf(ctx context.Context, postID int) ([]Comment, error) {
	v := common.NewValidator()
	validateInt(v, postID, "post_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getCommentsByPostId(ctx, postID)
}
