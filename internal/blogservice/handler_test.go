package blogservice

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mirabelledev/inkwell/internal/common"
	"github.com/mirabelledev/inkwell/internal/userservice"
	"github.com/stretchr/testify/assert"
)

// setupTestUser inserts a user directly and returns it. The first user
// created in a fresh database gets id 1, the reserved admin id.
func setupTestUser(t *testing.T, db *sql.DB, email, name string) *userservice.User {
	query := `
		INSERT INTO users (email, name, password)
		VALUES ($1, $2, $3)
		RETURNING id`

	var u userservice.User
	u.Email = email
	u.Name = name

	err := db.QueryRow(query, email, name, []byte("not-a-real-hash")).Scan(&u.ID)
	if err != nil {
		t.Fatalf("could not insert test user: %v", err)
	}

	return &u
}

func testFields() *PostFields {
	return &PostFields{
		Title:    "T",
		Subtitle: "S",
		Body:     "B",
		ImgURL:   "U",
	}
}

func setupTestEnvironment(t *testing.T) (*BlogService, *sql.DB, *userservice.User, func() error) {
	db := common.TestDB(t)
	author := setupTestUser(t, db, "owner@example.com", "Site Owner")

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM comments")
		if err != nil {
			return err
		}

		_, err = db.Exec("DELETE FROM posts")
		if err != nil {
			return err
		}

		return nil
	}

	return NewBlogService(db), db, author, cleanup
}

func TestCreatePost(t *testing.T) {
	s, db, author, cleanup := setupTestEnvironment(t)

	testCases := []struct {
		name        string
		fields      *PostFields
		expectedErr error
	}{
		{
			name:   "valid post",
			fields: testFields(),
		},
		{
			name: "empty title",
			fields: &PostFields{
				Subtitle: "S",
				Body:     "B",
				ImgURL:   "U",
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"title": "must be provided"}},
		},
		{
			name: "empty body",
			fields: &PostFields{
				Title:    "T",
				Subtitle: "S",
				ImgURL:   "U",
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"body": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			post, err := s.CreatePost(ctx, tc.fields, author)
			assert.Equal(t, tc.expectedErr, err)

			var count int
			assert.NoError(t, db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count))

			if tc.expectedErr == nil {
				assert.Equal(t, 1, count)
				assert.NotZero(t, post.ID)
				assert.Equal(t, author.ID, post.AuthorID)

				// the creation date is stamped in display form
				_, err := time.Parse(DateFormat, post.Date)
				assert.NoError(t, err)
			} else {
				assert.Equal(t, 0, count)
			}

			t.Cleanup(func() {
				assert.NoError(t, cleanup())
			})
		})
	}
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	s, db, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.CreatePost(ctx, testFields(), author)
	assert.NoError(t, err)

	fields := testFields()
	fields.Subtitle = "another subtitle"
	_, err = s.CreatePost(ctx, fields, author)
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	// no second row is created
	var count int
	assert.NoError(t, db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestGetPostRoundTrip(t *testing.T) {
	s, _, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := s.CreatePost(ctx, testFields(), author)
	assert.NoError(t, err)

	got, err := s.GetPost(ctx, created.ID)
	assert.NoError(t, err)

	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "S", got.Subtitle)
	assert.Equal(t, "B", got.Body)
	assert.Equal(t, "U", got.ImgURL)
	assert.Equal(t, author.ID, got.Author.ID)
	assert.Equal(t, author.Name, got.Author.Name)

	// a fresh post has a non-nil comments list of length zero
	assert.NotNil(t, got.Comments)
	assert.Len(t, got.Comments, 0)
}

func TestGetPostNotFound(t *testing.T) {
	s, _, _, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.GetPost(ctx, 99999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGetPostsOrder(t *testing.T) {
	s, _, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	titles := []string{"first post", "second post", "third post"}
	for _, title := range titles {
		fields := testFields()
		fields.Title = title
		_, err := s.CreatePost(ctx, fields, author)
		assert.NoError(t, err)
	}

	posts, err := s.GetPosts(ctx)
	assert.NoError(t, err)
	assert.Len(t, posts, 3)

	// posts come back in insertion order
	for i, post := range posts {
		assert.Equal(t, titles[i], post.Title)
	}
}

func TestUpdatePostReassignsAuthor(t *testing.T) {
	s, db, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	editor := setupTestUser(t, db, "editor@example.com", "Second Editor")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := s.CreatePost(ctx, testFields(), author)
	assert.NoError(t, err)

	fields := testFields()
	fields.Subtitle = "updated subtitle"
	err = s.UpdatePost(ctx, created.ID, fields, editor)
	assert.NoError(t, err)

	got, err := s.GetPost(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "updated subtitle", got.Subtitle)
	// editing reassigns the author to the editor, even when it differs from
	// the original author
	assert.Equal(t, editor.ID, got.Author.ID)
	// the creation date survives the edit
	assert.Equal(t, created.Date, got.Date)
}

func TestUpdatePostNotFound(t *testing.T) {
	s, _, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.UpdatePost(ctx, 99999, testFields(), author)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeletePost(t *testing.T) {
	s, db, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := s.CreatePost(ctx, testFields(), author)
	assert.NoError(t, err)

	_, err = s.AddComment(ctx, created.ID, "nice post", author)
	assert.NoError(t, err)

	err = s.DeletePost(ctx, created.ID)
	assert.NoError(t, err)

	_, err = s.GetPost(ctx, created.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// comments are removed with their post
	var count int
	assert.NoError(t, db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestDeletePostNotFound(t *testing.T) {
	s, _, _, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.DeletePost(ctx, 99999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAddComment(t *testing.T) {
	s, db, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	commenter := setupTestUser(t, db, "reader@example.com", "Test Reader")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := s.CreatePost(ctx, testFields(), author)
	assert.NoError(t, err)

	comment, err := s.AddComment(ctx, created.ID, "nice post", commenter)
	assert.NoError(t, err)
	assert.NotZero(t, comment.ID)

	got, err := s.GetPost(ctx, created.ID)
	assert.NoError(t, err)
	assert.Len(t, got.Comments, 1)
	assert.Equal(t, "nice post", got.Comments[0].Text)
	assert.Equal(t, commenter.ID, got.Comments[0].Author.ID)
	assert.Equal(t, commenter.Name, got.Comments[0].Author.Name)
}

func TestAddCommentUnknownPost(t *testing.T) {
	s, db, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.AddComment(ctx, 99999, "nice post", author)
	assert.ErrorIs(t, err, ErrPostForeignKey)

	var count int
	assert.NoError(t, db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestGetAuthorOfAndCommentsOf(t *testing.T) {
	s, db, author, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	commenter := setupTestUser(t, db, "reader@example.com", "Test Reader")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := s.CreatePost(ctx, testFields(), author)
	assert.NoError(t, err)

	got, err := s.GetAuthorOf(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, author.ID, got.ID)

	_, err = s.AddComment(ctx, created.ID, "first", commenter)
	assert.NoError(t, err)
	_, err = s.AddComment(ctx, created.ID, "second", commenter)
	assert.NoError(t, err)

	comments, err := s.GetCommentsOf(ctx, created.ID)
	assert.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)
}
