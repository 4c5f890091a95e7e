package blogservice

import (
	"context"
)

func (m *PostModel) insertComment(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (text, author_id, post_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := m.db.QueryRowContext(ctx, query, comment.Text, comment.AuthorID, comment.PostID).Scan(&comment.ID)
	if err != nil {
		switch {
		case ForeignKeyError(err, "comments_post_id_fkey"):
			return ErrPostForeignKey
		case ForeignKeyError(err, "comments_author_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// getCommentsByPostId returns a post's comments in the order they were made,
// each with its author resolved.
func (m *PostModel) getCommentsByPostId(ctx context.Context, postID int) ([]Comment, error) {
	query := `
		SELECT c.id, c.text, c.author_id, c.post_id, u.name, u.email
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.id ASC`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var comment Comment
		err := rows.Scan(&comment.ID, &comment.Text, &comment.AuthorID, &comment.PostID, &comment.Author.Name, &comment.Author.Email)
		if err != nil {
			return nil, err
		}
		comment.Author.ID = comment.AuthorID
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}
