package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService() (*PostService, *fakePostRepo) {
	repo := newFakePostRepo()
	return NewPostService(repo, "commune.example"), repo
}

func TestCreatePostMintsActivityID(t *testing.T) {
	svc, _ := newPostService()

	post, err := svc.Create(context.Background(), 1, CreatePostInput{Content: "hello fediverse"})
	require.NoError(t, err)
	require.NotNil(t, post.ActivityID)
	assert.True(t, strings.HasPrefix(*post.ActivityID, "https://commune.example/activities/"))
}

func TestReactionOverwrites(t *testing.T) {
	svc, repo := newPostService()
	ctx := context.Background()

	post, err := svc.Create(ctx, 1, CreatePostInput{Content: "hello"})
	require.NoError(t, err)

	_, err = svc.React(ctx, 2, post.ID, "like")
	require.NoError(t, err)

	reaction, err := svc.React(ctx, 2, post.ID, "celebrate")
	require.NoError(t, err)
	assert.Equal(t, "celebrate", reaction.Type)

	reactions, err := repo.ListReactions(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, reactions, 1, "second reaction must overwrite, not duplicate")
	assert.Equal(t, "celebrate", reactions[0].Type)
}

func TestReactInvalidType(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()

	post, err := svc.Create(ctx, 1, CreatePostInput{Content: "hello"})
	require.NoError(t, err)

	_, err = svc.React(ctx, 2, post.ID, "sparkle")
	assert.ErrorIs(t, err, ErrInvalidReaction)

	_, err = svc.React(ctx, 2, 9999, "like")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()

	post, err := svc.Create(ctx, 1, CreatePostInput{Content: "original"})
	require.NoError(t, err)

	content := "edited"
	_, err = svc.Update(ctx, 2, post.ID, UpdatePostInput{Content: &content})
	assert.ErrorIs(t, err, ErrNotPostOwner)

	updated, err := svc.Update(ctx, 1, post.ID, UpdatePostInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	err = svc.Delete(ctx, 2, post.ID)
	assert.ErrorIs(t, err, ErrNotPostOwner)
}

func TestDeleteCommentAuthorization(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()

	post, err := svc.Create(ctx, 1, CreatePostInput{Content: "hello"})
	require.NoError(t, err)

	comment, err := svc.AddComment(ctx, 2, post.ID, "nice")
	require.NoError(t, err)

	// A stranger can delete nothing.
	assert.ErrorIs(t, svc.DeleteComment(ctx, 3, comment.ID), ErrNotCommentOwner)

	// The post author can moderate comments on their post.
	require.NoError(t, svc.DeleteComment(ctx, 1, comment.ID))

	// The comment author can delete their own comment.
	comment, err = svc.AddComment(ctx, 2, post.ID, "still nice")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteComment(ctx, 2, comment.ID))

	assert.ErrorIs(t, svc.DeleteComment(ctx, 2, comment.ID), ErrCommentNotFound)
}

func TestFeedPaging(t *testing.T) {
	svc, _ := newPostService()
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		post, err := svc.Create(ctx, 1, CreatePostInput{Content: "post"})
		require.NoError(t, err)
		ids = append(ids, post.ID)
	}

	page, err := svc.Feed(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID, "feed is newest first")

	next, err := svc.Feed(ctx, &page[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Less(t, next[0].ID, page[1].ID)
}
