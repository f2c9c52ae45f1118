package actions

import (
	"fmt"
	"strings"

	"github.com/nikshitha/social-warmup/browser"
	"github.com/nikshitha/social-warmup/models"
	"github.com/nikshitha/social-warmup/selectors"
)

// Follow follows the profile currently open. username is reported in the
// outcome.
func (e *Executor) Follow(username string) models.Outcome {
	o := e.gated(models.ActionFollow, func() models.Outcome {
		if e.resolver.Exists(selectors.FollowingIndicator, nil) {
			return models.Info(models.ActionFollow, "already following")
		}

		button, err := e.resolver.FindOne(selectors.FollowButton, nil)
		if err != nil {
			return models.Failure(models.ActionFollow, "follow button lookup failed", err)
		}
		if button == nil {
			return failure(models.ActionFollow, models.ErrElementNotFound, "follow button not found")
		}

		e.timing.Delay("before_follow")
		if err := e.page.Click(button); err != nil {
			return failure(models.ActionFollow, models.ErrInteraction, "failed to click follow button: %v", err)
		}
		e.timing.Delay("after_follow")

		if !e.resolver.Exists(selectors.FollowingIndicator, nil) {
			return failure(models.ActionFollow, models.ErrInteraction, "could not confirm follow")
		}
		return models.Success(models.ActionFollow, "followed")
	})
	o.Username = username
	return o
}

// Like likes the post at postIndex among the posts on the page.
func (e *Executor) Like(postIndex int) models.Outcome {
	posts, err := e.resolver.FindAll(selectors.Post, nil)
	if err != nil {
		return models.Failure(models.ActionLike, "post lookup failed", err)
	}
	if postIndex < 0 || postIndex >= len(posts) {
		o := failure(models.ActionLike, models.ErrElementNotFound, "post %d not found (%d available)", postIndex, len(posts))
		o.PostIndex = postIndex
		return o
	}
	return e.likePost(posts[postIndex], postIndex)
}

func (e *Executor) likePost(post browser.Element, index int) models.Outcome {
	o := e.gated(models.ActionLike, func() models.Outcome {
		if e.resolver.Exists(selectors.UnlikeButton, post) {
			return models.Info(models.ActionLike, "post already liked")
		}

		button, err := e.resolver.FindOne(selectors.LikeButton, post)
		if err != nil {
			return models.Failure(models.ActionLike, "like button lookup failed", err)
		}
		if button == nil {
			return failure(models.ActionLike, models.ErrElementNotFound, "like button not found")
		}

		if e.timing.Chance(e.doc.Behavior.ReadPostProbability) {
			e.timing.Delay("read_post")
		}
		e.timing.Delay("before_like")
		if err := e.page.Click(button); err != nil {
			return failure(models.ActionLike, models.ErrInteraction, "failed to click like button: %v", err)
		}
		e.timing.Delay("after_like")

		if !e.resolver.Exists(selectors.UnlikeButton, post) {
			return failure(models.ActionLike, models.ErrInteraction, "could not confirm like")
		}
		return models.Success(models.ActionLike, "liked post")
	})
	o.PostIndex = index
	return o
}

// LikeMultiple likes up to count posts chosen at random among those on the
// page. Each like is gated and recorded on its own; a failing post does not
// stop the batch.
func (e *Executor) LikeMultiple(count int) models.Outcome {
	posts, err := e.resolver.FindAll(selectors.Post, nil)
	if err != nil {
		return models.Failure(models.ActionLikeMultiple, "post lookup failed", err)
	}

	actual := count
	if actual > len(posts) {
		actual = len(posts)
	}
	o := models.Outcome{Kind: models.ActionLikeMultiple, Requested: count}
	if actual <= 0 {
		o = failure(models.ActionLikeMultiple, models.ErrElementNotFound, "no posts available to like")
		o.Requested = count
		return o
	}

	var indices []int
	if actual == len(posts) {
		indices = make([]int, actual)
		for i := range indices {
			indices[i] = i
		}
	} else {
		indices = e.rand.Perm(len(posts))[:actual]
	}

	for n, idx := range indices {
		if n > 0 {
			e.timing.Delay("between_likes")
		}
		res := e.likePost(posts[idx], idx)
		o.Processed++
		if res.Denied {
			o.Denied = true
		}
		switch res.Status {
		case models.StatusSuccess:
			o.Successful++
		case models.StatusInfo:
			o.AlreadyLiked++
		default:
			o.Failed++
		}
	}

	o.Status = models.StatusSuccess
	o.Message = fmt.Sprintf("liked %d of %d posts (%d already liked, %d failed)", o.Successful, o.Processed, o.AlreadyLiked, o.Failed)
	if o.Successful+o.AlreadyLiked == 0 {
		o.Status = models.StatusError
		o.Error = fmt.Errorf("%w: every like in the batch failed", models.ErrInteraction).Error()
	}
	e.logger.WithFields(map[string]interface{}{
		"requested":     o.Requested,
		"processed":     o.Processed,
		"successful":    o.Successful,
		"already_liked": o.AlreadyLiked,
		"failed":        o.Failed,
	}).Info("Like batch finished")
	return o
}

// Comment posts text under the post at postIndex. An empty text is replaced
// by a random generic comment from the document.
func (e *Executor) Comment(postIndex int, text string) models.Outcome {
	if text == "" {
		if len(e.doc.Comments) == 0 {
			return failure(models.ActionComment, models.ErrConfiguration, "no comment text and no generic comments configured")
		}
		text = e.doc.Comments[e.rand.Intn(len(e.doc.Comments))]
	}

	posts, err := e.resolver.FindAll(selectors.Post, nil)
	if err != nil {
		return models.Failure(models.ActionComment, "post lookup failed", err)
	}
	if postIndex < 0 || postIndex >= len(posts) {
		o := failure(models.ActionComment, models.ErrElementNotFound, "post %d not found (%d available)", postIndex, len(posts))
		o.PostIndex = postIndex
		return o
	}
	post := posts[postIndex]

	o := e.gated(models.ActionComment, func() models.Outcome {
		box, err := e.resolver.FindOne(selectors.CommentBox, post)
		if err != nil {
			return models.Failure(models.ActionComment, "comment box lookup failed", err)
		}
		if box == nil {
			return failure(models.ActionComment, models.ErrElementNotFound, "comment box not found")
		}

		e.timing.Delay("before_comment")
		if err := e.page.Click(box); err != nil {
			return failure(models.ActionComment, models.ErrInteraction, "failed to focus comment box: %v", err)
		}
		if err := e.timing.TypeText(e.page, box, text); err != nil {
			return failure(models.ActionComment, models.ErrInteraction, "failed to type comment: %v", err)
		}

		submit, err := e.resolver.FindOne(selectors.PostCommentButton, post)
		if err != nil {
			return models.Failure(models.ActionComment, "post button lookup failed", err)
		}
		if submit == nil {
			return failure(models.ActionComment, models.ErrElementNotFound, "post comment button not found")
		}
		if err := e.page.Click(submit); err != nil {
			return failure(models.ActionComment, models.ErrInteraction, "failed to submit comment: %v", err)
		}
		e.timing.Delay("after_comment")

		if !e.commentVisible(post, text) {
			return failure(models.ActionComment, models.ErrInteraction, "could not confirm comment")
		}
		return models.Success(models.ActionComment, "comment posted")
	})
	o.PostIndex = postIndex
	o.Comment = text
	return o
}

func (e *Executor) commentVisible(post browser.Element, text string) bool {
	els, err := e.resolver.FindAll(selectors.CommentText, post)
	if err != nil {
		return false
	}
	for _, el := range els {
		content, err := e.page.Attribute(el, "textContent")
		if err == nil && strings.TrimSpace(content) == strings.TrimSpace(text) {
			return true
		}
	}
	return false
}
