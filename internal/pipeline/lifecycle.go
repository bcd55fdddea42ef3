package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/draftpress/draftpress/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifecycle owns suggestion state transitions and post materialization.
//
// Allowed transitions, all admin-gated:
//
//	pending -> approved   (approve, publish=false)
//	pending -> published  (approve publish=true, or publish)
//	pending -> rejected   (reject)
type Lifecycle struct {
	suggestions SuggestionRepo
	posts       PostRepo
	users       UserRepo
	system      Principal
}

func NewLifecycle(suggestions SuggestionRepo, posts PostRepo, users UserRepo, system Principal) *Lifecycle {
	system.Admin = true
	system.System = true
	return &Lifecycle{
		suggestions: suggestions,
		posts:       posts,
		users:       users,
		system:      system,
	}
}

// SystemPrincipal returns the configured synthetic administrative actor.
func (l *Lifecycle) SystemPrincipal() Principal {
	return l.system
}

// Approve transitions a pending suggestion to approved, or straight to
// published when publish is set.
func (l *Lifecycle) Approve(ctx context.Context, actor Principal, id primitive.ObjectID, publish bool, notes string) (*models.Suggestion, error) {
	sg, err := l.pendingOnly(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if publish {
		return l.materialize(ctx, actor, sg, notes)
	}

	now := time.Now()
	if err := l.suggestions.SetStatus(ctx, id, models.SuggestionApproved, notes, &now); err != nil {
		return nil, err
	}
	sg.Status = models.SuggestionApproved
	sg.AdminNotes = notes
	sg.ApprovedAt = &now

	logger.Get().Info().
		Str("id", id.Hex()).
		Str("actor", actor.Username).
		Msg("Suggestion approved")
	return sg, nil
}

// Publish transitions a pending suggestion directly to published.
func (l *Lifecycle) Publish(ctx context.Context, actor Principal, id primitive.ObjectID) (*models.Suggestion, error) {
	sg, err := l.pendingOnly(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return l.materialize(ctx, actor, sg, "")
}

// Reject transitions a pending suggestion to rejected.
func (l *Lifecycle) Reject(ctx context.Context, actor Principal, id primitive.ObjectID, notes string) error {
	if _, err := l.pendingOnly(ctx, actor, id); err != nil {
		return err
	}
	if err := l.suggestions.SetStatus(ctx, id, models.SuggestionRejected, notes, nil); err != nil {
		return err
	}

	logger.Get().Info().
		Str("id", id.Hex()).
		Str("actor", actor.Username).
		Msg("Suggestion rejected")
	return nil
}

// Delete hard-deletes the suggestion record. Any already-published post is
// left untouched.
func (l *Lifecycle) Delete(ctx context.Context, actor Principal, id primitive.ObjectID) error {
	if !actor.Admin {
		return ErrForbidden
	}
	return l.suggestions.Delete(ctx, id)
}

// pendingOnly loads the suggestion and enforces the admin gate plus the
// pending-state precondition shared by every outbound transition.
func (l *Lifecycle) pendingOnly(ctx context.Context, actor Principal, id primitive.ObjectID) (*models.Suggestion, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}
	sg, err := l.suggestions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sg.Status != models.SuggestionPending {
		return nil, fmt.Errorf("%w: suggestion is %s", ErrInvalidTransition, sg.Status)
	}
	return sg, nil
}

// materialize creates the post and only then marks the suggestion published.
// If post creation fails the suggestion stays pending.
func (l *Lifecycle) materialize(ctx context.Context, actor Principal, sg *models.Suggestion, notes string) (*models.Suggestion, error) {
	author, err := l.resolveAuthor(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve publishing account: %w", err)
	}

	now := time.Now()
	post := &models.Post{
		Title:        sg.Title,
		Content:      sg.Content,
		Summary:      sg.Summary,
		AuthorID:     author.ID,
		Tags:         sg.Tags,
		Status:       models.PostPublished,
		ScheduleDate: sg.PublishDate,
		ReadTime:     sg.ReadTime,
		Image:        sg.Image,
		NewsSource:   sg.Source,
		CreatedAt:    now,
	}
	if err := l.posts.Insert(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post, suggestion left pending: %w", err)
	}

	if err := l.suggestions.MarkPublished(ctx, sg.ID, post.ID, now); err != nil {
		// The post exists; surface the inconsistency rather than hide it.
		logger.Get().Error().
			Err(err).
			Str("suggestion_id", sg.ID.Hex()).
			Str("post_id", post.ID.Hex()).
			Msg("Post created but suggestion not marked published")
		return nil, err
	}

	sg.Status = models.SuggestionPublished
	sg.PostID = post.ID
	sg.PublishedAt = &now
	if notes != "" {
		sg.AdminNotes = notes
	}

	logger.Get().Info().
		Str("suggestion_id", sg.ID.Hex()).
		Str("post_id", post.ID.Hex()).
		Str("actor", actor.Username).
		Msg("Suggestion published")
	return sg, nil
}

// resolveAuthor maps the actor to a persisted account, lazily creating the
// system admin account on first automated publish.
func (l *Lifecycle) resolveAuthor(ctx context.Context, actor Principal) (*models.User, error) {
	if actor.System {
		return l.users.FindOrCreate(ctx, l.system.Username, l.system.Email, models.RoleAdmin)
	}
	return l.users.FindOrCreate(ctx, actor.Username, actor.Email, models.RoleAdmin)
}
