package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/pkg/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_StartsAsDraft(t *testing.T) {
	env := newTestEnv(t)

	item := env.createLesson(t, "Hello")
	lesson := item.(*domain.Lesson)

	assert.NotZero(t, lesson.ID)
	assert.Equal(t, domain.StatusDraft, lesson.Status)
	assert.Equal(t, domain.ReviewNone, lesson.ReviewStatus)
	assert.Nil(t, lesson.PublishedAt)
	assert.Zero(t, env.versionCount(t, "lessons", lesson.ID))

	entry := env.lastAudit(t, "Lesson", lesson.ID)
	assert.Equal(t, domain.ActionCreate, entry.Action)
	assert.Equal(t, "lessons", entry.Area)
	assert.Equal(t, domain.AuditSuccess, entry.Status)
	assert.Equal(t, "10.0.0.7", entry.IPAddress)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, uint64(7), *entry.UserID)

	changes := decodeChanges(t, entry)
	assert.Equal(t, "Hello", changes["title"])
	assert.Equal(t, "draft", changes["status"])
	assert.NotContains(t, changes, "updated_at")
}

func TestCreate_Rejections(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		contentType string
		attrs       map[string]interface{}
		field       string
		kind        error
	}{
		{"guarded status", "lessons", map[string]interface{}{"title": "x", "status": "published"}, "status", common.ErrValidation},
		{"guarded published_at", "lessons", map[string]interface{}{"title": "x", "published_at": "2026-01-01T00:00:00Z"}, "published_at", common.ErrValidation},
		{"missing title", "lessons", map[string]interface{}{"summary": "no title"}, "title", common.ErrValidation},
		{"bad enum", "exercises", map[string]interface{}{"kind": "essay", "prompt": "Translate"}, "kind", common.ErrValidation},
		{"empty", "lessons", map[string]interface{}{}, "attributes", common.ErrValidation},
		{"wrong type", "lessons", map[string]interface{}{"title": 42}, "attributes", common.ErrValidation},
		{"unknown type", "podcasts", map[string]interface{}{"title": "x"}, "", common.ErrContentTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.lifecycle.Create(env.ctx, tt.contentType, tt.attrs, env.actor)
			require.ErrorIs(t, err, tt.kind)
			if tt.field != "" {
				var verr *common.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.field)
			}
		})
	}

	assert.Zero(t, env.count(t, &domain.AuditLog{}, "1 = 1"))
	assert.Zero(t, env.count(t, &domain.Lesson{}, "1 = 1"))
}

func TestUpdate_SnapshotsBeforeApplyingAndRecordsDiff(t *testing.T) {
	env := newTestEnv(t)
	item := env.createLesson(t, "A")
	id := item.GetID()

	env.clock.Advance(time.Minute)
	updated, err := env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"title": "B", "summary": "greetings and introductions"}, env.actor)
	require.NoError(t, err)
	assert.Equal(t, "B", updated.(*domain.Lesson).Title)

	versions, err := env.lifecycle.ListVersions(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.LabelManual, versions[0].Label)

	payload, err := Payload(&versions[0])
	require.NoError(t, err)
	assert.Equal(t, "A", payload["title"])

	entry := env.lastAudit(t, "Lesson", id)
	assert.Equal(t, domain.ActionUpdate, entry.Action)
	assert.Equal(t, map[string]interface{}{
		"title": map[string]interface{}{"old": "A", "new": "B"},
	}, decodeChanges(t, entry))
}

func TestUpdate_GuardedAndInvalid(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "A").GetID()

	_, err := env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"status": "published"}, env.actor)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"title": ""}, env.actor)
	assert.ErrorIs(t, err, common.ErrValidation)

	// misspelled attribute
	_, err = env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"titel": "B"}, env.actor)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.lifecycle.Update(env.ctx, "lessons", 9999, map[string]interface{}{"title": "B"}, env.actor)
	assert.ErrorIs(t, err, common.ErrContentNotFound)

	assert.Zero(t, env.versionCount(t, "lessons", id))
	assert.Equal(t, "A", env.reload(t, "lessons", id).(*domain.Lesson).Title)
	assert.Equal(t, []string{domain.ActionCreate}, env.auditActions(t, "Lesson", id))
}

func TestPublish(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	env.clock.Advance(time.Hour)
	item, err := env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)

	lesson := item.(*domain.Lesson)
	assert.Equal(t, domain.StatusPublished, lesson.Status)
	require.NotNil(t, lesson.PublishedAt)
	assert.True(t, env.clock.Now().Equal(*lesson.PublishedAt))

	versions, err := env.lifecycle.ListVersions(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.LabelBeforePublish, versions[0].Label)
	payload, err := Payload(&versions[0])
	require.NoError(t, err)
	assert.Equal(t, "draft", payload["status"])

	assert.Equal(t, []string{domain.ActionCreate, domain.ActionPublish}, env.auditActions(t, "Lesson", id))
	assert.Equal(t, map[string]interface{}{
		"status": map[string]interface{}{"old": "draft", "new": "published"},
	}, decodeChanges(t, env.lastAudit(t, "Lesson", id)))

	// already published
	_, err = env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrAlreadyPublished)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, int64(1), env.versionCount(t, "lessons", id))
	assert.Equal(t, int64(2), env.auditCount(t, "Lesson", id))
}

func TestUnpublish(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	_, err := env.lifecycle.Unpublish(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrNotPublished)

	_, err = env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)

	item, err := env.lifecycle.Unpublish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)
	lesson := item.(*domain.Lesson)
	assert.Equal(t, domain.StatusDraft, lesson.Status)
	assert.Nil(t, lesson.PublishedAt)

	versions, err := env.lifecycle.ListVersions(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, domain.LabelBeforeUnpublish, versions[0].Label)
	assert.Equal(t, domain.LabelBeforePublish, versions[1].Label)

	entry := env.lastAudit(t, "Lesson", id)
	assert.Equal(t, domain.ActionUnpublish, entry.Action)
	assert.Equal(t, map[string]interface{}{"old": "published", "new": "draft"}, decodeChanges(t, entry)["status"])
}

func TestArchive_IsTerminal(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	item, err := env.lifecycle.ChangeStatus(env.ctx, "lessons", id, domain.StatusArchived, env.actor)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, item.GetStatus())

	entry := env.lastAudit(t, "Lesson", id)
	assert.Equal(t, domain.ActionStatusUpdate, entry.Action)
	assert.Equal(t, map[string]interface{}{"old": "draft", "new": "archived"}, decodeChanges(t, entry)["status"])

	_, err = env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrArchived)
	_, err = env.lifecycle.Unpublish(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrNotPublished)
	_, err = env.lifecycle.Archive(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrArchived)

	versions, err := env.lifecycle.ListVersions(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, domain.LabelBeforeArchive, versions[0].Label)
}

func TestChangeStatus_Dispatch(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	item, err := env.lifecycle.ChangeStatus(env.ctx, "lessons", id, domain.StatusPublished, env.actor)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, item.GetStatus())

	item, err = env.lifecycle.ChangeStatus(env.ctx, "lessons", id, domain.StatusDraft, env.actor)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, item.GetStatus())

	_, err = env.lifecycle.ChangeStatus(env.ctx, "lessons", id, "deleted", env.actor)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	_, err := env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)
	auditsBefore := env.auditCount(t, "Lesson", id)

	err = env.lifecycle.Delete(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrDeletePublished)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, auditsBefore, env.auditCount(t, "Lesson", id))
	assert.Equal(t, domain.StatusPublished, env.reload(t, "lessons", id).GetStatus())

	_, err = env.lifecycle.Unpublish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)
	require.NoError(t, env.lifecycle.Delete(env.ctx, "lessons", id, env.actor))

	_, err = env.lifecycle.Get(env.ctx, "lessons", id)
	assert.ErrorIs(t, err, common.ErrContentNotFound)

	// versions and audit entries outlive the item
	assert.Equal(t, int64(2), env.versionCount(t, "lessons", id))
	entry := env.lastAudit(t, "Lesson", id)
	assert.Equal(t, domain.ActionDelete, entry.Action)
	changes := decodeChanges(t, entry)
	assert.Equal(t, "Hello", changes["title"])
	assert.Equal(t, "draft", changes["status"])

	err = env.lifecycle.Delete(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrContentNotFound)
}

func TestDelete_ArchivedItem(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	_, err := env.lifecycle.Archive(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)
	assert.NoError(t, env.lifecycle.Delete(env.ctx, "lessons", id, env.actor))
}

func TestReviewWorkflow_Scenario(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	env.clock.Advance(time.Minute)
	review, err := env.lifecycle.SubmitForReview(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewPending, review.Status)
	assert.Equal(t, domain.ReviewPending, env.reload(t, "lessons", id).GetReviewStatus())

	_, err = env.lifecycle.SubmitForReview(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrReviewAlreadyPending)

	reviewerID := uint64(9)
	reviewer := domain.Actor{UserID: &reviewerID, IPAddress: "10.0.0.9"}
	env.clock.Advance(time.Minute)
	approved, err := env.lifecycle.ApproveReview(env.ctx, "lessons", id, "looks good", reviewer)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewApproved, approved.Status)
	assert.Equal(t, "looks good", approved.ReviewComment)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, reviewerID, *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)

	item := env.reload(t, "lessons", id).(*domain.Lesson)
	assert.Equal(t, domain.StatusPublished, item.Status)
	assert.Equal(t, domain.ReviewApproved, item.ReviewStatus)
	assert.NotNil(t, item.PublishedAt)

	reviews, err := env.lifecycle.ListReviews(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, domain.ReviewApproved, reviews[0].Status)

	assert.Equal(t,
		[]string{domain.ActionCreate, domain.ActionSubmitForReview, domain.ActionReviewApproved},
		env.auditActions(t, "Lesson", id))
	approval := decodeChanges(t, env.lastAudit(t, "Lesson", id))
	assert.Equal(t, "looks good", approval["review_comment"])
	assert.Equal(t, map[string]interface{}{"old": "draft", "new": "published"}, approval["status"])

	_, err = env.lifecycle.ApproveReview(env.ctx, "lessons", id, "", reviewer)
	assert.ErrorIs(t, err, common.ErrPendingReviewNotFound)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSubmitForReview_RequiresDraft(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()
	_, err := env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)

	_, err = env.lifecycle.SubmitForReview(env.ctx, "lessons", id, env.actor)
	assert.ErrorIs(t, err, common.ErrSubmitRequiresDraft)
	assert.Zero(t, env.count(t, &domain.Review{}, "content_id = ?", id))
}

func TestApproveReview_WithoutPending(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	_, err := env.lifecycle.ApproveReview(env.ctx, "lessons", id, "ok", env.actor)
	assert.ErrorIs(t, err, common.ErrPendingReviewNotFound)

	_, err = env.lifecycle.RejectReview(env.ctx, "lessons", id, "", "missing audio", env.actor)
	assert.ErrorIs(t, err, common.ErrPendingReviewNotFound)
}

func TestRejectReview(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()

	_, err := env.lifecycle.SubmitForReview(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)

	_, err = env.lifecycle.RejectReview(env.ctx, "lessons", id, "see notes", "  ", env.actor)
	assert.ErrorIs(t, err, common.ErrValidation)

	review, err := env.lifecycle.RejectReview(env.ctx, "lessons", id, "see notes", "missing audio", env.actor)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewRejected, review.Status)
	assert.Equal(t, "missing audio", review.RejectionReason)

	item := env.reload(t, "lessons", id)
	assert.Equal(t, domain.StatusDraft, item.GetStatus())
	assert.Equal(t, domain.ReviewRejected, item.GetReviewStatus())

	changes := decodeChanges(t, env.lastAudit(t, "Lesson", id))
	assert.Equal(t, "missing audio", changes["rejection_reason"])

	// resubmission resets to pending
	_, err = env.lifecycle.SubmitForReview(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewPending, env.reload(t, "lessons", id).GetReviewStatus())

	reviews, err := env.lifecycle.ListReviews(env.ctx, "lessons", id)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestRestore(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "First").GetID()

	env.clock.Advance(time.Minute)
	_, err := env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"title": "Second", "estimated_minutes": 15}, env.actor)
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	_, err = env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)

	versions, err := env.lifecycle.ListVersions(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	target := versions[1] // manual snapshot taken before the update
	require.Equal(t, domain.LabelManual, target.Label)

	env.clock.Advance(time.Minute)
	restored, err := env.lifecycle.Restore(env.ctx, "lessons", id, target.ID, env.actor)
	require.NoError(t, err)

	after, err := env.lifecycle.ListVersions(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, after, len(versions)+1)
	assert.Equal(t, domain.LabelBeforeRestore, after[0].Label)

	// restored state equals the snapshot payload, status included
	payload, err := Payload(&target)
	require.NoError(t, err)
	state, err := env.registry.Get("lessons")
	require.NoError(t, err)
	current, err := state.Serialize(env.reload(t, "lessons", id))
	require.NoError(t, err)
	assert.True(t, diff.Empty(diff.Fields(payload, current)))
	assert.Equal(t, domain.StatusDraft, restored.GetStatus())
	assert.Equal(t, "First", restored.(*domain.Lesson).Title)

	entry := env.lastAudit(t, "Lesson", id)
	assert.Equal(t, domain.ActionRestore, entry.Action)
	changes := decodeChanges(t, entry)
	assert.EqualValues(t, target.ID, changes["version_id"])
	assert.Equal(t, domain.LabelManual, changes["version_label"])
	assert.Equal(t, map[string]interface{}{"old": "Second", "new": "First"}, changes["title"])
}

func TestRestore_UnknownOrForeignVersion(t *testing.T) {
	env := newTestEnv(t)
	first := env.createLesson(t, "First").GetID()
	second := env.createLesson(t, "Second").GetID()

	_, err := env.lifecycle.Update(env.ctx, "lessons", first, map[string]interface{}{"title": "First v2"}, env.actor)
	require.NoError(t, err)
	versions, err := env.lifecycle.ListVersions(env.ctx, "lessons", first)
	require.NoError(t, err)
	require.Len(t, versions, 1)

	_, err = env.lifecycle.Restore(env.ctx, "lessons", second, versions[0].ID, env.actor)
	assert.ErrorIs(t, err, common.ErrVersionNotFound)

	_, err = env.lifecycle.Restore(env.ctx, "units", first, versions[0].ID, env.actor)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = env.lifecycle.Restore(env.ctx, "lessons", first, 424242, env.actor)
	assert.ErrorIs(t, err, common.ErrVersionNotFound)

	assert.Zero(t, env.versionCount(t, "lessons", second))
	assert.Equal(t, int64(1), env.versionCount(t, "lessons", first))
}

func TestAtomicity_AuditFailureRollsBackEverything(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()
	auditsBefore := env.auditCount(t, "Lesson", id)

	env.failAuditWrites = true

	_, err := env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, http.StatusInternalServerError, common.StatusFor(err))

	_, err = env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"title": "Changed"}, env.actor)
	require.ErrorIs(t, err, errInjected)

	_, err = env.lifecycle.SubmitForReview(env.ctx, "lessons", id, env.actor)
	require.ErrorIs(t, err, errInjected)

	err = env.lifecycle.Delete(env.ctx, "lessons", id, env.actor)
	require.ErrorIs(t, err, errInjected)

	env.failAuditWrites = false

	item := env.reload(t, "lessons", id).(*domain.Lesson)
	assert.Equal(t, "Hello", item.Title)
	assert.Equal(t, domain.StatusDraft, item.Status)
	assert.Equal(t, domain.ReviewNone, item.ReviewStatus)
	assert.Nil(t, item.PublishedAt)
	assert.Zero(t, env.versionCount(t, "lessons", id))
	assert.Zero(t, env.count(t, &domain.Review{}, "content_id = ?", id))
	assert.Equal(t, auditsBefore, env.auditCount(t, "Lesson", id))
}

func TestAtomicity_ReviewDecisionsRollBack(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()
	submitted, err := env.lifecycle.SubmitForReview(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)
	auditsBefore := env.auditCount(t, "Lesson", id)
	versionsBefore := env.versionCount(t, "lessons", id)

	env.failAuditWrites = true

	_, err = env.lifecycle.ApproveReview(env.ctx, "lessons", id, "ok", env.actor)
	require.ErrorIs(t, err, errInjected)

	_, err = env.lifecycle.RejectReview(env.ctx, "lessons", id, "hmm", "needs audio", env.actor)
	require.ErrorIs(t, err, errInjected)

	env.failAuditWrites = false

	item := env.reload(t, "lessons", id).(*domain.Lesson)
	assert.Equal(t, domain.StatusDraft, item.Status)
	assert.Equal(t, domain.ReviewPending, item.ReviewStatus)
	assert.Nil(t, item.PublishedAt)

	var review domain.Review
	require.NoError(t, env.db.First(&review, submitted.ID).Error)
	assert.Equal(t, domain.ReviewPending, review.Status)
	assert.Empty(t, review.ReviewComment)
	assert.Empty(t, review.RejectionReason)
	assert.Nil(t, review.ReviewedBy)
	assert.Nil(t, review.ReviewedAt)

	assert.Equal(t, versionsBefore, env.versionCount(t, "lessons", id))
	assert.Equal(t, auditsBefore, env.auditCount(t, "Lesson", id))

	// the pending review is still decidable afterwards
	approved, err := env.lifecycle.ApproveReview(env.ctx, "lessons", id, "ok", env.actor)
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, approved.ID)
}

func TestAtomicity_UnpublishAndRestoreRollBack(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "First").GetID()
	_, err := env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"title": "Second"}, env.actor)
	require.NoError(t, err)
	_, err = env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)

	versions, err := env.lifecycle.ListVersions(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	manual := versions[1]
	require.Equal(t, domain.LabelManual, manual.Label)

	published := env.reload(t, "lessons", id).(*domain.Lesson)
	require.NotNil(t, published.PublishedAt)
	auditsBefore := env.auditCount(t, "Lesson", id)

	env.failAuditWrites = true

	_, err = env.lifecycle.Unpublish(env.ctx, "lessons", id, env.actor)
	require.ErrorIs(t, err, errInjected)

	_, err = env.lifecycle.Restore(env.ctx, "lessons", id, manual.ID, env.actor)
	require.ErrorIs(t, err, errInjected)

	env.failAuditWrites = false

	item := env.reload(t, "lessons", id).(*domain.Lesson)
	assert.Equal(t, "Second", item.Title)
	assert.Equal(t, domain.StatusPublished, item.Status)
	require.NotNil(t, item.PublishedAt)
	assert.True(t, published.PublishedAt.Equal(*item.PublishedAt))

	assert.Equal(t, int64(2), env.versionCount(t, "lessons", id))
	assert.Equal(t, auditsBefore, env.auditCount(t, "Lesson", id))
}

func TestAtomicity_CreateRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.failAuditWrites = true

	_, err := env.lifecycle.Create(env.ctx, "vocabularies", map[string]interface{}{
		"word": "hola", "translation": "hello", "language": "es",
	}, env.actor)
	require.ErrorIs(t, err, errInjected)
	assert.Zero(t, env.count(t, &domain.Vocabulary{}, "1 = 1"))
}

func TestCompareVersions(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "A").GetID()

	_, err := env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"title": "B"}, env.actor)
	require.NoError(t, err)
	_, err = env.lifecycle.Update(env.ctx, "lessons", id, map[string]interface{}{"title": "C", "estimated_minutes": 20}, env.actor)
	require.NoError(t, err)

	versions, err := env.lifecycle.ListVersions(env.ctx, "lessons", id)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	older, newer := versions[1], versions[0]

	changes, err := env.lifecycle.CompareVersions(env.ctx, "lessons", id, older.ID, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]diff.Change{"title": {Old: "A", New: "B"}}, changes)

	// against the current state
	changes, err = env.lifecycle.CompareVersions(env.ctx, "lessons", id, older.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, diff.Change{Old: "A", New: "C"}, changes["title"])
	assert.Equal(t, diff.Change{Old: float64(0), New: float64(20)}, changes["estimated_minutes"])

	_, err = env.lifecycle.CompareVersions(env.ctx, "lessons", id, 999, 0)
	assert.ErrorIs(t, err, common.ErrVersionNotFound)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	id := env.createLesson(t, "Hello").GetID()
	other := env.createLesson(t, "Other").GetID()

	_, err := env.lifecycle.Publish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)
	_, err = env.lifecycle.Unpublish(env.ctx, "lessons", id, env.actor)
	require.NoError(t, err)

	filter := &domain.AuditFilter{SortOrder: "asc"}
	entries, total, err := env.lifecycle.History(env.ctx, "lessons", id, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.ActionCreate, entries[0].Action)
	assert.Equal(t, domain.ActionUnpublish, entries[2].Action)
	for _, e := range entries {
		assert.Equal(t, id, e.AuditableID)
	}
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 15, filter.PerPage)

	_, total, err = env.lifecycle.History(env.ctx, "lessons", other, &domain.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestContentTypesAreIndependent(t *testing.T) {
	env := newTestEnv(t)

	path, err := env.lifecycle.Create(env.ctx, "learning-paths", map[string]interface{}{
		"title": "Spanish for travellers", "source_language": "en", "target_language": "es", "level": "A1",
	}, env.actor)
	require.NoError(t, err)
	lesson := env.createLesson(t, "Hello")

	_, err = env.lifecycle.Publish(env.ctx, "learning-paths", path.GetID(), env.actor)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, env.reload(t, "lessons", lesson.GetID()).GetStatus())
	assert.Equal(t, domain.ActionPublish, env.lastAudit(t, "LearningPath", path.GetID()).Action)
	assert.Equal(t, "learning-paths", env.lastAudit(t, "LearningPath", path.GetID()).Area)
}
