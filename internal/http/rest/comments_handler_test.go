package rest

import (
	"context"
	"net/http"
	"testing"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) comment(t *testing.T, token string, reportID uuid.UUID, content string, parent *uuid.UUID) model.Comment {
	t.Helper()
	rec, env := e.do(t, http.MethodPost, "/api/comments", token, model.CreateCommentRequest{
		ReportID: reportID,
		ParentID: parent,
		Content:  content,
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)

	var c model.Comment
	decodeData(t, env, &c)
	return c
}

type threadData struct {
	ReportID      uuid.UUID        `json:"report_id"`
	Comments      []*model.Comment `json:"comments"`
	TotalComments int              `json:"total_comments"`
}

func TestCreateComment(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedUser(t, "commenter")
	r := e.createReport(t, token, spillReport())

	c := e.comment(t, token, r.ID, "  Still there this morning  ", nil)
	assert.Equal(t, "Still there this morning", c.Content)
	assert.Equal(t, r.ID, c.ReportID)
	assert.False(t, c.IsEdited)
	require.NotNil(t, c.Author)
	assert.Equal(t, "commenter", c.Author.Username)

	rec, _ := e.do(t, http.MethodPost, "/api/comments", "", model.CreateCommentRequest{ReportID: r.ID, Content: "anon"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/api/comments", token, model.CreateCommentRequest{ReportID: r.ID, Content: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/api/comments", token, model.CreateCommentRequest{ReportID: uuid.New(), Content: "lost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCommentParentChecks(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedUser(t, "commenter")
	first := e.createReport(t, token, spillReport())
	second := e.createReport(t, token, spillReport())

	parent := e.comment(t, token, first.ID, "parent", nil)

	missing := uuid.New()
	rec, _ := e.do(t, http.MethodPost, "/api/comments", token, model.CreateCommentRequest{ReportID: first.ID, ParentID: &missing, Content: "reply"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/api/comments", token, model.CreateCommentRequest{ReportID: second.ID, ParentID: &parent.ID, Content: "reply"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	reply := e.comment(t, token, first.ID, "reply", &parent.ID)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)
}

func TestCommentOnPrivateReport(t *testing.T) {
	e := newTestEnv(t)
	_, ownerToken := e.seedUser(t, "owner")
	_, otherToken := e.seedUser(t, "other")

	req := spillReport()
	req.IsPublic = util.BoolPtr(false)
	r := e.createReport(t, ownerToken, req)
	c := e.comment(t, ownerToken, r.ID, "note to self", nil)

	rec, _ := e.do(t, http.MethodPost, "/api/comments", otherToken, model.CreateCommentRequest{ReportID: r.ID, Content: "peek"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = e.do(t, http.MethodGet, "/api/comments/"+c.ID.String(), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = e.do(t, http.MethodGet, "/api/comments/report/"+r.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = e.do(t, http.MethodGet, "/api/comments/"+c.ID.String(), ownerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCommentThreadOrdering(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedUser(t, "threader")
	r := e.createReport(t, token, spillReport())

	older := e.comment(t, token, r.ID, "older root", nil)
	newer := e.comment(t, token, r.ID, "newer root", nil)
	firstReply := e.comment(t, token, r.ID, "first reply", &older.ID)
	secondReply := e.comment(t, token, r.ID, "second reply", &older.ID)
	nested := e.comment(t, token, r.ID, "nested", &firstReply.ID)

	rec, env := e.do(t, http.MethodGet, "/api/comments/report/"+r.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	var thread threadData
	decodeData(t, env, &thread)

	assert.Equal(t, r.ID, thread.ReportID)
	assert.Equal(t, 5, thread.TotalComments)
	require.Len(t, thread.Comments, 2)
	assert.Equal(t, newer.ID, thread.Comments[0].ID, "roots newest first")
	assert.Equal(t, older.ID, thread.Comments[1].ID)

	replies := thread.Comments[1].Replies
	require.Len(t, replies, 2)
	assert.Equal(t, firstReply.ID, replies[0].ID, "replies oldest first")
	assert.Equal(t, secondReply.ID, replies[1].ID)
	require.Len(t, replies[0].Replies, 1)
	assert.Equal(t, nested.ID, replies[0].Replies[0].ID)

	rec, env = e.do(t, http.MethodGet, "/api/reports/"+r.ID.String()+"/comments?include_replies=false", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &thread)
	require.Len(t, thread.Comments, 5)
	assert.Equal(t, nested.ID, thread.Comments[0].ID, "flat list is newest first")
	assert.Equal(t, older.ID, thread.Comments[4].ID)

	rec, _ = e.do(t, http.MethodGet, "/api/comments/report/"+r.ID.String()+"?include_replies=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = e.do(t, http.MethodGet, "/api/comments/"+older.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var single model.Comment
	decodeData(t, env, &single)
	assert.Equal(t, 2, single.RepliesCount)
	assert.Len(t, single.Replies, 2)
}

func TestEditAndDeleteComment(t *testing.T) {
	e := newTestEnv(t)
	_, authorToken := e.seedUser(t, "author")
	_, otherToken := e.seedUser(t, "other")
	r := e.createReport(t, authorToken, spillReport())

	c := e.comment(t, authorToken, r.ID, "first draft", nil)
	reply := e.comment(t, otherToken, r.ID, "a reply", &c.ID)
	path := "/api/comments/" + c.ID.String()

	rec, _ := e.do(t, http.MethodPut, path, otherToken, model.UpdateCommentRequest{Content: "vandalised"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := e.do(t, http.MethodPut, path, authorToken, model.UpdateCommentRequest{Content: "second draft"})
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	var edited model.Comment
	decodeData(t, env, &edited)
	assert.Equal(t, "second draft", edited.Content)
	assert.True(t, edited.IsEdited)

	rec, _ = e.do(t, http.MethodPut, path, authorToken, model.UpdateCommentRequest{Content: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = e.do(t, http.MethodDelete, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = e.do(t, http.MethodDelete, path, authorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := e.store.GetCommentByID(context.Background(), reply.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound, "replies go with their parent")

	rec, _ = e.do(t, http.MethodDelete, path, authorToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
