package rest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwise1/earthlens/internal/model"
	"github.com/bwise1/earthlens/util/websockets"
	"github.com/google/uuid"
)

// memStore is an in-memory UserStore, ReportStore, CommentStore and TagStore
// with the same cascade and visibility rules as the Postgres schema.
type memStore struct {
	mu sync.Mutex

	users      map[uuid.UUID]model.User
	reports    map[uuid.UUID]model.Report
	reportTags map[uuid.UUID][]uuid.UUID
	tags       map[uuid.UUID]model.Tag
	comments   map[uuid.UUID]model.Comment

	clock time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]model.User),
		reports:    make(map[uuid.UUID]model.Report),
		reportTags: make(map[uuid.UUID][]uuid.UUID),
		tags:       make(map[uuid.UUID]model.Tag),
		comments:   make(map[uuid.UUID]model.Comment),
		clock:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func paginate[T any](items []T, page, perPage int) []T {
	start := model.Offset(page, perPage)
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if perPage <= 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// users

func (s *memStore) userConflict(u model.User) error {
	for id, other := range s.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(other.Email, u.Email) {
			return ErrEmailTaken
		}
		if strings.EqualFold(other.Username, u.Username) {
			return ErrUsernameTaken
		}
	}
	return nil
}

func (s *memStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	if err := s.userConflict(*u); err != nil {
		return err
	}
	u.CreatedAt = s.tick()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *memStore) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

func (s *memStore) UsernameExists(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) UpdateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	u.Email = strings.ToLower(u.Email)
	if err := s.userConflict(*u); err != nil {
		return err
	}
	u.UpdatedAt = s.tick()
	s.users[u.ID] = *u
	return nil
}

func (s *memStore) ListUsers(_ context.Context, params model.UserListParams) ([]model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(params.Search)
	var out []model.User
	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		if q != "" {
			hay := strings.ToLower(u.Username + " " + deref(u.FirstName) + " " + deref(u.LastName))
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, params.Page, params.PerPage), len(out), nil
}

func (s *memStore) GetUserStats(_ context.Context, id uuid.UUID) (model.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.UserStats{}, ErrUserNotFound
	}
	stats := model.UserStats{UserID: id, MemberSince: u.CreatedAt}
	var private, drafts int
	for _, r := range s.reports {
		if r.UserID != id {
			continue
		}
		stats.ReportsCount++
		if r.IsPublic {
			stats.PublicReportsCount++
		} else {
			private++
		}
		if r.Status == model.StatusDraft {
			drafts++
		}
	}
	for _, c := range s.comments {
		if c.UserID == id {
			stats.CommentsCount++
		}
	}
	stats.PrivateReportsCount = &private
	stats.DraftReportsCount = &drafts
	return stats, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// tags

func (s *memStore) tagCount(id uuid.UUID) int {
	n := 0
	for _, ids := range s.reportTags {
		for _, tid := range ids {
			if tid == id {
				n++
			}
		}
	}
	return n
}

func (s *memStore) hydrateTag(t model.Tag) model.Tag {
	t.ReportsCount = s.tagCount(t.ID)
	return t
}

func (s *memStore) getOrCreateTag(req model.CreateTagRequest) (model.Tag, bool) {
	name := model.NormalizeTagName(req.Name)
	for _, t := range s.tags {
		if t.Name == name {
			return s.hydrateTag(t), false
		}
	}
	color := req.Color
	if color == "" {
		color = model.DefaultTagColor
	}
	t := model.Tag{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Color:       color,
		IsActive:    true,
		CreatedAt:   s.tick(),
	}
	s.tags[t.ID] = t
	return t, true
}

func (s *memStore) GetOrCreateTag(_ context.Context, req model.CreateTagRequest) (model.Tag, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, created := s.getOrCreateTag(req)
	return t, created, nil
}

func (s *memStore) GetTagByID(_ context.Context, id uuid.UUID) (model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return model.Tag{}, ErrTagNotFound
	}
	return s.hydrateTag(t), nil
}

func (s *memStore) activeTags(match func(model.Tag) bool) []model.Tag {
	var out []model.Tag
	for _, t := range s.tags {
		if t.IsActive && match(t) {
			out = append(out, s.hydrateTag(t))
		}
	}
	return out
}

func (s *memStore) ListTags(_ context.Context, params model.TagListParams) ([]model.Tag, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := model.NormalizeTagName(params.Search)
	out := s.activeTags(func(t model.Tag) bool { return strings.Contains(t.Name, q) })
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, params.Page, params.PerPage), len(out), nil
}

func byPopularity(tags []model.Tag) {
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].ReportsCount != tags[j].ReportsCount {
			return tags[i].ReportsCount > tags[j].ReportsCount
		}
		return tags[i].Name < tags[j].Name
	})
}

func (s *memStore) PopularTags(_ context.Context, limit int) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.activeTags(func(t model.Tag) bool { return s.tagCount(t.ID) > 0 })
	byPopularity(out)
	return paginate(out, 1, limit), nil
}

func (s *memStore) SearchTags(_ context.Context, q string, limit int) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = model.NormalizeTagName(q)
	out := s.activeTags(func(t model.Tag) bool { return strings.Contains(t.Name, q) })
	byPopularity(out)
	return paginate(out, 1, limit), nil
}

func (s *memStore) UpdateTag(_ context.Context, id uuid.UUID, req model.UpdateTagRequest) (model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return model.Tag{}, ErrTagNotFound
	}
	if req.Name != nil {
		name := model.NormalizeTagName(*req.Name)
		for otherID, other := range s.tags {
			if otherID != id && other.Name == name {
				return model.Tag{}, ErrTagExists
			}
		}
		t.Name = name
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Color != nil {
		t.Color = *req.Color
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	s.tags[id] = t
	return s.hydrateTag(t), nil
}

// reports

func (s *memStore) attachTags(reportID uuid.UUID, names []string) {
	for _, name := range names {
		t, _ := s.getOrCreateTag(model.CreateTagRequest{Name: name})
		linked := false
		for _, id := range s.reportTags[reportID] {
			if id == t.ID {
				linked = true
				break
			}
		}
		if !linked {
			s.reportTags[reportID] = append(s.reportTags[reportID], t.ID)
		}
	}
}

func (s *memStore) hydrateReport(r model.Report) model.Report {
	r.Tags = []model.Tag{}
	for _, id := range s.reportTags[r.ID] {
		r.Tags = append(r.Tags, s.hydrateTag(s.tags[id]))
	}
	sort.Slice(r.Tags, func(i, j int) bool { return r.Tags[i].Name < r.Tags[j].Name })

	r.CommentsCount = 0
	for _, c := range s.comments {
		if c.ReportID == r.ID {
			r.CommentsCount++
		}
	}
	if u, ok := s.users[r.UserID]; ok {
		r.Author = &model.Author{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, AvatarURL: u.AvatarURL}
	}
	return r
}

func (s *memStore) CreateReport(_ context.Context, r *model.Report, tagNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.CreatedAt = s.tick()
	r.UpdatedAt = r.CreatedAt
	stored := *r
	stored.Tags = nil
	s.reports[r.ID] = stored
	s.attachTags(r.ID, tagNames)
	return nil
}

func (s *memStore) GetReportByID(_ context.Context, id uuid.UUID) (model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return model.Report{}, ErrReportNotFound
	}
	return s.hydrateReport(r), nil
}

func (s *memStore) hasTag(reportID uuid.UUID, name string) bool {
	for _, id := range s.reportTags[reportID] {
		if s.tags[id].Name == name {
			return true
		}
	}
	return false
}

func (s *memStore) ListReports(_ context.Context, params model.ReportListParams) ([]model.Report, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag := model.NormalizeTagName(params.Tag)
	search := strings.ToLower(strings.TrimSpace(params.Search))

	var out []model.Report
	for _, r := range s.reports {
		switch {
		case params.UserID != nil && r.UserID != *params.UserID:
			continue
		case (params.UserID == nil || !params.IncludePrivate) && !r.IsPublic:
			continue
		case params.Status != "" && r.Status != params.Status:
			continue
		case params.Category != "" && deref(r.AICategory) != params.Category:
			continue
		case tag != "" && !s.hasTag(r.ID, tag):
			continue
		case search != "" && !strings.Contains(strings.ToLower(r.Title+" "+r.Description), search):
			continue
		}
		out = append(out, s.hydrateReport(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, params.Page, params.PerPage), len(out), nil
}

func (s *memStore) NearbyReports(_ context.Context, params model.NearbyParams) ([]model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Report
	for _, r := range s.reports {
		if !r.IsPublic || r.Status != model.StatusActive || !r.HasCoordinates() {
			continue
		}
		d := websockets.HaversineKM(params.Latitude, params.Longitude, *r.Latitude, *r.Longitude)
		if d > params.RadiusKM {
			continue
		}
		r = s.hydrateReport(r)
		r.DistanceKM = &d
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].DistanceKM < *out[j].DistanceKM })
	return paginate(out, 1, params.Limit), nil
}

func (s *memStore) UpdateReport(_ context.Context, r *model.Report, tagNames *[]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.reports[r.ID]
	if !ok || current.UserID != r.UserID {
		return ErrReportNotFound
	}
	r.UpdatedAt = s.tick()
	stored := *r
	stored.Tags, stored.Comments, stored.Author = nil, nil, nil
	s.reports[r.ID] = stored
	if tagNames != nil {
		s.reportTags[r.ID] = nil
		s.attachTags(r.ID, *tagNames)
	}
	return nil
}

func (s *memStore) DeleteReport(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok || r.UserID != userID {
		return ErrReportNotFound
	}
	delete(s.reports, id)
	delete(s.reportTags, id)
	for cid, c := range s.comments {
		if c.ReportID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (s *memStore) SaveAnalysis(_ context.Context, id uuid.UUID, a model.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	r.SetAnalysis(a)
	s.reports[id] = r
	return nil
}

func (s *memStore) AddReportTags(_ context.Context, id uuid.UUID, names []string) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return nil, ErrReportNotFound
	}
	before := append([]uuid.UUID(nil), s.reportTags[id]...)
	s.attachTags(id, names)
	if len(s.reportTags[id]) > model.MaxReportTags {
		s.reportTags[id] = before
		return nil, ErrTooManyTags
	}
	return s.hydrateReport(s.reports[id]).Tags, nil
}

func (s *memStore) RemoveReportTag(_ context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = model.NormalizeTagName(name)
	ids := s.reportTags[id]
	for i, tid := range ids {
		if s.tags[tid].Name == name {
			s.reportTags[id] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return ErrTagNotFound
}

func (s *memStore) TopCategoryForUser(_ context.Context, userID uuid.UUID) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int{}
	for _, r := range s.reports {
		if r.UserID == userID && r.AICategory != nil {
			counts[*r.AICategory]++
		}
	}
	var best string
	for category, n := range counts {
		if n > counts[best] || (n == counts[best] && category < best) {
			best = category
		}
	}
	if best == "" {
		return nil, nil
	}
	return &best, nil
}

// comments

func (s *memStore) hydrateComment(c model.Comment) model.Comment {
	c.RepliesCount = 0
	for _, other := range s.comments {
		if other.ParentID != nil && *other.ParentID == c.ID {
			c.RepliesCount++
		}
	}
	if u, ok := s.users[c.UserID]; ok {
		c.Author = &model.Author{ID: u.ID, Username: u.Username}
	}
	return c
}

func (s *memStore) CreateComment(_ context.Context, c *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.CreatedAt = s.tick()
	c.UpdatedAt = c.CreatedAt
	s.comments[c.ID] = *c
	return nil
}

func (s *memStore) GetCommentByID(_ context.Context, id uuid.UUID) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, ErrCommentNotFound
	}
	return s.hydrateComment(c), nil
}

func (s *memStore) ListCommentsByReport(_ context.Context, reportID uuid.UUID) ([]*model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Comment, 0)
	for _, c := range s.comments {
		if c.ReportID == reportID {
			h := s.hydrateComment(c)
			out = append(out, &h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) ListCommentsByUser(_ context.Context, userID uuid.UUID, limit int) ([]model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Comment
	for _, c := range s.comments {
		if c.UserID == userID {
			out = append(out, s.hydrateComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, 1, limit), nil
}

func (s *memStore) UpdateComment(_ context.Context, id, userID uuid.UUID, content string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok || c.UserID != userID {
		return model.Comment{}, ErrCommentNotFound
	}
	c.Content = content
	c.IsEdited = true
	c.UpdatedAt = s.tick()
	s.comments[id] = c
	return s.hydrateComment(c), nil
}

func (s *memStore) DeleteComment(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok || c.UserID != userID {
		return ErrCommentNotFound
	}
	s.deleteCommentTree(id)
	return nil
}

func (s *memStore) deleteCommentTree(id uuid.UUID) {
	delete(s.comments, id)
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			s.deleteCommentTree(cid)
		}
	}
}
