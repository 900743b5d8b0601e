package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/commune-hq/commune/internal/domain"
	"github.com/commune-hq/commune/internal/repository"
)

// In-memory repository fakes. They mirror the postgres implementations'
// contracts: Get* returns (nil, nil) on a miss, uniqueness violations return
// repository.ErrConflict wrapped with the constraint name.

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Username == user.Username {
			return fmt.Errorf("users_username_key: %w", repository.ErrConflict)
		}
		if u.Email == user.Email {
			return fmt.Errorf("users_email_key: %w", repository.ErrConflict)
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	delete(r.users, id)
	return nil
}

type fakeProfileRepo struct {
	nextID      int64
	experiences map[int64]*domain.WorkExperience
	educations  map[int64]*domain.Education
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		experiences: make(map[int64]*domain.WorkExperience),
		educations:  make(map[int64]*domain.Education),
	}
}

func (r *fakeProfileRepo) CreateExperience(ctx context.Context, exp *domain.WorkExperience) error {
	r.nextID++
	exp.ID = r.nextID
	cp := *exp
	r.experiences[exp.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetExperience(ctx context.Context, id int64) (*domain.WorkExperience, error) {
	e, ok := r.experiences[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeProfileRepo) ListExperiences(ctx context.Context, userID int64) ([]domain.WorkExperience, error) {
	var out []domain.WorkExperience
	for _, e := range r.experiences {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProfileRepo) UpdateExperience(ctx context.Context, exp *domain.WorkExperience) error {
	cp := *exp
	r.experiences[exp.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) DeleteExperience(ctx context.Context, id int64) error {
	delete(r.experiences, id)
	return nil
}

func (r *fakeProfileRepo) CreateEducation(ctx context.Context, edu *domain.Education) error {
	r.nextID++
	edu.ID = r.nextID
	cp := *edu
	r.educations[edu.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) GetEducation(ctx context.Context, id int64) (*domain.Education, error) {
	e, ok := r.educations[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeProfileRepo) ListEducations(ctx context.Context, userID int64) ([]domain.Education, error) {
	var out []domain.Education
	for _, e := range r.educations {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProfileRepo) UpdateEducation(ctx context.Context, edu *domain.Education) error {
	cp := *edu
	r.educations[edu.ID] = &cp
	return nil
}

func (r *fakeProfileRepo) DeleteEducation(ctx context.Context, id int64) error {
	delete(r.educations, id)
	return nil
}

type userSkillKey struct {
	userID, skillID int64
}

type fakeSkillRepo struct {
	nextID     int64
	skills     map[int64]*domain.Skill
	userSkills map[userSkillKey]int // endorsement counter
}

func newFakeSkillRepo() *fakeSkillRepo {
	return &fakeSkillRepo{
		skills:     make(map[int64]*domain.Skill),
		userSkills: make(map[userSkillKey]int),
	}
}

func (r *fakeSkillRepo) GetOrCreate(ctx context.Context, name string) (*domain.Skill, error) {
	for _, s := range r.skills {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	r.nextID++
	s := &domain.Skill{ID: r.nextID, Name: name}
	r.skills[s.ID] = s
	cp := *s
	return &cp, nil
}

func (r *fakeSkillRepo) List(ctx context.Context) ([]domain.Skill, error) {
	var out []domain.Skill
	for _, s := range r.skills {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSkillRepo) AddUserSkill(ctx context.Context, userID, skillID int64) error {
	key := userSkillKey{userID, skillID}
	if _, ok := r.userSkills[key]; ok {
		return fmt.Errorf("user_skills_pkey: %w", repository.ErrConflict)
	}
	r.userSkills[key] = 0
	return nil
}

func (r *fakeSkillRepo) ListUserSkills(ctx context.Context, userID int64) ([]domain.UserSkill, error) {
	var out []domain.UserSkill
	for key, n := range r.userSkills {
		if key.userID == userID {
			out = append(out, domain.UserSkill{
				UserID:       key.userID,
				SkillID:      key.skillID,
				Endorsements: n,
				SkillName:    r.skills[key.skillID].Name,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out, nil
}

func (r *fakeSkillRepo) Endorse(ctx context.Context, userID, skillID int64) (int, bool, error) {
	key := userSkillKey{userID, skillID}
	if _, ok := r.userSkills[key]; !ok {
		return 0, false, nil
	}
	r.userSkills[key]++
	return r.userSkills[key], true, nil
}

func (r *fakeSkillRepo) RemoveUserSkill(ctx context.Context, userID, skillID int64) error {
	delete(r.userSkills, userSkillKey{userID, skillID})
	return nil
}

type fakeCategoryRepo struct {
	nextID     int64
	categories map[int64]*domain.Category
	services   *fakeServiceRepo
}

func newFakeCategoryRepo(services *fakeServiceRepo) *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int64]*domain.Category), services: services}
}

func (r *fakeCategoryRepo) Create(ctx context.Context, cat *domain.Category) error {
	for _, c := range r.categories {
		if c.Name == cat.Name {
			return fmt.Errorf("categories_name_key: %w", repository.ErrConflict)
		}
	}
	r.nextID++
	cat.ID = r.nextID
	cp := *cat
	r.categories[cat.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	// Same fan-out the postgres implementation does in its transaction.
	if r.services != nil {
		for _, svc := range r.services.services {
			if svc.CategoryID != nil && *svc.CategoryID == id {
				svc.CategoryID = nil
			}
		}
	}
	delete(r.categories, id)
	return nil
}

type fakeServiceRepo struct {
	nextID   int64
	services map[int64]*domain.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[int64]*domain.Service)}
}

func (r *fakeServiceRepo) Create(ctx context.Context, svc *domain.Service) error {
	r.nextID++
	svc.ID = r.nextID
	cp := *svc
	r.services[svc.ID] = &cp
	return nil
}

func (r *fakeServiceRepo) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeServiceRepo) List(ctx context.Context, categoryID *int64) ([]domain.Service, error) {
	var out []domain.Service
	for _, s := range r.services {
		if categoryID != nil && (s.CategoryID == nil || *s.CategoryID != *categoryID) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeServiceRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Service, error) {
	var out []domain.Service
	for _, s := range r.services {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeServiceRepo) Update(ctx context.Context, svc *domain.Service) error {
	cp := *svc
	r.services[svc.ID] = &cp
	return nil
}

func (r *fakeServiceRepo) Delete(ctx context.Context, id int64) error {
	delete(r.services, id)
	return nil
}

type reactionKey struct {
	postID, userID int64
}

type fakePostRepo struct {
	nextID    int64
	posts     map[int64]*domain.Post
	comments  map[int64]*domain.Comment
	reactions map[reactionKey]*domain.Reaction
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:     make(map[int64]*domain.Post),
		comments:  make(map[int64]*domain.Comment),
		reactions: make(map[reactionKey]*domain.Reaction),
	}
}

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post) error {
	r.nextID++
	post.ID = r.nextID
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) List(ctx context.Context, before *int64, limit int) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range r.posts {
		if before != nil && p.ID >= *before {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	var out []domain.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *domain.Post) error {
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id int64) error {
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) CreateComment(ctx context.Context, c *domain.Comment) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakePostRepo) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakePostRepo) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePostRepo) DeleteComment(ctx context.Context, id int64) error {
	delete(r.comments, id)
	return nil
}

func (r *fakePostRepo) SetReaction(ctx context.Context, reaction *domain.Reaction) error {
	key := reactionKey{reaction.PostID, reaction.UserID}
	if existing, ok := r.reactions[key]; ok {
		existing.Type = reaction.Type
		*reaction = *existing
		return nil
	}
	r.nextID++
	reaction.ID = r.nextID
	cp := *reaction
	r.reactions[key] = &cp
	return nil
}

func (r *fakePostRepo) GetReaction(ctx context.Context, postID, userID int64) (*domain.Reaction, error) {
	re, ok := r.reactions[reactionKey{postID, userID}]
	if !ok {
		return nil, nil
	}
	cp := *re
	return &cp, nil
}

func (r *fakePostRepo) ListReactions(ctx context.Context, postID int64) ([]domain.Reaction, error) {
	var out []domain.Reaction
	for _, re := range r.reactions {
		if re.PostID == postID {
			out = append(out, *re)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePostRepo) DeleteReaction(ctx context.Context, postID, userID int64) error {
	delete(r.reactions, reactionKey{postID, userID})
	return nil
}

type fakeInstanceRepo struct {
	nextID     int64
	instances  map[int64]*domain.Instance
	federation map[int64]*domain.FederatedInstance
}

func newFakeInstanceRepo() *fakeInstanceRepo {
	return &fakeInstanceRepo{
		instances:  make(map[int64]*domain.Instance),
		federation: make(map[int64]*domain.FederatedInstance),
	}
}

func (r *fakeInstanceRepo) Create(ctx context.Context, inst *domain.Instance) error {
	for _, i := range r.instances {
		if i.Domain == inst.Domain {
			return fmt.Errorf("instances_domain_key: %w", repository.ErrConflict)
		}
	}
	r.nextID++
	inst.ID = r.nextID
	cp := *inst
	r.instances[inst.ID] = &cp
	return nil
}

func (r *fakeInstanceRepo) GetByID(ctx context.Context, id int64) (*domain.Instance, error) {
	i, ok := r.instances[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *fakeInstanceRepo) GetByDomain(ctx context.Context, dom string) (*domain.Instance, error) {
	for _, i := range r.instances {
		if i.Domain == dom {
			cp := *i
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInstanceRepo) List(ctx context.Context) ([]domain.Instance, error) {
	var out []domain.Instance
	for _, i := range r.instances {
		out = append(out, *i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeInstanceRepo) UpdateSettings(ctx context.Context, inst *domain.Instance) error {
	cp := *inst
	r.instances[inst.ID] = &cp
	return nil
}

func (r *fakeInstanceRepo) CreateFederation(ctx context.Context, fed *domain.FederatedInstance) error {
	for _, f := range r.federation {
		if f.InstanceID == fed.InstanceID && f.FedWithInstanceID == fed.FedWithInstanceID {
			return fmt.Errorf("federated_instances_pair_key: %w", repository.ErrConflict)
		}
	}
	r.nextID++
	fed.ID = r.nextID
	cp := *fed
	r.federation[fed.ID] = &cp
	return nil
}

func (r *fakeInstanceRepo) GetFederation(ctx context.Context, id int64) (*domain.FederatedInstance, error) {
	f, ok := r.federation[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeInstanceRepo) GetFederationByPair(ctx context.Context, instanceID, peerID int64) (*domain.FederatedInstance, error) {
	for _, f := range r.federation {
		if f.InstanceID == instanceID && f.FedWithInstanceID == peerID {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInstanceRepo) ListFederation(ctx context.Context, instanceID int64) ([]domain.FederatedInstance, error) {
	var out []domain.FederatedInstance
	for _, f := range r.federation {
		if f.InstanceID == instanceID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeInstanceRepo) UpdateFederationStatus(ctx context.Context, id int64, status string) error {
	if f, ok := r.federation[id]; ok {
		f.Status = status
	}
	return nil
}

func (r *fakeInstanceRepo) DeleteFederation(ctx context.Context, id int64) error {
	delete(r.federation, id)
	return nil
}

type fakeActivityRepo struct {
	nextID     int64
	activities []domain.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (r *fakeActivityRepo) Append(ctx context.Context, act *domain.Activity) error {
	r.nextID++
	act.ID = r.nextID
	r.activities = append(r.activities, *act)
	return nil
}

func (r *fakeActivityRepo) ListByInstance(ctx context.Context, instanceID int64, limit int) ([]domain.Activity, error) {
	var out []domain.Activity
	for i := len(r.activities) - 1; i >= 0 && len(out) < limit; i-- {
		if r.activities[i].InstanceID == instanceID {
			out = append(out, r.activities[i])
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, sess *domain.Session) error {
	cp := *sess
	r.sessions[sess.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
