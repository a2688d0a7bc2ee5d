package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
)

// Membership manages the members collection.
type Membership struct {
	store store.Store
	opts  Options
}

func NewMembership(s store.Store, opts Options) *Membership {
	return &Membership{store: s, opts: opts.withDefaults()}
}

// List returns every member, or those whose name or id contains search.
func (m *Membership) List(ctx context.Context, search string) ([]models.Member, error) {
	members, _, err := store.LoadMembers(ctx, m.store)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(search)
	if q == "" {
		return members, nil
	}
	matched := []models.Member{}
	for _, mem := range members {
		if containsFold(q, mem.Name, mem.ID) {
			matched = append(matched, mem)
		}
	}
	return matched, nil
}

func (m *Membership) Get(ctx context.Context, id string) (*models.Member, error) {
	members, _, err := store.LoadMembers(ctx, m.store)
	if err != nil {
		return nil, err
	}
	i := memberIndex(members, id)
	if i < 0 {
		return nil, notFound(ReasonMember, "Member not found")
	}
	return &members[i], nil
}

func (m *Membership) Create(ctx context.Context, in models.MemberInput) (*models.Member, error) {
	var created models.Member
	err := m.opts.withRetry(ctx, "create member", func() error {
		members, etag, err := store.LoadMembers(ctx, m.store)
		if err != nil {
			return err
		}
		if emailTaken(members, in.Email, "") {
			return conflict(ReasonDuplicateEmail, "Member with this email already exists")
		}
		created = models.Member{
			ID:         uuid.NewString(),
			Name:       in.Name,
			Email:      in.Email,
			Phone:      in.Phone,
			JoinedDate: m.opts.Now().Format(models.JoinedDateLayout),
		}
		w, err := store.MembersWrite(append(members, created), etag)
		if err != nil {
			return err
		}
		return m.store.Apply(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	m.opts.Log.Info("member created", "member_id", created.ID)
	return &created, nil
}

// Update replaces name, email and phone; the joined date is kept as stored.
func (m *Membership) Update(ctx context.Context, id string, in models.MemberInput) (*models.Member, error) {
	var updated models.Member
	err := m.opts.withRetry(ctx, "update member", func() error {
		members, etag, err := store.LoadMembers(ctx, m.store)
		if err != nil {
			return err
		}
		i := memberIndex(members, id)
		if i < 0 {
			return notFound(ReasonMember, "Member not found")
		}
		if emailTaken(members, in.Email, id) {
			return conflict(ReasonDuplicateEmail, "Member with this email already exists")
		}
		updated = models.Member{
			ID:         id,
			Name:       in.Name,
			Email:      in.Email,
			Phone:      in.Phone,
			JoinedDate: members[i].JoinedDate,
		}
		members[i] = updated
		w, err := store.MembersWrite(members, etag)
		if err != nil {
			return err
		}
		return m.store.Apply(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the member without looking at their open transactions.
func (m *Membership) Delete(ctx context.Context, id string) error {
	return m.opts.withRetry(ctx, "delete member", func() error {
		members, etag, err := store.LoadMembers(ctx, m.store)
		if err != nil {
			return err
		}
		i := memberIndex(members, id)
		if i < 0 {
			return notFound(ReasonMember, "Member not found")
		}
		w, err := store.MembersWrite(append(members[:i:i], members[i+1:]...), etag)
		if err != nil {
			return err
		}
		return m.store.Apply(ctx, w)
	})
}

func memberIndex(members []models.Member, id string) int {
	for i := range members {
		if members[i].ID == id {
			return i
		}
	}
	return -1
}

// Emails compare case-insensitively.
func emailTaken(members []models.Member, email, exceptID string) bool {
	for _, mem := range members {
		if strings.EqualFold(mem.Email, email) && mem.ID != exceptID {
			return true
		}
	}
	return false
}
