package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"lionshub/internal/domain"
)

// Shared hand-rolled fakes implementing the domain ports.

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeTenantRepo implements domain.TenantRepository.
type fakeTenantRepo struct {
	byID      map[string]*domain.Tenant
	bySlug    map[string]*domain.Tenant
	getErr    error
	createErr error
	created   []*domain.Tenant
	updated   int
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{
		byID:   make(map[string]*domain.Tenant),
		bySlug: make(map[string]*domain.Tenant),
	}
}

func (f *fakeTenantRepo) add(t *domain.Tenant) {
	f.byID[t.ID] = t
	f.bySlug[t.Slug] = t
}

func (f *fakeTenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if t, ok := f.byID[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if t, ok := f.bySlug[slug]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTenantRepo) GetBySlugAndNumber(ctx context.Context, slug, clubNumber string) (*domain.Tenant, error) {
	if t, ok := f.bySlug[slug]; ok && t.ClubNumber == clubNumber {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	if _, ok := f.byID[t.ID]; !ok {
		return domain.ErrNotFound
	}
	f.add(t)
	f.updated++
	return nil
}

func (f *fakeTenantRepo) CreateWithDefaults(ctx context.Context, t *domain.Tenant, admin *domain.Member) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.bySlug[t.Slug]; ok {
		return domain.ErrDuplicateSlug
	}
	t.ID = "tenant-" + t.Slug
	admin.TenantID = t.ID
	admin.ID = "member-admin"
	roleID := "role-admin"
	admin.RoleID = &roleID
	f.add(t)
	f.created = append(f.created, t)
	return nil
}

// fakeMemberRepo implements domain.MemberRepository.
type fakeMemberRepo struct {
	byID        map[string]*domain.Member
	byEmail     map[string]*domain.Member // key tenantID + "/" + email
	adminCount  int
	deleted     []string
	deleteErr   error
	nextID      int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		byID:    make(map[string]*domain.Member),
		byEmail: make(map[string]*domain.Member),
	}
}

func (f *fakeMemberRepo) add(m *domain.Member) {
	f.byID[m.ID] = m
	f.byEmail[m.TenantID+"/"+m.Email] = m
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *domain.Member) error {
	if _, ok := f.byEmail[m.TenantID+"/"+m.Email]; ok {
		return domain.ErrDuplicateMember
	}
	f.nextID++
	m.ID = "member-created"
	f.add(m)
	return nil
}

func (f *fakeMemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if m, ok := f.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMemberRepo) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Member, error) {
	for _, m := range f.byID {
		if m.AuthUserID != nil && *m.AuthUserID == authUserID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMemberRepo) GetByEmail(ctx context.Context, tenantID, email string) (*domain.Member, error) {
	if m, ok := f.byEmail[tenantID+"/"+email]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMemberRepo) List(ctx context.Context, tenantID string, p domain.PaginationParams) ([]*domain.Member, int, error) {
	var out []*domain.Member
	for _, m := range f.byID {
		if m.TenantID == tenantID {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

func (f *fakeMemberRepo) Update(ctx context.Context, m *domain.Member) error {
	if _, ok := f.byID[m.ID]; !ok {
		return domain.ErrNotFound
	}
	f.add(m)
	return nil
}

func (f *fakeMemberRepo) CountActiveAdmins(ctx context.Context, tenantID string) (int, error) {
	return f.adminCount, nil
}

func (f *fakeMemberRepo) DeleteWithReassign(ctx context.Context, memberID, newOwnerID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	m, ok := f.byID[memberID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, memberID)
	delete(f.byEmail, m.TenantID+"/"+m.Email)
	f.deleted = append(f.deleted, memberID)
	return nil
}

// fakeRoleRepo implements domain.RoleRepository.
type fakeRoleRepo struct {
	byID    map[string]*domain.Role
	byType  map[string]*domain.Role // key tenantID + "/" + type
	perms   map[string][]string
	listErr error
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		byID:   make(map[string]*domain.Role),
		byType: make(map[string]*domain.Role),
		perms:  make(map[string][]string),
	}
}

func (f *fakeRoleRepo) add(r *domain.Role, codes []string) {
	f.byID[r.ID] = r
	f.byType[r.TenantID+"/"+r.Type] = r
	f.perms[r.ID] = codes
}

func (f *fakeRoleRepo) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) GetByType(ctx context.Context, tenantID, roleType string) (*domain.Role, error) {
	if r, ok := f.byType[tenantID+"/"+roleType]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) ListPermissionCodes(ctx context.Context, roleID string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.perms[roleID], nil
}

// fakeInvitationRepo implements domain.InvitationRepository.
type fakeInvitationRepo struct {
	byID      map[string]*domain.Invitation
	byToken   map[string]*domain.Invitation
	purged    []string
	acceptErr error
	createErr error
	nextID    int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		byID:    make(map[string]*domain.Invitation),
		byToken: make(map[string]*domain.Invitation),
	}
}

func (f *fakeInvitationRepo) add(inv *domain.Invitation) {
	f.byID[inv.ID] = inv
	f.byToken[inv.Token] = inv
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.TenantID == inv.TenantID && existing.Email == inv.Email {
			return domain.ErrDuplicateInvitation
		}
	}
	f.nextID++
	inv.ID = "inv-created"
	f.add(inv)
	return nil
}

func (f *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	if inv, ok := f.byToken[token]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if inv, ok := f.byID[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) GetPendingByEmail(ctx context.Context, tenantID, email string) (*domain.Invitation, error) {
	for _, inv := range f.byID {
		if inv.TenantID == tenantID && inv.Email == email && inv.Status == domain.InvitationStatusPending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Invitation, error) {
	var out []*domain.Invitation
	for _, inv := range f.byID {
		if inv.TenantID == tenantID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) PurgeStale(ctx context.Context, tenantID, email string) error {
	for id, inv := range f.byID {
		if inv.TenantID == tenantID && inv.Email == email && inv.Status != domain.InvitationStatusPending {
			delete(f.byToken, inv.Token)
			delete(f.byID, id)
			f.purged = append(f.purged, id)
		}
	}
	return nil
}

func (f *fakeInvitationRepo) MarkExpired(ctx context.Context, id string) error {
	if inv, ok := f.byID[id]; ok && inv.Status == domain.InvitationStatusPending {
		inv.Status = domain.InvitationStatusExpired
	}
	return nil
}

func (f *fakeInvitationRepo) Accept(ctx context.Context, inv *domain.Invitation, m *domain.Member) error {
	if f.acceptErr != nil {
		return f.acceptErr
	}
	stored, ok := f.byID[inv.ID]
	if !ok || stored.Status != domain.InvitationStatusPending {
		return domain.ErrInvitationNotPending
	}
	now := time.Now()
	stored.Status = domain.InvitationStatusAccepted
	stored.AcceptedAt = &now
	inv.Status = stored.Status
	inv.AcceptedAt = stored.AcceptedAt
	m.ID = "member-accepted"
	return nil
}

func (f *fakeInvitationRepo) Delete(ctx context.Context, id string) error {
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(f.byToken, inv.Token)
	delete(f.byID, id)
	return nil
}

// fakeEventRepo implements domain.EventRepository.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	createErr error
	updated   int
	nextID    int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) add(e *domain.Event) { f.byID[e.ID] = e }

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	e.ID = "event-created"
	f.add(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	f.updated++
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, tenantID string, filter domain.EventFilter, p domain.PaginationParams) ([]*domain.Event, int, error) {
	tiers := map[string]map[string]bool{
		domain.VisibilityMembers: {domain.VisibilityPublic: true, domain.VisibilityMembers: true},
		domain.VisibilityBoard:   {domain.VisibilityPublic: true, domain.VisibilityMembers: true, domain.VisibilityBoard: true},
	}
	allowed := tiers[filter.Visibility]
	var out []*domain.Event
	for _, e := range f.byID {
		if e.TenantID != tenantID {
			continue
		}
		if allowed != nil && !allowed[e.Visibility] {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) ListPublicUpcoming(ctx context.Context, tenantID string, now time.Time) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.TenantID == tenantID && e.Visibility == domain.VisibilityPublic &&
			e.Published && !e.Cancelled && e.StartsAt.After(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeRegistrationRepo implements domain.EventRegistrationRepository.
type fakeRegistrationRepo struct {
	rows      map[string]*domain.EventRegistration // key eventID + "/" + memberID
	upsertErr error
	upserts   int
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{rows: make(map[string]*domain.EventRegistration)}
}

func (f *fakeRegistrationRepo) Upsert(ctx context.Context, reg *domain.EventRegistration) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	key := reg.EventID + "/" + reg.MemberID
	if existing, ok := f.rows[key]; ok {
		reg.ID = existing.ID
		reg.CreatedAt = existing.CreatedAt
	} else {
		reg.ID = "reg-" + key
	}
	cp := *reg
	f.rows[key] = &cp
	f.upserts++
	return nil
}

func (f *fakeRegistrationRepo) GetByEventAndMember(ctx context.Context, eventID, memberID string) (*domain.EventRegistration, error) {
	if r, ok := f.rows[eventID+"/"+memberID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	var out []*domain.EventRegistration
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) CountRegistered(ctx context.Context, eventID string) (int, error) {
	n := 0
	for _, r := range f.rows {
		if r.EventID == eventID && r.Status == domain.RegistrationStatusRegistered {
			n++
		}
	}
	return n, nil
}

// fakePermissions implements domain.PermissionService with a fixed set.
type fakePermissions struct {
	set domain.PermissionSet
	err error
}

func (f *fakePermissions) PermissionsFor(ctx context.Context, member *domain.Member) (domain.PermissionSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

// fakeEmailService implements domain.EmailService and records sends.
type fakeEmailService struct {
	invitations []*domain.InvitationEmailData
	welcomes    []*domain.WelcomeEmailData
	sendErr     error
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.invitations = append(f.invitations, data)
	return nil
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.welcomes = append(f.welcomes, data)
	return nil
}

// fakeAuthAdmin implements domain.AuthAdmin.
type fakeAuthAdmin struct {
	deleted []string
	err     error
}

func (f *fakeAuthAdmin) DeleteUser(ctx context.Context, authUserID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, authUserID)
	return nil
}

// fakeAvatarStorage implements domain.AvatarStorage.
type fakeAvatarStorage struct {
	putKeys    []string
	deleteKeys []string
	putErr     error
	deleteErr  error
}

func (f *fakeAvatarStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.putKeys = append(f.putKeys, key)
	return "https://cdn.example.test/" + key, nil
}

func (f *fakeAvatarStorage) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleteKeys = append(f.deleteKeys, key)
	return nil
}
