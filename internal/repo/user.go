package repo

import (
	"context"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const usersTable = "users"

var userColumns = []string{
	"id", "username", "email", "phone_number", "password_hash", "first_name", "last_name",
	"user_role", "gender", "date_of_birth", "avatar_key", "is_verified", "is_active",
	"accepted_terms", "first_login", "last_login", "failed_login_attempts", "locked_until",
	"created_at", "updated_at", "address_id",
}

func scanUser(rows *entsql.Rows, u *User) error {
	return rows.Scan(
		&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.UserRole, &u.Gender, &u.DateOfBirth, &u.AvatarKey, &u.IsVerified, &u.IsActive,
		&u.AcceptedTerms, &u.FirstLogin, &u.LastLogin, &u.FailedLoginAttempts, &u.LockedUntil,
		&u.CreatedAt, &u.UpdatedAt, &u.AddressID,
	)
}

type UserStore struct {
	q dialect.ExecQuerier
	b *entsql.DialectBuilder
}

// Create inserts u, assigning ID and timestamps when unset.
func (s *UserStore) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = NewID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Email = strings.ToLower(u.Email)

	_, err := exec(ctx, s.q, s.b.Insert(usersTable).
		Columns(userColumns...).
		Values(
			u.ID, u.Username, u.Email, u.PhoneNumber, u.PasswordHash, u.FirstName, u.LastName,
			u.UserRole, u.Gender, u.DateOfBirth, u.AvatarKey, u.IsVerified, u.IsActive,
			u.AcceptedTerms, u.FirstLogin, u.LastLogin, u.FailedLoginAttempts, u.LockedUntil,
			u.CreatedAt, u.UpdatedAt, u.AddressID,
		))
	return err
}

func (s *UserStore) get(ctx context.Context, p *entsql.Predicate) (*User, error) {
	u := &User{}
	err := queryOne(ctx, s.q, s.b.Select(userColumns...).From(s.b.Table(usersTable)).Where(p), func(rows *entsql.Rows) error {
		return scanUser(rows, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.get(ctx, entsql.EQ("id", id))
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.get(ctx, entsql.EQ("email", strings.ToLower(strings.TrimSpace(email))))
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.get(ctx, entsql.EQ("username", username))
}

func (s *UserStore) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return s.get(ctx, entsql.EQ("phone_number", phone))
}

func (s *UserStore) exists(ctx context.Context, p *entsql.Predicate) (bool, error) {
	n, err := count(ctx, s.q, s.b.Select(entsql.Count("*")).From(s.b.Table(usersTable)).Where(p))
	return n > 0, err
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, entsql.EQ("email", strings.ToLower(strings.TrimSpace(email))))
}

func (s *UserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, entsql.EQ("username", username))
}

// PhoneTaken reports whether another user than exclude holds phone.
func (s *UserStore) PhoneTaken(ctx context.Context, phone string, exclude uuid.UUID) (bool, error) {
	return s.exists(ctx, entsql.And(entsql.EQ("phone_number", phone), entsql.NEQ("id", exclude)))
}

type UserFilter struct {
	Role   *int
	Search string
	Page   Page
}

func (f UserFilter) predicate() *entsql.Predicate {
	var ps []*entsql.Predicate
	if f.Role != nil {
		ps = append(ps, entsql.EQ("user_role", *f.Role))
	}
	if f.Search != "" {
		ps = append(ps, entsql.Or(
			entsql.ContainsFold("username", f.Search),
			entsql.ContainsFold("email", f.Search),
			entsql.ContainsFold("first_name", f.Search),
			entsql.ContainsFold("last_name", f.Search),
		))
	}
	if len(ps) == 0 {
		return nil
	}
	return entsql.And(ps...)
}

func (s *UserStore) List(ctx context.Context, f UserFilter) ([]User, int, error) {
	t := s.b.Table(usersTable)
	sel := s.b.Select(userColumns...).From(t).OrderBy(entsql.Desc("created_at"))
	cnt := s.b.Select(entsql.Count("*")).From(t)
	if p := f.predicate(); p != nil {
		sel.Where(p)
		cnt.Where(p)
	}

	total, err := count(ctx, s.q, cnt)
	if err != nil {
		return nil, 0, err
	}

	var out []User
	err = query(ctx, s.q, f.Page.apply(sel), func(rows *entsql.Rows) error {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return err
		}
		out = append(out, u)
		return nil
	})
	return out, total, err
}

// UserUpdate lists the mutable profile columns. Nil fields are left as is.
type UserUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Gender      *string
	DateOfBirth *time.Time
	AddressID   *uuid.UUID
	AvatarKey   *string
}

func (s *UserStore) Update(ctx context.Context, id uuid.UUID, in UserUpdate) error {
	upd := s.b.Update(usersTable).Set("updated_at", time.Now().UTC()).Where(entsql.EQ("id", id))
	if in.FirstName != nil {
		upd.Set("first_name", *in.FirstName)
	}
	if in.LastName != nil {
		upd.Set("last_name", *in.LastName)
	}
	if in.PhoneNumber != nil {
		upd.Set("phone_number", *in.PhoneNumber)
	}
	if in.Gender != nil {
		upd.Set("gender", *in.Gender)
	}
	if in.DateOfBirth != nil {
		upd.Set("date_of_birth", *in.DateOfBirth)
	}
	if in.AddressID != nil {
		upd.Set("address_id", *in.AddressID)
	}
	if in.AvatarKey != nil {
		upd.Set("avatar_key", *in.AvatarKey)
	}
	return mustAffect(exec(ctx, s.q, upd))
}

func (s *UserStore) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return mustAffect(exec(ctx, s.q, s.b.Update(usersTable).
		Set("password_hash", hash).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id))))
}

func (s *UserStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return mustAffect(exec(ctx, s.q, s.b.Update(usersTable).
		Set("is_verified", true).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id))))
}

// RecordLogin resets the failure counters and stamps last_login.
func (s *UserStore) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return mustAffect(exec(ctx, s.q, s.b.Update(usersTable).
		Set("last_login", at).
		Set("first_login", false).
		Set("failed_login_attempts", 0).
		SetNull("locked_until").
		Where(entsql.EQ("id", id))))
}

// RecordFailedLogin stores the new attempt count and, when lockedUntil is
// set, locks the account.
func (s *UserStore) RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error {
	upd := s.b.Update(usersTable).
		Set("failed_login_attempts", attempts).
		Where(entsql.EQ("id", id))
	if lockedUntil != nil {
		upd.Set("locked_until", *lockedUntil)
	}
	return mustAffect(exec(ctx, s.q, upd))
}

func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return mustAffect(exec(ctx, s.q, s.b.Delete(usersTable).Where(entsql.EQ("id", id))))
}

// mustAffect turns a statement that touched no rows into ErrNotFound.
func mustAffect(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAddress inserts a and assigns its ID.
func (s *UserStore) CreateAddress(ctx context.Context, a *Address) error {
	a.ID = NewID()
	_, err := exec(ctx, s.q, s.b.Insert("addresses").
		Columns("id", "country", "state", "city", "zip_code", "town", "address").
		Values(a.ID, a.Country, a.State, a.City, a.ZipCode, a.Town, a.Address))
	return err
}

func (s *UserStore) UpdateAddress(ctx context.Context, a *Address) error {
	return mustAffect(exec(ctx, s.q, s.b.Update("addresses").
		Set("country", a.Country).
		Set("state", a.State).
		Set("city", a.City).
		Set("zip_code", a.ZipCode).
		Set("town", a.Town).
		Set("address", a.Address).
		Where(entsql.EQ("id", a.ID))))
}

func (s *UserStore) GetAddress(ctx context.Context, id uuid.UUID) (*Address, error) {
	a := &Address{}
	err := queryOne(ctx, s.q, s.b.Select("id", "country", "state", "city", "zip_code", "town", "address").
		From(s.b.Table("addresses")).
		Where(entsql.EQ("id", id)), func(rows *entsql.Rows) error {
		return rows.Scan(&a.ID, &a.Country, &a.State, &a.City, &a.ZipCode, &a.Town, &a.Address)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
