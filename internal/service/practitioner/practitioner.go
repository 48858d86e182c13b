// Package practitioner manages practitioner profiles, their documents and
// the specialization catalog.
package practitioner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/enum"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/service/paging"
	"github.com/Alijeyrad/pms_backend/pkg/crypto"
	"github.com/Alijeyrad/pms_backend/pkg/s3"
)

const maxSpecializations = 2

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// UpdateRequest edits the caller's practitioner profile. Nil fields are left
// as is; a non-nil Specializations replaces the whole set.
type UpdateRequest struct {
	LicenseNumber         *string
	Category              *string
	MeansOfIdentification *string
	IdentificationNumber  *string
	Specializations       *[]uuid.UUID
}

// Documents are the optional files of one upload. IdentificationType, when
// set, records which kind of document Identification is.
type Documents struct {
	Identification     *s3.File
	IdentificationType *string
	Certificate        *s3.File
}

type SpecializationRequest struct {
	Name        string
	Description string
}

// Profile is a practitioner as returned to clients. IdentificationNumber is
// only filled on the owner's own profile.
type Profile struct {
	repo.Practitioner
	IdentificationNumber *string `json:"identification_number,omitempty"`
	IdentificationURL    *string `json:"means_of_identification_file"`
	CertificateURL       *string `json:"certificate"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Profile, error)
	UploadDocuments(ctx context.Context, userID uuid.UUID, docs Documents) (*Profile, error)
	List(ctx context.Context, p paging.Params) (*paging.Result[Profile], error)
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListSpecializations(ctx context.Context) ([]repo.Specialization, error)
	CreateSpecialization(ctx context.Context, req SpecializationRequest) (*repo.Specialization, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type practitionerService struct {
	db      *repo.Client
	files   s3.Store
	encKey  []byte // AES-256 key for identification numbers; nil disables them
	maxMB   int
	pageDef int
	pageMax int
}

func New(db *repo.Client, files s3.Store, cfg *config.Config) (Service, error) {
	encKey, err := crypto.KeyFromHex(cfg.Authentication.EncryptionKey)
	if err != nil && !errors.Is(err, crypto.ErrNoKey) {
		return nil, fmt.Errorf("practitioner service: invalid encryption key: %w", err)
	}
	if files == nil {
		files = s3.Disabled{}
	}
	return &practitionerService{
		db:      db,
		files:   files,
		encKey:  encKey,
		maxMB:   cfg.S3.MaxUploadMB,
		pageDef: cfg.Assessment.DefaultPageSize,
		pageMax: cfg.Assessment.MaxPageSize,
	}, nil
}

func (s *practitionerService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := s.db.Practitioners.GetByUser(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPractitionerNotFound
		}
		return nil, fmt.Errorf("get practitioner: %w", err)
	}
	out, err := s.view(ctx, p)
	if err != nil {
		return nil, err
	}
	if p.IdentificationNumber != nil && s.encKey != nil {
		plain, err := crypto.Decrypt(s.encKey, *p.IdentificationNumber)
		if err != nil {
			slog.WarnContext(ctx, "decrypt identification number", "practitioner_id", p.ID, "error", err)
		} else {
			out.IdentificationNumber = &plain
		}
	}
	return out, nil
}

func (s *practitionerService) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := s.db.Practitioners.Get(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPractitionerNotFound
		}
		return nil, fmt.Errorf("get practitioner: %w", err)
	}
	return s.view(ctx, p)
}

// Delete removes the practitioner's account with its profile and the
// assessments they recorded, then drops the stored files.
func (s *practitionerService) Delete(ctx context.Context, id uuid.UUID) error {
	var keys []string
	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		p, err := tx.Practitioners.Get(ctx, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPractitionerNotFound
			}
			return fmt.Errorf("get practitioner: %w", err)
		}
		u, err := tx.Users.Get(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		for _, k := range []*string{p.IdentificationKey, p.CertificateKey, u.AvatarKey} {
			if k != nil {
				keys = append(keys, *k)
			}
		}
		if err := tx.Users.Delete(ctx, p.UserID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.files.Delete(ctx, k); err != nil {
			slog.WarnContext(ctx, "delete practitioner file", "key", k, "error", err)
		}
	}
	slog.InfoContext(ctx, "practitioner account deleted", "practitioner_id", id)
	return nil
}

func (s *practitionerService) List(ctx context.Context, p paging.Params) (*paging.Result[Profile], error) {
	p = p.Normalize(s.pageDef, s.pageMax)
	rows, total, err := s.db.Practitioners.List(ctx, p.Repo())
	if err != nil {
		return nil, fmt.Errorf("list practitioners: %w", err)
	}
	out := make([]Profile, 0, len(rows))
	for i := range rows {
		v, err := s.view(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return paging.NewResult(out, total, p), nil
}

// view attaches the user and presigned document links.
func (s *practitionerService) view(ctx context.Context, p *repo.Practitioner) (*Profile, error) {
	u, err := s.db.Users.Get(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("get practitioner user: %w", err)
	}
	p.User = u
	return &Profile{
		Practitioner:      *p,
		IdentificationURL: s.presign(ctx, p.IdentificationKey),
		CertificateURL:    s.presign(ctx, p.CertificateKey),
	}, nil
}

func (s *practitionerService) presign(ctx context.Context, key *string) *string {
	if key == nil {
		return nil
	}
	url, err := s.files.PresignDownload(ctx, *key)
	if err != nil {
		if !errors.Is(err, s3.ErrDisabled) {
			slog.WarnContext(ctx, "presign document", "key", *key, "error", err)
		}
		return nil
	}
	return &url
}

// ---------------------------------------------------------------------------
// UpdateProfile
// ---------------------------------------------------------------------------

func (s *practitionerService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Profile, error) {
	verr := &ValidationError{}
	upd := repo.PractitionerUpdate{}

	if req.LicenseNumber != nil {
		v := strings.TrimSpace(*req.LicenseNumber)
		if v == "" {
			verr.Add("license_number", ErrRequired)
		}
		upd.LicenseNumber = &v
	}
	if req.Category != nil {
		c := enum.PractitionerCategory(strings.ToLower(strings.TrimSpace(*req.Category)))
		if !c.Valid() {
			verr.Add("category", ErrInvalidCategory)
		}
		v := string(c)
		upd.Category = &v
	}
	if req.MeansOfIdentification != nil {
		upd.MeansOfIdentification = parseIDType(*req.MeansOfIdentification, verr)
	}
	if req.IdentificationNumber != nil {
		v := strings.TrimSpace(*req.IdentificationNumber)
		switch {
		case v == "":
			verr.Add("identification_number", ErrRequired)
		case s.encKey == nil:
			verr.Add("identification_number", ErrEncryptionDisabled)
		default:
			sealed, err := crypto.Encrypt(s.encKey, v)
			if err != nil {
				return nil, fmt.Errorf("encrypt identification number: %w", err)
			}
			upd.IdentificationNumber = &sealed
		}
	}

	var specs []uuid.UUID
	if req.Specializations != nil {
		var err error
		specs, err = s.checkSpecializations(ctx, *req.Specializations, verr)
		if err != nil {
			return nil, err
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	err := s.db.WithTx(ctx, func(tx *repo.Tx) error {
		p, err := tx.Practitioners.GetByUser(ctx, userID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrPractitionerNotFound
			}
			return fmt.Errorf("get practitioner: %w", err)
		}
		if err := tx.Practitioners.Update(ctx, p.ID, upd); err != nil {
			if repo.IsUnique(err) {
				return ErrLicenseTaken
			}
			return fmt.Errorf("update practitioner: %w", err)
		}
		if req.Specializations != nil {
			if err := tx.Practitioners.SetSpecializations(ctx, p.ID, specs); err != nil {
				return fmt.Errorf("set specializations: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// parseIDType accepts a stored value or its label.
func parseIDType(raw string, verr *ValidationError) *string {
	t := enum.IDType(strings.TrimSpace(raw))
	if !t.Valid() {
		byLabel, ok := enum.IDTypes.ByLabel(string(t))
		if !ok {
			verr.Add("means_of_identification_type", ErrInvalidIDType)
		}
		t = byLabel
	}
	v := string(t)
	return &v
}

// checkSpecializations dedupes ids and checks the allowed count and that each
// exists. An empty list clears the set.
func (s *practitionerService) checkSpecializations(ctx context.Context, ids []uuid.UUID, verr *ValidationError) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return out, nil
	}
	if len(out) > maxSpecializations {
		verr.Add("specializations", ErrSpecializationCount)
		return nil, nil
	}
	n, err := s.db.Catalog.CountExisting(ctx, "specializations", out)
	if err != nil {
		return nil, fmt.Errorf("check specializations: %w", err)
	}
	if n != len(out) {
		verr.Add("specializations", ErrSpecializationNotFound)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// UploadDocuments
// ---------------------------------------------------------------------------

func (s *practitionerService) UploadDocuments(ctx context.Context, userID uuid.UUID, docs Documents) (*Profile, error) {
	if docs.Identification == nil && docs.Certificate == nil {
		return nil, ErrNoDocuments
	}
	upd := repo.PractitionerUpdate{}
	if docs.IdentificationType != nil {
		verr := &ValidationError{}
		upd.MeansOfIdentification = parseIDType(*docs.IdentificationType, verr)
		if err := verr.Err(); err != nil {
			return nil, err
		}
	}
	p, err := s.db.Practitioners.GetByUser(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrPractitionerNotFound
		}
		return nil, fmt.Errorf("get practitioner: %w", err)
	}

	var stored, replaced []string
	cleanup := func() {
		for _, k := range stored {
			_ = s.files.Delete(ctx, k)
		}
	}

	if f := docs.Identification; f != nil {
		key, err := s3.Put(ctx, s.files, "identification", p.ID, *f, s.maxMB)
		if err != nil {
			return nil, err
		}
		stored = append(stored, key)
		upd.IdentificationKey = &key
		if p.IdentificationKey != nil {
			replaced = append(replaced, *p.IdentificationKey)
		}
	}
	if f := docs.Certificate; f != nil {
		key, err := s3.Put(ctx, s.files, "certificates", p.ID, *f, s.maxMB)
		if err != nil {
			cleanup()
			return nil, err
		}
		stored = append(stored, key)
		upd.CertificateKey = &key
		if p.CertificateKey != nil {
			replaced = append(replaced, *p.CertificateKey)
		}
	}

	if err := s.db.Practitioners.Update(ctx, p.ID, upd); err != nil {
		cleanup()
		return nil, fmt.Errorf("save documents: %w", err)
	}
	for _, k := range replaced {
		if err := s.files.Delete(ctx, k); err != nil {
			slog.WarnContext(ctx, "delete replaced document", "key", k, "error", err)
		}
	}
	slog.InfoContext(ctx, "practitioner documents uploaded", "practitioner_id", p.ID, "files", len(stored))
	return s.GetProfile(ctx, userID)
}

// ---------------------------------------------------------------------------
// Specializations
// ---------------------------------------------------------------------------

func (s *practitionerService) ListSpecializations(ctx context.Context) ([]repo.Specialization, error) {
	out, err := s.db.Catalog.ListSpecializations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specializations: %w", err)
	}
	return out, nil
}

func (s *practitionerService) CreateSpecialization(ctx context.Context, req SpecializationRequest) (*repo.Specialization, error) {
	sp := &repo.Specialization{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if sp.Name == "" {
		verr := &ValidationError{}
		verr.Add("name", ErrRequired)
		return nil, verr
	}
	if err := s.db.Catalog.CreateSpecialization(ctx, sp); err != nil {
		if repo.IsUnique(err) {
			return nil, ErrSpecializationTaken
		}
		return nil, fmt.Errorf("create specialization: %w", err)
	}
	return sp, nil
}
