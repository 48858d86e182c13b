package repo

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/pms_backend/internal/enum"
)

type Address struct {
	ID      uuid.UUID `json:"id"`
	Country string    `json:"country"`
	State   string    `json:"state"`
	City    string    `json:"city"`
	ZipCode string    `json:"zip_code"`
	Town    string    `json:"town"`
	Address string    `json:"address"`
}

type User struct {
	ID                  uuid.UUID     `json:"id"`
	Username            string        `json:"username"`
	Email               string        `json:"email"`
	PhoneNumber         *string       `json:"phone_number"`
	PasswordHash        string        `json:"-"`
	FirstName           string        `json:"first_name"`
	LastName            string        `json:"last_name"`
	UserRole            enum.UserType `json:"user_role"`
	Gender              *enum.Gender  `json:"gender"`
	DateOfBirth         *time.Time    `json:"date_of_birth"`
	AvatarKey           *string       `json:"-"`
	IsVerified          bool          `json:"is_verified"`
	IsActive            bool          `json:"is_active"`
	AcceptedTerms       bool          `json:"accepted_terms"`
	FirstLogin          bool          `json:"first_login"`
	LastLogin           *time.Time    `json:"last_login"`
	FailedLoginAttempts int           `json:"-"`
	LockedUntil         *time.Time    `json:"-"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
	AddressID           *uuid.UUID    `json:"-"`

	Address *Address `json:"address,omitempty"`
}

type EmergencyContact struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
}

type Allergy struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type Medication struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Patient struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	BloodGroup         *enum.BloodGroup `json:"blood_group"`
	Genotype           *enum.Genotype   `json:"genotype"`
	Nationality        string           `json:"nationality"`
	EmergencyContactID *uuid.UUID       `json:"-"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`

	User             *User             `json:"user,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	Allergies        []Allergy         `json:"allergies"`
	Medications      []Medication      `json:"medications"`
}

type Specialization struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type Practitioner struct {
	ID                    uuid.UUID                  `json:"id"`
	UserID                uuid.UUID                  `json:"user_id"`
	LicenseNumber         *string                    `json:"license_number"`
	Category              *enum.PractitionerCategory `json:"category"`
	MeansOfIdentification *enum.IDType               `json:"means_of_identification"`
	IdentificationNumber  *string                    `json:"-"`
	IdentificationKey     *string                    `json:"-"`
	CertificateKey        *string                    `json:"-"`
	CreatedAt             time.Time                  `json:"created_at"`
	UpdatedAt             time.Time                  `json:"updated_at"`

	User            *User            `json:"user,omitempty"`
	Specializations []Specialization `json:"specializations"`
}

type AuthToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenType enum.AuthTokenType
	TokenHash string
	Status    enum.AuthTokenStatus
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token can no longer be redeemed at now.
func (t AuthToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type AssessmentType struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Question struct {
	ID               uuid.UUID `json:"id"`
	AssessmentTypeID uuid.UUID `json:"assessment_type"`
	Text             string    `json:"text"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Answers []Answer `json:"answers,omitempty"`
}

type Answer struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Assessment struct {
	ID               uuid.UUID `json:"id"`
	PractitionerID   uuid.UUID `json:"practitioner"`
	PatientID        uuid.UUID `json:"patient"`
	AssessmentTypeID uuid.UUID `json:"assessment_type"`
	Date             time.Time `json:"date"`
	FinalScore       float64   `json:"final_score"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Results []AssessmentResult `json:"results"`
}

// AssessmentResult is one recorded (question, answer) pair. IsCorrect is
// read from the referenced answer and is never stored on the result.
type AssessmentResult struct {
	ID           uuid.UUID `json:"id"`
	AssessmentID uuid.UUID `json:"-"`
	QuestionID   uuid.UUID `json:"question"`
	AnswerID     uuid.UUID `json:"answer"`
	IsCorrect    bool      `json:"is_correct"`
}

// NewID returns a time-ordered UUIDv7.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
