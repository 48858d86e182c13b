package enum

import (
	"fmt"
	"strings"
)

type UserType int

const (
	UserTypeUser         UserType = 0
	UserTypePractitioner UserType = 1
	UserTypeAdmin        UserType = 2
)

var UserTypes = newSet(
	Choice[UserType]{UserTypeUser, "USER"},
	Choice[UserType]{UserTypePractitioner, "PRACTITIONER"},
	Choice[UserType]{UserTypeAdmin, "ADMIN"},
)

func (t UserType) String() string { return UserTypes.Label(t) }
func (t UserType) Valid() bool    { return UserTypes.Valid(t) }

// AccountType is the self-service registration path. Admins are never
// created through registration.
type AccountType string

const (
	AccountTypeUser         AccountType = "user"
	AccountTypePractitioner AccountType = "practitioner"
)

var AccountTypes = newSet(
	Choice[AccountType]{AccountTypeUser, "USER"},
	Choice[AccountType]{AccountTypePractitioner, "PRACTITIONER"},
)

func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !AccountTypes.Valid(t) {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// UserType maps a registration path to the stored role tag.
func (a AccountType) UserType() UserType {
	if a == AccountTypePractitioner {
		return UserTypePractitioner
	}
	return UserTypeUser
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOthers Gender = "others"
)

var Genders = newSet(
	Choice[Gender]{GenderMale, "Male"},
	Choice[Gender]{GenderFemale, "Female"},
	Choice[Gender]{GenderOthers, "Others"},
)

func (g Gender) Valid() bool { return Genders.Valid(g) }

type IDType string

const (
	IDTypePassport       IDType = "international_passport"
	IDTypeDriverLicense  IDType = "drivers_licence"
	IDTypeSocialSecurity IDType = "social security"
	IDTypeVotersCard     IDType = "voters card"
)

var IDTypes = newSet(
	Choice[IDType]{IDTypePassport, "PASSPORT"},
	Choice[IDType]{IDTypeDriverLicense, "DRIVER'S LICENSE"},
	Choice[IDType]{IDTypeSocialSecurity, "SOCIAL_SECURITY"},
	Choice[IDType]{IDTypeVotersCard, "VOTERS CARD"},
)

func (t IDType) Valid() bool { return IDTypes.Valid(t) }

type PractitionerCategory string

const (
	CategoryDoctor          PractitionerCategory = "doctor"
	CategoryNurse           PractitionerCategory = "nurse"
	CategoryPhysiotherapist PractitionerCategory = "physiotherapist"
	CategoryChiropractic    PractitionerCategory = "chiropractic"
	CategoryOrthopedic      PractitionerCategory = "orthopedic"
	CategoryPharmacist      PractitionerCategory = "pharmacist"
)

var PractitionerCategories = newSet(
	Choice[PractitionerCategory]{CategoryDoctor, "DOCTOR"},
	Choice[PractitionerCategory]{CategoryNurse, "NURSE"},
	Choice[PractitionerCategory]{CategoryPhysiotherapist, "PHYSIOTHERAPIST"},
	Choice[PractitionerCategory]{CategoryChiropractic, "CHIROPRACTIC"},
	Choice[PractitionerCategory]{CategoryOrthopedic, "ORTHOPEDIC"},
	Choice[PractitionerCategory]{CategoryPharmacist, "PHARMACIST"},
)

func (c PractitionerCategory) Valid() bool { return PractitionerCategories.Valid(c) }
