package enum

type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
)

var BloodGroups = newSet(
	Choice[BloodGroup]{BloodGroupAPos, "A+"},
	Choice[BloodGroup]{BloodGroupANeg, "A-"},
	Choice[BloodGroup]{BloodGroupBPos, "B+"},
	Choice[BloodGroup]{BloodGroupBNeg, "B-"},
	Choice[BloodGroup]{BloodGroupOPos, "O+"},
	Choice[BloodGroup]{BloodGroupONeg, "O-"},
	Choice[BloodGroup]{BloodGroupABPos, "AB+"},
	Choice[BloodGroup]{BloodGroupABNeg, "AB-"},
)

func (b BloodGroup) Valid() bool { return BloodGroups.Valid(b) }

type Genotype string

const (
	GenotypeAA Genotype = "AA"
	GenotypeAS Genotype = "AS"
	GenotypeSS Genotype = "SS"
)

var Genotypes = newSet(
	Choice[Genotype]{GenotypeAA, "AA"},
	Choice[Genotype]{GenotypeAS, "AS"},
	Choice[Genotype]{GenotypeSS, "SS"},
)

func (g Genotype) Valid() bool { return Genotypes.Valid(g) }
