package migrate

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	AddressesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "country", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "state", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "city", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "zip_code", Type: field.TypeString, Size: 20, Default: ""},
		{Name: "town", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "address", Type: field.TypeString, Size: 255, Default: ""},
	}
	AddressesTable = &schema.Table{
		Name:       "addresses",
		Columns:    AddressesColumns,
		PrimaryKey: []*schema.Column{AddressesColumns[0]},
	}

	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "username", Type: field.TypeString, Unique: true, Size: 150},
		{Name: "email", Type: field.TypeString, Unique: true, Size: 255},
		{Name: "phone_number", Type: field.TypeString, Unique: true, Nullable: true, Size: 20},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "first_name", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "last_name", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "user_role", Type: field.TypeInt, Default: 0},
		{Name: "gender", Type: field.TypeString, Nullable: true, Size: 20},
		{Name: "date_of_birth", Type: field.TypeTime, Nullable: true},
		{Name: "avatar_key", Type: field.TypeString, Nullable: true},
		{Name: "is_verified", Type: field.TypeBool, Default: false},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "accepted_terms", Type: field.TypeBool, Default: false},
		{Name: "first_login", Type: field.TypeBool, Default: true},
		{Name: "last_login", Type: field.TypeTime, Nullable: true},
		{Name: "failed_login_attempts", Type: field.TypeInt, Default: 0},
		{Name: "locked_until", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "address_id", Type: field.TypeUUID, Nullable: true},
	}
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "users_addresses_address",
				Columns:    []*schema.Column{UsersColumns[20]},
				RefColumns: []*schema.Column{AddressesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "user_user_role", Columns: []*schema.Column{UsersColumns[7]}},
		},
	}

	EmergencyContactsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Size: 150},
		{Name: "phone_number", Type: field.TypeString, Size: 20},
	}
	EmergencyContactsTable = &schema.Table{
		Name:       "emergency_contacts",
		Columns:    EmergencyContactsColumns,
		PrimaryKey: []*schema.Column{EmergencyContactsColumns[0]},
	}

	AllergiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 150},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	AllergiesTable = &schema.Table{
		Name:       "allergies",
		Columns:    AllergiesColumns,
		PrimaryKey: []*schema.Column{AllergiesColumns[0]},
	}

	MedicationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 150},
	}
	MedicationsTable = &schema.Table{
		Name:       "medications",
		Columns:    MedicationsColumns,
		PrimaryKey: []*schema.Column{MedicationsColumns[0]},
	}

	PatientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "blood_group", Type: field.TypeString, Nullable: true, Size: 3},
		{Name: "genotype", Type: field.TypeString, Nullable: true, Size: 2},
		{Name: "nationality", Type: field.TypeString, Size: 100, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeUUID, Unique: true},
		{Name: "emergency_contact_id", Type: field.TypeUUID, Nullable: true},
	}
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "patients_users_patient",
				Columns:    []*schema.Column{PatientsColumns[6]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "patients_emergency_contacts_contact",
				Columns:    []*schema.Column{PatientsColumns[7]},
				RefColumns: []*schema.Column{EmergencyContactsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}

	PatientAllergiesColumns = []*schema.Column{
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "allergy_id", Type: field.TypeUUID},
	}
	PatientAllergiesTable = &schema.Table{
		Name:       "patient_allergies",
		Columns:    PatientAllergiesColumns,
		PrimaryKey: []*schema.Column{PatientAllergiesColumns[0], PatientAllergiesColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "patient_allergies_patient_id",
				Columns:    []*schema.Column{PatientAllergiesColumns[0]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "patient_allergies_allergy_id",
				Columns:    []*schema.Column{PatientAllergiesColumns[1]},
				RefColumns: []*schema.Column{AllergiesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	PatientMedicationsColumns = []*schema.Column{
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "medication_id", Type: field.TypeUUID},
	}
	PatientMedicationsTable = &schema.Table{
		Name:       "patient_medications",
		Columns:    PatientMedicationsColumns,
		PrimaryKey: []*schema.Column{PatientMedicationsColumns[0], PatientMedicationsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "patient_medications_patient_id",
				Columns:    []*schema.Column{PatientMedicationsColumns[0]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "patient_medications_medication_id",
				Columns:    []*schema.Column{PatientMedicationsColumns[1]},
				RefColumns: []*schema.Column{MedicationsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	SpecializationsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 150},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	SpecializationsTable = &schema.Table{
		Name:       "specializations",
		Columns:    SpecializationsColumns,
		PrimaryKey: []*schema.Column{SpecializationsColumns[0]},
	}

	PractitionersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "license_number", Type: field.TypeString, Unique: true, Nullable: true, Size: 100},
		{Name: "category", Type: field.TypeString, Nullable: true, Size: 50},
		{Name: "means_of_identification", Type: field.TypeString, Nullable: true, Size: 50},
		// AES-GCM ciphertext of the identification number.
		{Name: "identification_number", Type: field.TypeString, Nullable: true},
		{Name: "identification_key", Type: field.TypeString, Nullable: true},
		{Name: "certificate_key", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeUUID, Unique: true},
	}
	PractitionersTable = &schema.Table{
		Name:       "practitioners",
		Columns:    PractitionersColumns,
		PrimaryKey: []*schema.Column{PractitionersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "practitioners_users_practitioner",
				Columns:    []*schema.Column{PractitionersColumns[9]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	PractitionerSpecializationsColumns = []*schema.Column{
		{Name: "practitioner_id", Type: field.TypeUUID},
		{Name: "specialization_id", Type: field.TypeUUID},
	}
	PractitionerSpecializationsTable = &schema.Table{
		Name:       "practitioner_specializations",
		Columns:    PractitionerSpecializationsColumns,
		PrimaryKey: []*schema.Column{PractitionerSpecializationsColumns[0], PractitionerSpecializationsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "practitioner_specializations_practitioner_id",
				Columns:    []*schema.Column{PractitionerSpecializationsColumns[0]},
				RefColumns: []*schema.Column{PractitionersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "practitioner_specializations_specialization_id",
				Columns:    []*schema.Column{PractitionerSpecializationsColumns[1]},
				RefColumns: []*schema.Column{SpecializationsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	AuthTokensColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "token_type", Type: field.TypeInt},
		{Name: "token_hash", Type: field.TypeString, Size: 64},
		{Name: "status", Type: field.TypeInt, Default: 0},
		{Name: "expires_at", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeUUID},
	}
	AuthTokensTable = &schema.Table{
		Name:       "auth_tokens",
		Columns:    AuthTokensColumns,
		PrimaryKey: []*schema.Column{AuthTokensColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "auth_tokens_users_tokens",
				Columns:    []*schema.Column{AuthTokensColumns[6]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "authtoken_user_id_token_type_status", Columns: []*schema.Column{AuthTokensColumns[6], AuthTokensColumns[1], AuthTokensColumns[3]}},
			{Name: "authtoken_token_hash", Columns: []*schema.Column{AuthTokensColumns[2]}},
		},
	}

	AssessmentTypesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString, Unique: true, Size: 255},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	AssessmentTypesTable = &schema.Table{
		Name:       "assessment_types",
		Columns:    AssessmentTypesColumns,
		PrimaryKey: []*schema.Column{AssessmentTypesColumns[0]},
	}

	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "assessment_type_id", Type: field.TypeUUID},
	}
	QuestionsTable = &schema.Table{
		Name:       "questions",
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_assessment_types_questions",
				Columns:    []*schema.Column{QuestionsColumns[4]},
				RefColumns: []*schema.Column{AssessmentTypesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	AnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "is_correct", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "question_id", Type: field.TypeUUID},
	}
	AnswersTable = &schema.Table{
		Name:       "answers",
		Columns:    AnswersColumns,
		PrimaryKey: []*schema.Column{AnswersColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "answers_questions_answers",
				Columns:    []*schema.Column{AnswersColumns[5]},
				RefColumns: []*schema.Column{QuestionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	AssessmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "date", Type: field.TypeTime},
		{Name: "final_score", Type: field.TypeFloat64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "practitioner_id", Type: field.TypeUUID},
		{Name: "patient_id", Type: field.TypeUUID},
		{Name: "assessment_type_id", Type: field.TypeUUID},
	}
	AssessmentsTable = &schema.Table{
		Name:       "assessments",
		Columns:    AssessmentsColumns,
		PrimaryKey: []*schema.Column{AssessmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "assessments_users_practitioner",
				Columns:    []*schema.Column{AssessmentsColumns[5]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "assessments_users_patient",
				Columns:    []*schema.Column{AssessmentsColumns[6]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "assessments_assessment_types_assessments",
				Columns:    []*schema.Column{AssessmentsColumns[7]},
				RefColumns: []*schema.Column{AssessmentTypesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "assessment_practitioner_id", Columns: []*schema.Column{AssessmentsColumns[5]}},
			{Name: "assessment_patient_id", Columns: []*schema.Column{AssessmentsColumns[6]}},
		},
	}

	AssessmentResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "assessment_id", Type: field.TypeUUID},
		{Name: "question_id", Type: field.TypeUUID},
		{Name: "answer_id", Type: field.TypeUUID},
	}
	AssessmentResultsTable = &schema.Table{
		Name:       "assessment_results",
		Columns:    AssessmentResultsColumns,
		PrimaryKey: []*schema.Column{AssessmentResultsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "assessment_results_assessments_results",
				Columns:    []*schema.Column{AssessmentResultsColumns[1]},
				RefColumns: []*schema.Column{AssessmentsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "assessment_results_questions_question",
				Columns:    []*schema.Column{AssessmentResultsColumns[2]},
				RefColumns: []*schema.Column{QuestionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "assessment_results_answers_answer",
				Columns:    []*schema.Column{AssessmentResultsColumns[3]},
				RefColumns: []*schema.Column{AnswersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "assessmentresult_assessment_id_question_id", Unique: true, Columns: []*schema.Column{AssessmentResultsColumns[1], AssessmentResultsColumns[2]}},
		},
	}

	// Tables holds all the tables in dependency order.
	Tables = []*schema.Table{
		AddressesTable,
		UsersTable,
		EmergencyContactsTable,
		AllergiesTable,
		MedicationsTable,
		PatientsTable,
		PatientAllergiesTable,
		PatientMedicationsTable,
		SpecializationsTable,
		PractitionersTable,
		PractitionerSpecializationsTable,
		AuthTokensTable,
		AssessmentTypesTable,
		QuestionsTable,
		AnswersTable,
		AssessmentsTable,
		AssessmentResultsTable,
	}
)

func init() {
	UsersTable.ForeignKeys[0].RefTable = AddressesTable
	PatientsTable.ForeignKeys[0].RefTable = UsersTable
	PatientsTable.ForeignKeys[1].RefTable = EmergencyContactsTable
	PatientAllergiesTable.ForeignKeys[0].RefTable = PatientsTable
	PatientAllergiesTable.ForeignKeys[1].RefTable = AllergiesTable
	PatientMedicationsTable.ForeignKeys[0].RefTable = PatientsTable
	PatientMedicationsTable.ForeignKeys[1].RefTable = MedicationsTable
	PractitionersTable.ForeignKeys[0].RefTable = UsersTable
	PractitionerSpecializationsTable.ForeignKeys[0].RefTable = PractitionersTable
	PractitionerSpecializationsTable.ForeignKeys[1].RefTable = SpecializationsTable
	AuthTokensTable.ForeignKeys[0].RefTable = UsersTable
	QuestionsTable.ForeignKeys[0].RefTable = AssessmentTypesTable
	AnswersTable.ForeignKeys[0].RefTable = QuestionsTable
	AssessmentsTable.ForeignKeys[0].RefTable = UsersTable
	AssessmentsTable.ForeignKeys[1].RefTable = UsersTable
	AssessmentsTable.ForeignKeys[2].RefTable = AssessmentTypesTable
	AssessmentResultsTable.ForeignKeys[0].RefTable = AssessmentsTable
	AssessmentResultsTable.ForeignKeys[1].RefTable = QuestionsTable
	AssessmentResultsTable.ForeignKeys[2].RefTable = AnswersTable
}
