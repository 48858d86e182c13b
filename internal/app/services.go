package app

import (
	"go.uber.org/fx"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/event"
	"github.com/Alijeyrad/pms_backend/internal/repo"
	"github.com/Alijeyrad/pms_backend/internal/service/assessment"
	"github.com/Alijeyrad/pms_backend/internal/service/auth"
	"github.com/Alijeyrad/pms_backend/internal/service/patient"
	"github.com/Alijeyrad/pms_backend/internal/service/practitioner"
	"github.com/Alijeyrad/pms_backend/internal/service/user"
	"github.com/Alijeyrad/pms_backend/pkg/authcode"
	pasetotoken "github.com/Alijeyrad/pms_backend/pkg/paseto"
	s3pkg "github.com/Alijeyrad/pms_backend/pkg/s3"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideAuthService,
		ProvideUserService,
		ProvidePractitionerService,
		ProvidePatientService,
		ProvideAssessmentService,
		ProvideAssessmentCatalog,
	),
)

func ProvideAuthService(
	db *repo.Client,
	sessions auth.SessionStore,
	paseto *pasetotoken.Manager,
	codes *authcode.Signer,
	cfg *config.Config,
) (auth.Service, error) {
	return auth.New(db, sessions, paseto, codes, auth.NewLogNotifier(cfg), cfg)
}

func ProvideUserService(db *repo.Client, files s3pkg.Store, cfg *config.Config) user.Service {
	return user.New(db, files, cfg)
}

func ProvidePractitionerService(db *repo.Client, files s3pkg.Store, cfg *config.Config) (practitioner.Service, error) {
	return practitioner.New(db, files, cfg)
}

func ProvidePatientService(db *repo.Client, cfg *config.Config) patient.Service {
	return patient.New(db, cfg)
}

func ProvideAssessmentService(db *repo.Client, events event.Publisher, cfg *config.Config) (assessment.Service, error) {
	return assessment.New(db, events, cfg)
}

func ProvideAssessmentCatalog(db *repo.Client, cfg *config.Config) (assessment.Catalog, error) {
	return assessment.NewCatalog(db, cfg)
}
