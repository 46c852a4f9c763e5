package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/medicalassistance/identity-core/internal/core/domain"
	"github.com/medicalassistance/identity-core/internal/core/ports"
)

const defaultStatusTTL = 5 * time.Minute

// RecordStatusService resolves the patient record status shown after login.
// Lookups never fail the caller: problems are logged and reported as
// domain.RecordStatusUnknown.
type RecordStatusService struct {
	records ports.PatientRecordRepository
	cache   ports.StatusCache
	ttl     time.Duration
	log     zerolog.Logger
}

// NewRecordStatusService wires a resolver. cache may be nil.
func NewRecordStatusService(records ports.PatientRecordRepository, cache ports.StatusCache, ttl time.Duration, log zerolog.Logger) *RecordStatusService {
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}
	return &RecordStatusService{records: records, cache: cache, ttl: ttl, log: log}
}

func (s *RecordStatusService) StatusFor(ctx context.Context, user *domain.User) domain.RecordStatus {
	if user == nil || !user.HasAuthority(domain.AuthorityPatient) {
		return domain.RecordStatusNotApplicable
	}

	if s.cache != nil {
		status, hit, err := s.cache.Get(ctx, user.EmailAddress)
		if err != nil {
			s.log.Warn().Err(err).Str("email", user.EmailAddress).Msg("status cache read failed")
		} else if hit {
			return status
		}
	}

	status := domain.RecordStatusNoRecord
	record, err := s.records.LatestByPatient(ctx, user.EmailAddress)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
	case err != nil:
		s.log.Error().Err(err).Str("email", user.EmailAddress).Msg("patient record lookup failed")
		return domain.RecordStatusUnknown
	default:
		status = record.Status
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user.EmailAddress, status, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("email", user.EmailAddress).Msg("status cache write failed")
		}
	}
	return status
}
