package memory

import (
	"context"

	"github.com/sentinelsso/sentinel/domain"
	"github.com/sentinelsso/sentinel/errors"
)

// SaveAuthCode implements domain.AuthCodeRepository.
func (s *Store) SaveAuthCode(_ context.Context, code *domain.AuthCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authCodes[code.Code]; ok {
		return errors.ErrDuplicateCode
	}
	s.authCodes[code.Code] = cloneCode(code)
	return nil
}

// ConsumeAuthCode implements domain.AuthCodeRepository. Lookup and delete
// happen under one lock, so exactly one concurrent caller gets the record.
func (s *Store) ConsumeAuthCode(_ context.Context, codeValue string) (*domain.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.authCodes[codeValue]
	if !ok {
		return nil, errors.ErrCodeNotFound
	}
	delete(s.authCodes, codeValue)
	return cloneCode(c), nil
}

// DeleteExpiredAuthCodes implements domain.AuthCodeRepository.
func (s *Store) DeleteExpiredAuthCodes(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for value, c := range s.authCodes {
		if c.Expired(now) {
			delete(s.authCodes, value)
		}
	}
	return nil
}
