// Package linktoken signs and verifies participant links. A link binds one
// participant to one study; the interview service trusts nothing else.
package linktoken

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalid is returned for any token that fails to parse or verify.
var ErrInvalid = errors.New("invalid participant link")

const issuer = "elicit"

// Claims identify the study a link grants access to and the participant it
// was issued for.
type Claims struct {
	StudyID       string `json:"sid"`
	ParticipantID string `json:"pid"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 link tokens.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("link secret is required")
	}
	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a link for studyID with a fresh participant id. A zero ttl
// issues a link that never expires.
func (s *Signer) Issue(studyID string, ttl time.Duration) (string, *Claims, error) {
	if studyID == "" {
		return "", nil, fmt.Errorf("study id is required")
	}
	now := s.now()
	claims := &Claims{
		StudyID:       studyID,
		ParticipantID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			ID:       uuid.New().String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("signing link: %w", err)
	}
	return token, claims, nil
}

// Verify parses token and returns its claims, or an error wrapping ErrInvalid.
func (s *Signer) Verify(token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.StudyID == "" || c.ParticipantID == "" {
		return nil, ErrInvalid
	}
	return c, nil
}
