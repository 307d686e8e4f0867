package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/metrics"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

// ErrUnknownAccount means a valid session names an account that no longer
// exists.
var ErrUnknownAccount = errors.New("session account not found")

// Claims carries the session role. The subject is the patron or librarian id.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	db            *bun.DB
	clock         clock.Clock
	metrics       *metrics.CirculationMetrics
	jwtSecret     []byte
	sessionMaxAge time.Duration
}

type ServiceOptions struct {
	JWTSecret     string
	SessionMaxAge time.Duration
	Metrics       *metrics.CirculationMetrics
}

func NewService(db *bun.DB, clk clock.Clock, opts ServiceOptions) *Service {
	return &Service{
		db:            db,
		clock:         clk,
		metrics:       opts.Metrics,
		jwtSecret:     []byte(opts.JWTSecret),
		sessionMaxAge: opts.SessionMaxAge,
	}
}

// AuthenticatePatron checks a card number and PIN. Expired and suspended
// patrons can still log in.
func (s *Service) AuthenticatePatron(ctx context.Context, cardNumber, pin string) (*Identity, error) {
	patron := &models.Patron{}
	err := s.db.NewSelect().
		Model(patron).
		Where("p.card_number = ?", cardNumber).
		Scan(ctx)
	if err != nil {
		s.metrics.Login(string(RolePatron), false)
		if database.IsNoRows(err) {
			return nil, errcodes.Unauthorized("Library card not found.")
		}
		return nil, errors.WithStack(err)
	}

	if !CheckSecret(patron.PinHash, pin) {
		s.metrics.Login(string(RolePatron), false)
		return nil, errcodes.Unauthorized("Invalid PIN.")
	}

	s.metrics.Login(string(RolePatron), true)
	return patronIdentity(patron), nil
}

func (s *Service) AuthenticateLibrarian(ctx context.Context, username, password string) (*Identity, error) {
	librarian := &models.Librarian{}
	err := s.db.NewSelect().
		Model(librarian).
		Where("l.username = ?", username).
		Scan(ctx)
	if err != nil {
		s.metrics.Login(string(RoleLibrarian), false)
		if database.IsNoRows(err) {
			return nil, errcodes.Unauthorized("Username not found.")
		}
		return nil, errors.WithStack(err)
	}

	if !CheckSecret(librarian.PasswordHash, password) {
		s.metrics.Login(string(RoleLibrarian), false)
		return nil, errcodes.Unauthorized("Invalid password.")
	}

	s.metrics.Login(string(RoleLibrarian), true)
	return librarianIdentity(librarian), nil
}

func patronIdentity(p *models.Patron) *Identity {
	return &Identity{Role: RolePatron, ID: p.ID, Name: p.Name, CardNumber: p.CardNumber}
}

func librarianIdentity(l *models.Librarian) *Identity {
	return &Identity{Role: RoleLibrarian, ID: l.ID, Name: l.Username, Username: l.Username}
}

// GenerateToken signs a session token for the identity.
func (s *Service) GenerateToken(ident *Identity) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		Role: ident.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(ident.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionMaxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry of a session token.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Role != RolePatron && claims.Role != RoleLibrarian {
		return nil, errors.Errorf("unknown role %q", claims.Role)
	}
	return claims, nil
}

// ResolveIdentity loads the account a token points at, so sessions for
// deleted accounts stop working.
func (s *Service) ResolveIdentity(ctx context.Context, claims *Claims) (*Identity, error) {
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownAccount, "bad subject %q", claims.Subject)
	}

	switch claims.Role {
	case RolePatron:
		patron := &models.Patron{}
		if err := s.db.NewSelect().Model(patron).Where("p.id = ?", id).Scan(ctx); err != nil {
			return nil, accountError(err)
		}
		return patronIdentity(patron), nil
	case RoleLibrarian:
		librarian := &models.Librarian{}
		if err := s.db.NewSelect().Model(librarian).Where("l.id = ?", id).Scan(ctx); err != nil {
			return nil, accountError(err)
		}
		return librarianIdentity(librarian), nil
	default:
		return nil, errors.Wrapf(ErrUnknownAccount, "unknown role %q", claims.Role)
	}
}

func accountError(err error) error {
	if database.IsNoRows(err) {
		return errors.WithStack(ErrUnknownAccount)
	}
	return errors.WithStack(err)
}

// SessionMaxAge is how long issued session cookies last.
func (s *Service) SessionMaxAge() time.Duration {
	return s.sessionMaxAge
}
