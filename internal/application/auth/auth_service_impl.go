package authservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/adminrepo"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidIssuer = errors.New("invalid issuer")
	ErrNotAdmin      = errors.New("not an admin")
)

type AuthService struct {
	jwt       config.JWTConfig
	admins    config.AdminConfig
	adminRepo adminrepo.IAdminRepository
	clock     clock.Clock
	logger    zerolog.Logger
}

func NewAuthService(jwtCfg config.JWTConfig, admins config.AdminConfig, adminRepo adminrepo.IAdminRepository, clk clock.Clock, logger zerolog.Logger) *AuthService {
	return &AuthService{
		jwt:       jwtCfg,
		admins:    admins,
		adminRepo: adminRepo,
		clock:     clk,
		logger:    logger,
	}
}

// IssueToken signs a console token for a configured admin and makes sure
// the admin has a stored profile.
func (s *AuthService) IssueToken(ctx context.Context, adminID string) (string, error) {
	if s.jwt.Secret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return "", fmt.Errorf("JWT secret not configured")
	}
	if !s.admins.IsAdmin(adminID) {
		return "", domain.RoleError("auth.IssueToken", "%s is not a configured admin", adminID)
	}

	now := s.clock.Now()
	if _, err := s.adminRepo.Get(ctx, adminID); errors.Is(err, domain.ErrNotFound) {
		if err := s.adminRepo.Upsert(ctx, domain.Admin{AdminID: adminID, CreatedAt: now, UpdatedAt: now}); err != nil {
			s.logger.Error().Err(err).Str("admin_id", adminID).Msg("Failed to save admin profile")
			return "", fmt.Errorf("failed to save admin profile: %w", err)
		}
	} else if err != nil {
		s.logger.Error().Err(err).Str("admin_id", adminID).Msg("Failed to load admin profile")
		return "", fmt.Errorf("failed to load admin profile: %w", err)
	}

	claim := &domain.Claim{
		AdminID: adminID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.jwt.TTL).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    s.jwt.Issuer,
			Subject:   adminID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	tokenString, err := token.SignedString([]byte(s.jwt.Secret))
	if err != nil {
		s.logger.Error().Err(err).Str("admin_id", adminID).Msg("Failed to sign token")
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info().Str("admin_id", adminID).Dur("ttl", s.jwt.TTL).Msg("Issued admin token")
	return tokenString, nil
}

func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.Claim, error) {
	if s.jwt.Secret == "" {
		s.logger.Error().Msg("JWT secret not configured")
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &domain.Claim{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwt.Secret), nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("Failed to parse token")
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*domain.Claim)
	if !ok {
		s.logger.Error().Msg("Invalid claims format")
		return nil, fmt.Errorf("invalid claims format")
	}
	if claims.ExpiresAt < s.clock.Now().Unix() {
		return nil, ErrTokenExpired
	}
	if claims.Issuer != s.jwt.Issuer {
		return nil, ErrInvalidIssuer
	}
	// Removing an id from the config revokes its tokens.
	if !s.admins.IsAdmin(claims.AdminID) {
		s.logger.Warn().Str("admin_id", claims.AdminID).Msg("Token for an admin that is no longer configured")
		return nil, ErrNotAdmin
	}

	return claims, nil
}
