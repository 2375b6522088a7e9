package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timetrack-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	ClaimUserID  = "user_id"
	ClaimEmail   = "email"
	ClaimProfile = "profile"
	ClaimType    = "type"

	tokenTypeAccess = "access"
)

var (
	ErrWrongTokenType = errors.New("token is not an access token")
	ErrMissingClaim   = errors.New("token is missing a required claim")
)

type Service interface {
	GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error)
	// Identity converts verified claims into a typed identity, rejecting unknown profiles.
	Identity(claims map[string]interface{}) (user.Identity, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	now                   func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	exp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration: %w", err)
	}
	return &JWTService{
		accessTokenExpiration: exp,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                   time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		ClaimUserID:  userID,
		ClaimEmail:   email,
		ClaimProfile: string(role),
		ClaimType:    tokenTypeAccess,
		"exp":        expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) Identity(claims map[string]interface{}) (user.Identity, error) {
	if t, _ := claims[ClaimType].(string); t != tokenTypeAccess {
		return user.Identity{}, ErrWrongTokenType
	}

	userID, _ := claims[ClaimUserID].(string)
	if userID == "" {
		return user.Identity{}, fmt.Errorf("%w: %s", ErrMissingClaim, ClaimUserID)
	}

	profile, _ := claims[ClaimProfile].(string)
	role, err := user.ParseRole(profile)
	if err != nil {
		return user.Identity{}, err
	}

	return user.Identity{UserID: userID, Role: role}, nil
}
