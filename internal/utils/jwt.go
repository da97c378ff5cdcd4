package utils

import (
	"crypto/rsa"
	"errors"
	"sort"

	"github.com/golang-jwt/jwt/v5"
)

// OrgMemberInfo is one organization membership carried in a PropelAuth access token.
type OrgMemberInfo struct {
	OrgID    string `json:"org_id"`
	OrgName  string `json:"org_name"`
	UserRole string `json:"user_role"`
}

// Claims are the PropelAuth access token claims the API cares about.
type Claims struct {
	UserID string                   `json:"user_id"`
	Email  string                   `json:"email"`
	Orgs   map[string]OrgMemberInfo `json:"org_id_to_org_member_info"`
	jwt.RegisteredClaims
}

// FirstOrg returns the membership with the smallest org id, or false if the user has none.
func (c *Claims) FirstOrg() (OrgMemberInfo, bool) {
	if len(c.Orgs) == 0 {
		return OrgMemberInfo{}, false
	}
	ids := make([]string, 0, len(c.Orgs))
	for id := range c.Orgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	org := c.Orgs[ids[0]]
	if org.OrgID == "" {
		org.OrgID = ids[0]
	}
	return org, true
}

// ParseVerifierKey decodes the PEM public key PropelAuth publishes for token verification.
func ParseVerifierKey(pem string) (*rsa.PublicKey, error) {
	return jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
}

// ValidateJWT validates an RS256 access token against the verifier key.
func ValidateJWT(tokenStr string, key *rsa.PublicKey) (*Claims, error) {
	if key == nil {
		return nil, errors.New("token verifier key is not configured")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
