package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding the caller's *Claims, when the caller used a user token.
const ClaimsKey = "claims"

const fallbackOrgName = "Xpectrum_AI"

// ClaimsFrom returns the authenticated user's claims, if any.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

// ResolveOrganization picks the organization a request acts on: the body value,
// then the X-Organization-Id / X-Organization-Name headers, then the caller's first
// organization, then defaultOrg.
func ResolveOrganization(c *gin.Context, bodyOrgID, defaultOrg string) string {
	if s := strings.TrimSpace(bodyOrgID); s != "" {
		return s
	}
	if s := c.GetHeader("X-Organization-Id"); s != "" {
		return s
	}
	if s := c.GetHeader("X-Organization-Name"); s != "" {
		return s
	}
	if claims, ok := ClaimsFrom(c); ok {
		if org, ok := claims.FirstOrg(); ok {
			if org.OrgName != "" {
				return org.OrgName
			}
			return org.OrgID
		}
	}
	if defaultOrg != "" {
		return defaultOrg
	}
	return fallbackOrgName
}
