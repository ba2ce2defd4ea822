package auth

import "github.com/golang-jwt/jwt/v5"

// OperatorClaims identify the holder of an ops API token. Tokens are issued
// out of band with cmd/token_gen.
type OperatorClaims struct {
	jwt.RegisteredClaims
}

func (c *OperatorClaims) Operator() string { return c.Subject }
func (c *OperatorClaims) TokenID() string  { return c.ID }
