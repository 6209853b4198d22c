package tokens

import "github.com/golang-jwt/jwt/v5"

// AccessClaims authorizes a request without a store lookup. Username rides
// along so handlers can log who acted without loading the record.
type AccessClaims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the subject and a JTI; everything else about the
// session lives on the user row.
type RefreshClaims struct {
	jwt.RegisteredClaims
}
