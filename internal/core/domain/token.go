package domain

// TokenPair is the credential pair issued by login and refresh.
// A valid session holds both tokens or neither.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// Valid reports whether both tokens are present.
func (p TokenPair) Valid() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}
