package db

// Credential is the single persisted API credential record. ExpiresAt is
// stored as an RFC3339 string.
type Credential struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    string `json:"expiresAt,omitempty"`
}
