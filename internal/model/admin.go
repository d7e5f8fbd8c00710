package model

// AdminCredential is the single admin identity read from the credential file.
// Password holds a salted one-way hash, never plaintext.
type AdminCredential struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
}
