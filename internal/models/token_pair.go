package models

// TokenType — тип токена в ответе клиенту.
const TokenType = "Bearer"

// TokenPair — пара токенов, выдаваемая при входе и ротации.
// Имена JSON-полей — стабильный контракт с мобильным клиентом.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresIn — срок жизни access-токена в секундах.
	ExpiresIn int    `json:"expires_in"`
	TokenType string `json:"token_type"`
}
