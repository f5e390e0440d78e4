package constants

// Centralized constants for headers, env keys, routes and messages.
const (
	// Environment variable keys
	EnvConfigPath = "MTCG_CONFIG"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"

	CacheControlHeader  = "Cache-Control"
	CacheControlNoCache = "no-cache, no-store, must-revalidate"

	// Authorization prefix
	BearerPrefix = "Bearer "

	// Gin context key holding the authenticated username
	ContextKeyUsername = "username"

	// Token issuer written into session tokens
	TokenIssuer = "mtcg"
)

// Routes used by the backend router
const (
	RouteAPIPrefix        = "/api"
	RouteUsers            = "/users"
	RouteSessions         = "/sessions"
	RouteCards            = "/cards"
	RouteDecks            = "/decks"
	RoutePackages         = "/packages"
	RoutePowerUps         = "/powerups"
	RoutePowerUpsClaim    = "/powerups/claim"
	RouteBattles          = "/battles"
	RouteBattleByID       = "/battles/:battleID"
	RouteBattleRun        = "/battles/:battleID/run"
	RouteBattleRound      = "/battles/:battleID/round"
	RouteBattleUsePowerUp = "/battles/:battleID/usepowerup"
	RouteScoreboard       = "/scoreboard"
	RouteStats            = "/stats"
	RouteVersion          = "/version"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyToken   = "token"
	JSONKeyBattle  = "battle"
)

// Common error messages used across API handlers and services
const (
	ErrInvalidRequest      = "Invalid request"
	ErrInvalidCredentials  = "Invalid username or password"
	ErrUsernameTaken       = "Username already exists"
	ErrUsernameInvalid     = "username must be 1-64 characters without spaces"
	ErrPasswordRequired    = "password is required"
	ErrBattleNotFound      = "Battle not found"
	ErrFailedFetchCards    = "Failed to fetch cards"
	ErrFailedFetchStats    = "Failed to fetch stats"
	ErrFailedFetchBoard    = "Failed to fetch scoreboard"
	ErrFailedCreateSession = "Failed to create session"
	ErrInternal            = "Internal error"

	ErrDeckSize        = "a deck must contain exactly 4 distinct cards"
	ErrDeckNotOwned    = "all deck cards must be owned by the caller"
	ErrDeckIncomplete  = "player must have a complete 4-card deck"
	ErrDeckMismatch    = "submitted cards do not match the active deck"
	ErrOpponentDeck    = "opponent must have a complete 4-card deck"
	ErrSelfBattle      = "a player cannot battle themselves"
	ErrNoTemplates     = "no card templates configured"
	ErrBattleCompleted = "battle is already completed"
	ErrBattleChanged   = "battle was changed by another request, reload it"
	ErrNotBattlePlayer = "only the battle's player can do this"
	ErrPowerUpActive   = "a power-up is already active in this battle"
	ErrNoPowerUp       = "no unused power-up available"
	ErrPowerUpClaimed  = "an unused power-up is already claimed"
	ErrNotEnoughCoins  = "not enough coins to buy a package"

	ErrAuthRequired   = "Authentication required"
	ErrInvalidSession = "Invalid session"
)

// Logging field names
const (
	LogFieldBattleID = "battle_id"
	LogFieldUsername = "username"
	LogFieldOpponent = "opponent"
	LogFieldWinner   = "winner"
	LogFieldRound    = "round"
	LogFieldCardID   = "card_id"
	LogFieldSeed     = "seed"
	LogFieldSource   = "source"
	LogFieldAddr     = "addr"
	LogFieldKey      = "key"
)
