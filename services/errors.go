package services

import "errors"

// Errors shared between services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed         = errors.New("validation failed")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrTournamentNameRequired   = errors.New("tournament name is required")
	ErrTeamNameRequired         = errors.New("team name is required")
	ErrInvalidBracketType       = errors.New("invalid bracket type")
	ErrInvalidDateRange         = errors.New("tournament end date must be after start date")
	ErrInvalidRandomAttempts    = errors.New("max random attempts must be positive")
	ErrNotEnoughTeams           = errors.New("at least two registered teams are required")
	ErrBracketAlreadyCreated    = errors.New("bracket has already been created for this tournament")
	ErrBracketNotCreated        = errors.New("bracket has not been created for this tournament")
	ErrBracketAlreadyStarted    = errors.New("bracket already has recorded results")
	ErrTournamentCompleted      = errors.New("tournament is already completed")
	ErrTournamentCanceled       = errors.New("tournament is canceled")
	ErrRegistrationClosed       = errors.New("team registration is closed for this tournament")
	ErrLogoStorageNotConfigured = errors.New("logo storage is not configured")
	ErrUnsupportedLogoFormat    = errors.New("unsupported logo file format")

	// Conflicts.
	ErrTournamentNameConflict = errors.New("tournament name already exists in this category")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTeamAlreadyRegistered  = errors.New("team is already registered for this tournament")
	ErrSeedingConflict        = errors.New("seeding changed concurrently, retry")

	// Entity lookups.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")
)
