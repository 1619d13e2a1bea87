package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors. User-facing messages are French; the code is the
// stable machine contract.
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Ressource introuvable")
	ErrAlreadyExists      = NewDomainError("ALREADY_EXISTS", "La ressource existe déjà")
	ErrInvalidInput       = NewDomainError("INVALID_INPUT", "Données invalides")
	ErrConcurrency        = NewDomainError("CONCURRENCY_CONFLICT", "La ressource a été modifiée par un autre processus")
	ErrAuthRequired       = NewDomainError("AUTH_REQUIRED", "Authentification requise")
	ErrForbidden          = NewDomainError("FORBIDDEN", "Accès refusé")
	ErrOwnershipViolation = NewDomainError("OWNERSHIP_VIOLATION", "Vous n'êtes pas autorisé à accéder à cette ressource")
	ErrGuestEmailMismatch = NewDomainError("GUEST_EMAIL_MISMATCH", "L'adresse e-mail ne correspond pas")
	ErrRateLimited        = NewDomainError("RATE_LIMITED", "Trop de requêtes, veuillez réessayer plus tard")
	ErrTenantNotFound     = NewDomainError("TENANT_NOT_FOUND", "Boutique introuvable")
	ErrInvalidState       = NewDomainError("INVALID_STATE", "Opération non autorisée dans l'état actuel")
	ErrInsufficientStock  = NewDomainError("INSUFFICIENT_STOCK", "Stock insuffisant")
	ErrLocationLocked     = NewDomainError("LOCATION_LOCKED", "Emplacement verrouillé")
	ErrProductNotFound    = NewDomainError("PRODUCT_NOT_FOUND", "Produit introuvable")
	ErrProviderDown       = NewDomainError("PROVIDER_UNAVAILABLE", "Service temporairement indisponible")
	ErrServer             = NewDomainError("SERVER_ERROR", "Une erreur interne est survenue")
)
