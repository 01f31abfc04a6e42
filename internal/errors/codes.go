package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// Clients map these codes to localized messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token revoked
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // email taken

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // no access
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"  // no permission for this action
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // role missing from context
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // admin only
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"     // owner only
	AuthzVipOnly      = "AUTHZ_VIP_ONLY"       // vip clientele only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Masterpieces (MASTERPIECE_) ====================
	MasterpieceNotFound      = "MASTERPIECE_NOT_FOUND"       // piece missing
	MasterpieceNotAvailable  = "MASTERPIECE_NOT_AVAILABLE"   // not open for purchase
	MasterpieceSerialExists  = "MASTERPIECE_SERIAL_EXISTS"   // serial number taken
	MasterpieceAlreadyOwned  = "MASTERPIECE_ALREADY_OWNED"   // already has an owner
	MasterpieceNotOwned      = "MASTERPIECE_NOT_OWNED"       // caller is not the owner
	MasterpieceReserved      = "MASTERPIECE_RESERVED"        // reserved by another collector

	// ==================== Purchase workflow (WORKFLOW_) ====================
	WorkflowNotFound       = "WORKFLOW_NOT_FOUND"        // workflow missing
	WorkflowInvalidStep    = "WORKFLOW_INVALID_STEP"     // unknown step name
	WorkflowStepOutOfOrder = "WORKFLOW_STEP_OUT_OF_ORDER" // step not valid from current state
	WorkflowNotApproved    = "WORKFLOW_NOT_APPROVED"     // purchase request not approved yet
	WorkflowAlreadyExists  = "WORKFLOW_ALREADY_EXISTS"   // active workflow exists for piece
	WorkflowClosed         = "WORKFLOW_CLOSED"           // already completed or cancelled

	// ==================== Escrow (ESCROW_) ====================
	EscrowNotFound       = "ESCROW_NOT_FOUND"
	EscrowNotHeld        = "ESCROW_NOT_HELD"        // funds not in held state
	EscrowWindowOpen     = "ESCROW_WINDOW_OPEN"     // dispute window still running
	EscrowAlreadyClosed  = "ESCROW_ALREADY_CLOSED"  // already released or refunded
	EscrowDisputed       = "ESCROW_DISPUTED"        // under dispute, admin action required

	// ==================== Contracts (CONTRACT_) ====================
	ContractNotFound      = "CONTRACT_NOT_FOUND"
	ContractAlreadySigned = "CONTRACT_ALREADY_SIGNED"
	ContractNotSigned     = "CONTRACT_NOT_SIGNED" // signature required before proceeding

	// ==================== Auctions (AUCTION_) ====================
	AuctionNotFound    = "AUCTION_NOT_FOUND"
	AuctionNotActive   = "AUCTION_NOT_ACTIVE"   // not open for bidding
	AuctionEnded       = "AUCTION_ENDED"        // past end time
	AuctionBidTooLow   = "AUCTION_BID_TOO_LOW"  // bid must exceed current bid
	AuctionSelfOutbid  = "AUCTION_SELF_OUTBID"  // already highest bidder

	// ==================== Resale (RESALE_) ====================
	ResaleNotFound      = "RESALE_NOT_FOUND"
	ResaleNotSeller     = "RESALE_NOT_SELLER"      // only the owner can list
	ResaleNotApproved   = "RESALE_NOT_APPROVED"    // listing pending review
	ResaleAlreadyListed = "RESALE_ALREADY_LISTED"  // active listing exists
	ResaleClosed        = "RESALE_CLOSED"          // negotiation concluded

	// ==================== Fractional ownership (FRACTION_) ====================
	FractionNotFound        = "FRACTION_NOT_FOUND"
	FractionInsufficient    = "FRACTION_INSUFFICIENT"     // not enough shares held
	FractionOversubscribed  = "FRACTION_OVERSUBSCRIBED"   // shares exceed 100 percent

	// ==================== Certificates (CERTIFICATE_) ====================
	CertificateNotFound     = "CERTIFICATE_NOT_FOUND"
	CertificateTokenInvalid = "CERTIFICATE_TOKEN_INVALID" // verification token unknown

	// ==================== Notifications (NOTIFICATION_) ====================
	NotificationNotFound = "NOTIFICATION_NOT_FOUND"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
