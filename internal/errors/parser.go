package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts database and infrastructure errors into user
// facing codes. Sensitive detail stays out of the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// PostgreSQL constraint violations

	// unique_violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// foreign_key_violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr, context)
	}

	// not_null_violation (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return parseNotNullError(errStr)
	}

	// check_violation (23514)
	if strings.Contains(errStrLower, "check constraint") {
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: "A value is outside its allowed range",
		}
	}

	// Connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An external service is unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "serial_number") || strings.Contains(errLower, "idx_masterpieces_serial_number") {
		return ErrorInfo{
			Code:    MasterpieceSerialExists,
			Message: "A masterpiece with this serial number is already registered",
		}
	}
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email address is already in use",
		}
	}
	if strings.Contains(errLower, "certificate_number") || strings.Contains(errLower, "verification_token") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "A certificate with this reference already exists",
		}
	}
	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This record already exists. Please try again",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Linked records exist, so this record cannot be deleted",
		}
	}

	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "buyer_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "The referenced user does not exist",
		}
	}
	if strings.Contains(errLower, "masterpiece_id") || strings.Contains(errLower, "fk_masterpieces") {
		return ErrorInfo{
			Code:    MasterpieceNotFound,
			Message: "The referenced masterpiece does not exist",
		}
	}
	if strings.Contains(errLower, "auction_id") || strings.Contains(errLower, "fk_auctions") {
		return ErrorInfo{
			Code:    AuctionNotFound,
			Message: "The referenced auction does not exist",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "A referenced record could not be found",
	}
}

func parseNotNullError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ValidationRequired, Message: "Email is required"}
	}
	if strings.Contains(errLower, "password") {
		return ErrorInfo{Code: ValidationRequired, Message: "Password is required"}
	}
	if strings.Contains(errLower, "title") {
		return ErrorInfo{Code: ValidationRequired, Message: "Title is required"}
	}
	if strings.Contains(errLower, "serial_number") {
		return ErrorInfo{Code: ValidationRequired, Message: "Serial number is required"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "A required field is missing",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "masterpiece"):
		return "Masterpiece not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	case strings.Contains(contextLower, "workflow"):
		return "Purchase workflow not found"
	case strings.Contains(contextLower, "auction"):
		return "Auction not found"
	case strings.Contains(contextLower, "escrow"):
		return "Escrow transaction not found"
	case strings.Contains(contextLower, "contract"):
		return "Contract not found"
	case strings.Contains(contextLower, "certificate"):
		return "Certificate not found"
	case strings.Contains(contextLower, "resale"):
		return "Resale listing not found"
	case strings.Contains(contextLower, "notification"):
		return "Notification not found"
	}

	return "The requested record could not be found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "The record could not be created. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "The record could not be updated. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "The record could not be deleted. Please try again later"
	}

	return "An internal error occurred. Please try again later"
}
