package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes surfaced to the HTTP layer. "Already unlocked" is
// deliberately absent: it is a non-error outcome callers branch on.
const (
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeRewardNotFound    = "REWARD_NOT_FOUND"
	CodeRewardNotActive   = "REWARD_NOT_ACTIVE"
	CodeMalformedToken    = "MALFORMED_TOKEN"
	CodeAlreadyRevoked    = "ALREADY_REVOKED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodePartialPayout     = "PARTIAL_PAYOUT"
	CodeValidation        = "VALIDATION"
	CodeInternal          = "INTERNAL"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func InvalidAmount(amount int) *Error {
	return New(http.StatusBadRequest, CodeInvalidAmount, fmt.Errorf("amount must be positive, got %d", amount))
}

func UserNotFound(userID string) *Error {
	return New(http.StatusNotFound, CodeUserNotFound, fmt.Errorf("no record for user %s", userID))
}

func InsufficientFunds(balance, cost int) *Error {
	return New(http.StatusConflict, CodeInsufficientFunds, fmt.Errorf("balance %d cannot cover %d", balance, cost))
}

func RewardNotFound(rewardID string) *Error {
	return New(http.StatusNotFound, CodeRewardNotFound, fmt.Errorf("reward %s not found", rewardID))
}

func RewardNotActive(rewardID string) *Error {
	return New(http.StatusConflict, CodeRewardNotActive, fmt.Errorf("reward %s is not active", rewardID))
}

func MalformedToken(err error) *Error {
	return New(http.StatusBadRequest, CodeMalformedToken, fmt.Errorf("malformed token: %w", err))
}

func AlreadyRevoked() *Error {
	return New(http.StatusConflict, CodeAlreadyRevoked, errors.New("token already invalidated"))
}

func Unauthorized(err error) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, err)
}

// PartialPayout marks the unlock-committed-payout-failed state. The unlock is
// never rolled back; reconciliation happens out of band.
func PartialPayout(rewardID string, err error) *Error {
	return New(http.StatusInternalServerError, CodePartialPayout, fmt.Errorf("reward %s unlocked but payout incomplete: %w", rewardID, err))
}

// CodeOf returns the stable code of err if it is (or wraps) an *Error.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// StatusOf maps err to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
