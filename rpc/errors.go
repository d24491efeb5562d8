package rpc

import (
	"errors"
	"net/http"

	"vaultdao/native/vault"
)

// codeForError maps engine failures onto RPC error codes. Policy rejections
// share a code so clients can branch on "the rules said no" without matching
// message strings; lookups that found nothing and authorisation failures get
// their own.
func codeForError(err error) (int, int) {
	switch {
	case errors.Is(err, vault.ErrProposalNotFound),
		errors.Is(err, vault.ErrCommentNotFound),
		errors.Is(err, vault.ErrAttachmentNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, vault.ErrInsufficientRole),
		errors.Is(err, vault.ErrUnauthorized),
		errors.Is(err, vault.ErrNotSigner),
		errors.Is(err, vault.ErrNotCommentAuthor):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, vault.ErrRecipientNotWhitelisted),
		errors.Is(err, vault.ErrRecipientBlacklisted),
		errors.Is(err, vault.ErrAddressAlreadyOnList),
		errors.Is(err, vault.ErrVelocityLimitExceeded),
		errors.Is(err, vault.ErrSpendingLimitExceeded),
		errors.Is(err, vault.ErrProposalNotPending),
		errors.Is(err, vault.ErrProposalNotApproved),
		errors.Is(err, vault.ErrAlreadyApproved),
		errors.Is(err, vault.ErrTimelockNotExpired),
		errors.Is(err, vault.ErrConditionsNotMet),
		errors.Is(err, vault.ErrAlreadyInitialized),
		errors.Is(err, vault.ErrNotInitialized):
		return http.StatusConflict, codePolicy
	case errors.Is(err, vault.ErrInvalidAmount),
		errors.Is(err, vault.ErrInvalidConfig):
		return http.StatusBadRequest, codeInvalidParams
	default:
		return http.StatusInternalServerError, codeServerError
	}
}

func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	status, code := codeForError(err)
	writeError(w, status, id, code, err.Error(), nil)
}
