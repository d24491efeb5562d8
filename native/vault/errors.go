package vault

import "errors"

// Sentinel errors returned by the engine. Every mutating operation fails fast
// and leaves state untouched when one of these is returned; callers match with
// errors.Is.
var (
	// ErrNotInitialized is returned when an operation runs before Initialize.
	ErrNotInitialized = errors.New("vault: not initialized")
	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("vault: already initialized")

	// ErrInsufficientRole rejects callers below the tier an operation needs.
	ErrInsufficientRole = errors.New("vault: insufficient role")
	// ErrUnauthorized rejects callers that hold a sufficient role tier but
	// are not permitted to touch the specific resource (priority changes and
	// attachments are proposer-or-admin only).
	ErrUnauthorized = errors.New("vault: unauthorized")
	// ErrNotSigner rejects approval or abstention from an address outside
	// the authorized signer set.
	ErrNotSigner = errors.New("vault: caller is not a signer")
	// ErrNotCommentAuthor rejects edits from anyone but the original author.
	ErrNotCommentAuthor = errors.New("vault: not comment author")

	// ErrRecipientNotWhitelisted rejects creation under whitelist mode when
	// the recipient is absent from the whitelist.
	ErrRecipientNotWhitelisted = errors.New("vault: recipient not whitelisted")
	// ErrRecipientBlacklisted rejects creation under blacklist mode when the
	// recipient appears on the blacklist.
	ErrRecipientBlacklisted = errors.New("vault: recipient blacklisted")
	// ErrAddressAlreadyOnList rejects duplicate whitelist or blacklist adds.
	ErrAddressAlreadyOnList = errors.New("vault: address already on list")
	// ErrVelocityLimitExceeded rejects creation once the trailing-window
	// proposal count would exceed the configured limit.
	ErrVelocityLimitExceeded = errors.New("vault: velocity limit exceeded")
	// ErrSpendingLimitExceeded rejects creation of transfers above the
	// per-transfer spending limit.
	ErrSpendingLimitExceeded = errors.New("vault: spending limit exceeded")
	// ErrInvalidAmount rejects non-positive transfer amounts.
	ErrInvalidAmount = errors.New("vault: amount must be positive")

	// ErrProposalNotFound is returned for unknown proposal identifiers.
	ErrProposalNotFound = errors.New("vault: proposal not found")
	// ErrCommentNotFound is returned for unknown comment identifiers.
	ErrCommentNotFound = errors.New("vault: comment not found")
	// ErrAttachmentNotFound is returned when removing an attachment index
	// that does not exist.
	ErrAttachmentNotFound = errors.New("vault: attachment not found")
	// ErrProposalNotPending rejects votes on proposals past Pending.
	ErrProposalNotPending = errors.New("vault: proposal not pending")
	// ErrProposalNotApproved rejects execution of proposals that have not
	// reached Approved.
	ErrProposalNotApproved = errors.New("vault: proposal not approved")
	// ErrAlreadyApproved covers every duplicate-vote shape: approve after
	// approve, abstain after approve, approve after abstain, and double
	// abstain all collapse into this single kind.
	ErrAlreadyApproved = errors.New("vault: caller already voted")
	// ErrTimelockNotExpired rejects execution before the unlock point.
	ErrTimelockNotExpired = errors.New("vault: timelock not expired")
	// ErrConditionsNotMet rejects execution while the proposal's conditions
	// evaluate false under its logic selector.
	ErrConditionsNotMet = errors.New("vault: conditions not met")

	// ErrInvalidConfig rejects impossible policies at initialisation or
	// reconfiguration time.
	ErrInvalidConfig = errors.New("vault: invalid config")
)
