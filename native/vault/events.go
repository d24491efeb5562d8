package vault

import (
	"strconv"

	"vaultdao/core/events"
)

const (
	// EventTypeProposed is emitted when a new transfer proposal is admitted.
	EventTypeProposed = "vault.proposed"
	// EventTypeApproved is emitted for every recorded approval.
	EventTypeApproved = "vault.approved"
	// EventTypeAbstained is emitted for every recorded abstention.
	EventTypeAbstained = "vault.abstained"
	// EventTypeThresholdMet is emitted when a proposal transitions to
	// Approved and its unlock point is fixed.
	EventTypeThresholdMet = "vault.threshold_met"
	// EventTypeExecuted is emitted after the external transfer succeeds.
	EventTypeExecuted = "vault.executed"
	// EventTypePriorityChanged is emitted when a proposal is reclassified.
	EventTypePriorityChanged = "vault.priority_changed"
	// EventTypeRoleSet is emitted when an Admin assigns a role.
	EventTypeRoleSet = "vault.role_set"
	// EventTypeListModeSet is emitted when the list registry mode changes.
	EventTypeListModeSet = "vault.list_mode_set"
)

func newProposedEvent(p *Proposal) *events.Record {
	attrs := make(map[string]string)
	if p == nil {
		return &events.Record{Type: EventTypeProposed, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(p.ID, 10)
	attrs["proposer"] = string(p.Proposer)
	attrs["recipient"] = string(p.Recipient)
	attrs["token"] = p.Token
	if p.Amount != nil {
		attrs["amount"] = p.Amount.String()
	}
	attrs["priority"] = p.Priority.String()
	attrs["createdAt"] = strconv.FormatUint(p.CreatedAt, 10)
	return &events.Record{Type: EventTypeProposed, Attributes: attrs}
}

func newVoteEvent(eventType string, p *Proposal, voter Address) *events.Record {
	attrs := make(map[string]string)
	if p != nil {
		attrs["id"] = strconv.FormatUint(p.ID, 10)
		attrs["approvals"] = strconv.Itoa(len(p.Approvals))
		attrs["abstentions"] = strconv.Itoa(len(p.Abstentions))
		attrs["status"] = p.Status.String()
	}
	attrs["voter"] = string(voter)
	return &events.Record{Type: eventType, Attributes: attrs}
}

func newThresholdMetEvent(p *Proposal, required uint32) *events.Record {
	attrs := make(map[string]string)
	if p != nil {
		attrs["id"] = strconv.FormatUint(p.ID, 10)
		attrs["approvals"] = strconv.Itoa(len(p.Approvals))
		attrs["unlockLedger"] = strconv.FormatUint(p.UnlockLedger, 10)
	}
	attrs["required"] = strconv.FormatUint(uint64(required), 10)
	return &events.Record{Type: EventTypeThresholdMet, Attributes: attrs}
}

func newExecutedEvent(p *Proposal, caller Address) *events.Record {
	attrs := make(map[string]string)
	if p != nil {
		attrs["id"] = strconv.FormatUint(p.ID, 10)
		attrs["recipient"] = string(p.Recipient)
		attrs["token"] = p.Token
		if p.Amount != nil {
			attrs["amount"] = p.Amount.String()
		}
	}
	attrs["caller"] = string(caller)
	return &events.Record{Type: EventTypeExecuted, Attributes: attrs}
}

func newPriorityChangedEvent(p *Proposal, previous Priority) *events.Record {
	attrs := make(map[string]string)
	if p != nil {
		attrs["id"] = strconv.FormatUint(p.ID, 10)
		attrs["priority"] = p.Priority.String()
	}
	attrs["previous"] = previous.String()
	return &events.Record{Type: EventTypePriorityChanged, Attributes: attrs}
}

func newRoleSetEvent(target Address, role Role) *events.Record {
	return &events.Record{Type: EventTypeRoleSet, Attributes: map[string]string{
		"target": string(target),
		"role":   role.String(),
	}}
}

func newListModeSetEvent(mode ListMode) *events.Record {
	return &events.Record{Type: EventTypeListModeSet, Attributes: map[string]string{
		"mode": mode.String(),
	}}
}
