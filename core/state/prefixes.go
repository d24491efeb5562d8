package state

import "encoding/binary"

var (
	vaultConfigKey      = []byte("vault/config")
	vaultProposalSeqKey = []byte("vault/proposals/seq")
	vaultProposalPrefix = []byte("vault/proposals/")
	vaultPriorityPrefix = []byte("vault/priority/")
	vaultRolePrefix     = []byte("vault/roles/")
	vaultListModeKey    = []byte("vault/lists/mode")
	vaultWhitelistPre   = []byte("vault/lists/white/")
	vaultBlacklistPre   = []byte("vault/lists/black/")
	vaultVelocityKey    = []byte("vault/velocity")
	vaultSpendKey       = []byte("vault/spend")
	vaultCommentSeqKey  = []byte("vault/comments/seq")
	vaultCommentPrefix  = []byte("vault/comments/")
	vaultCommentIdxPre  = []byte("vault/comments/by-proposal/")
)

func appendUint64(prefix []byte, n uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[len(prefix):], n)
	return buf
}

func appendString(prefix []byte, s string) []byte {
	buf := make([]byte, len(prefix)+len(s))
	copy(buf, prefix)
	copy(buf[len(prefix):], s)
	return buf
}

func proposalKey(id uint64) []byte { return appendUint64(vaultProposalPrefix, id) }

func priorityIndexKey(priority uint8) []byte {
	return append(append([]byte(nil), vaultPriorityPrefix...), priority)
}

func roleKey(addr string) []byte { return appendString(vaultRolePrefix, addr) }

func listEntryKey(blacklist bool, addr string) []byte {
	if blacklist {
		return appendString(vaultBlacklistPre, addr)
	}
	return appendString(vaultWhitelistPre, addr)
}

func commentKey(id uint64) []byte { return appendUint64(vaultCommentPrefix, id) }

func commentIndexKey(proposalID uint64) []byte {
	return appendUint64(vaultCommentIdxPre, proposalID)
}
