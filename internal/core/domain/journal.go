package domain

import (
	"encoding/json"
	"time"
)

// Command names recorded in the command journal.
const (
	CmdOpenAccount         = "open_account"
	CmdDeactivateAccount   = "deactivate_account"
	CmdReverseMovement     = "reverse_movement"
	CmdCreateRequest       = "create_request"
	CmdEditRequest         = "edit_request"
	CmdValidateRequest     = "validate_request"
	CmdOpenStatement       = "open_statement"
	CmdAddStatementMembers = "add_statement_members"
	CmdRecomputeStatement  = "recompute_statement_totals"
	CmdSealStatement       = "seal_statement_expenses"
	CmdIssueCheque         = "issue_cheque"
	CmdSetChequeStatus     = "set_cheque_status"
	CmdRecordPayment       = "record_payment"
	CmdReversePayment      = "reverse_payment"
	CmdRecordReceipt       = "record_receipt"
	CmdValidateReceipt     = "validate_receipt"
	CmdUnvalidateReceipt   = "unvalidate_receipt"
	CmdDeleteReceipt       = "delete_receipt"
	CmdComputeBalances     = "compute_balances"
	CmdClosePeriod         = "close_period"
)

// JournalEntry records one committed mutating command.
type JournalEntry struct {
	EntryID    string          `json:"entryID"` // UUID
	Seq        int64           `json:"seq"`     // Assigned by the store in append order
	Command    string          `json:"command"`
	Actor      string          `json:"actor"`
	Subject    string          `json:"subject"` // Reference of the entity the command acted on
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recordedAt"`
}
