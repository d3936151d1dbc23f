// Package lumera declares the descriptor tables of the Lumera chain messages
// the codec is used with: actions, claim parameters and supernodes.
//
// Files returns fresh descriptors on every call; register them with a
// registry.Registry before use.
package lumera

import "github.com/lumera-tools/protolite/schema"

// Fully qualified message and enum names.
const (
	ActionType           = "lumera.action.ActionType"
	ActionState          = "lumera.action.ActionState"
	Action               = "lumera.action.Action"
	ClaimParams          = "lumera.claim.Params"
	SuperNodeState       = "lumera.supernode.SuperNodeState"
	SuperNodeStateRecord = "lumera.supernode.SuperNodeStateRecord"
	IPAddressHistory     = "lumera.supernode.IPAddressHistory"
	Evidence             = "lumera.supernode.Evidence"
	MetricsAggregate     = "lumera.supernode.MetricsAggregate"
	MetricsEntry         = "lumera.supernode.MetricsAggregate.MetricsEntry"
	SuperNode            = "lumera.supernode.SuperNode"
)

// ActionType ordinals.
const (
	ActionTypeUnspecified int32 = iota
	ActionTypeSense
	ActionTypeCascade
)

// ActionState ordinals.
const (
	ActionStateUnspecified int32 = iota
	ActionStatePending
	ActionStateProcessing
	ActionStateDone
	ActionStateApproved
	ActionStateRejected
	ActionStateFailed
	ActionStateExpired
)

// SuperNodeState ordinals.
const (
	SuperNodeStateUnspecified int32 = iota
	SuperNodeStateActive
	SuperNodeStateDisabled
	SuperNodeStateStopped
	SuperNodeStatePenalized
)

// Files returns the action, claim and supernode schema files.
func Files() []*schema.File {
	return []*schema.File{actionFile(), claimFile(), supernodeFile()}
}

func enum(name string, values ...string) *schema.Enum {
	e := &schema.Enum{Name: name}
	for i, v := range values {
		e.Values = append(e.Values, &schema.EnumValue{Name: v, Number: int32(i)})
	}
	return e
}

func actionFile() *schema.File {
	return &schema.File{
		Name:    "lumera/action/action.proto",
		Package: "lumera.action",
		Syntax:  "proto3",
		Enums: []*schema.Enum{
			enum(ActionType,
				"ACTION_TYPE_UNSPECIFIED",
				"ACTION_TYPE_SENSE",
				"ACTION_TYPE_CASCADE",
			),
			enum(ActionState,
				"ACTION_STATE_UNSPECIFIED",
				"ACTION_STATE_PENDING",
				"ACTION_STATE_PROCESSING",
				"ACTION_STATE_DONE",
				"ACTION_STATE_APPROVED",
				"ACTION_STATE_REJECTED",
				"ACTION_STATE_FAILED",
				"ACTION_STATE_EXPIRED",
			),
		},
		Messages: []*schema.Message{{
			Name: Action,
			Fields: []*schema.Field{
				{Name: "creator", Number: 1, Kind: schema.KindString},
				{Name: "actionID", Number: 2, Kind: schema.KindString},
				{Name: "actionType", Number: 3, Kind: schema.KindEnum, TypeName: ActionType},
				{Name: "metadata", Number: 4, Kind: schema.KindBytes},
				{Name: "price", Number: 5, Kind: schema.KindString},
				{Name: "expirationTime", Number: 6, Kind: schema.KindInt64},
				{Name: "state", Number: 7, Kind: schema.KindEnum, TypeName: ActionState},
				{Name: "blockHeight", Number: 8, Kind: schema.KindInt64},
				{Name: "superNodes", Number: 9, Kind: schema.KindString, Label: schema.LabelRepeated},
			},
		}},
	}
}

func claimFile() *schema.File {
	return &schema.File{
		Name:    "lumera/claim/params.proto",
		Package: "lumera.claim",
		Syntax:  "proto3",
		Messages: []*schema.Message{{
			Name: ClaimParams,
			Fields: []*schema.Field{
				{Name: "enable_claims", Number: 1, Kind: schema.KindBool},
				{Name: "claim_end_time", Number: 3, Kind: schema.KindInt64},
				{Name: "max_claims_per_block", Number: 4, Kind: schema.KindUint64},
			},
		}},
	}
}

func supernodeFile() *schema.File {
	metricsEntry := &schema.Message{
		Name:     MetricsEntry,
		MapEntry: true,
		Fields: []*schema.Field{
			{Name: "key", Number: 1, Kind: schema.KindString},
			{Name: "value", Number: 2, Kind: schema.KindDouble},
		},
	}
	return &schema.File{
		Name:    "lumera/supernode/super_node.proto",
		Package: "lumera.supernode",
		Syntax:  "proto3",
		Enums: []*schema.Enum{
			enum(SuperNodeState,
				"SUPERNODE_STATE_UNSPECIFIED",
				"SUPERNODE_STATE_ACTIVE",
				"SUPERNODE_STATE_DISABLED",
				"SUPERNODE_STATE_STOPPED",
				"SUPERNODE_STATE_PENALIZED",
			),
		},
		Messages: []*schema.Message{
			{
				Name: SuperNodeStateRecord,
				Fields: []*schema.Field{
					{Name: "state", Number: 1, Kind: schema.KindEnum, TypeName: SuperNodeState},
					{Name: "height", Number: 2, Kind: schema.KindInt64},
				},
			},
			{
				Name: IPAddressHistory,
				Fields: []*schema.Field{
					{Name: "address", Number: 1, Kind: schema.KindString},
					{Name: "height", Number: 2, Kind: schema.KindInt64},
				},
			},
			{
				Name: Evidence,
				Fields: []*schema.Field{
					{Name: "reporter_address", Number: 1, Kind: schema.KindString},
					{Name: "validator_address", Number: 2, Kind: schema.KindString},
					{Name: "action_id", Number: 3, Kind: schema.KindString},
					{Name: "evidence_type", Number: 4, Kind: schema.KindString},
					{Name: "description", Number: 5, Kind: schema.KindString},
					{Name: "severity", Number: 6, Kind: schema.KindUint64},
					{Name: "height", Number: 7, Kind: schema.KindInt64},
				},
			},
			{
				Name: MetricsAggregate,
				Fields: []*schema.Field{
					{Name: "metrics", Number: 1, Kind: schema.KindMessage, TypeName: MetricsEntry, Label: schema.LabelRepeated},
					{Name: "report_count", Number: 2, Kind: schema.KindUint64},
					{Name: "height", Number: 3, Kind: schema.KindInt64},
				},
				NestedTypes: []*schema.Message{metricsEntry},
			},
			{
				Name: SuperNode,
				Fields: []*schema.Field{
					{Name: "validator_address", Number: 1, Kind: schema.KindString},
					{Name: "states", Number: 2, Kind: schema.KindMessage, TypeName: SuperNodeStateRecord, Label: schema.LabelRepeated},
					{Name: "evidence", Number: 3, Kind: schema.KindMessage, TypeName: Evidence, Label: schema.LabelRepeated},
					{Name: "prev_ip_addresses", Number: 4, Kind: schema.KindMessage, TypeName: IPAddressHistory, Label: schema.LabelRepeated},
					{Name: "version", Number: 5, Kind: schema.KindString},
					{Name: "metrics", Number: 6, Kind: schema.KindMessage, TypeName: MetricsAggregate},
					{Name: "supernode_account", Number: 7, Kind: schema.KindString},
				},
			},
		},
	}
}
