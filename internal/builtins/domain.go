package builtins

import "github.com/ImperatorLang/eopsin/internal/types"

// Domain record and sum types a validator's source may reference without
// declaring a class for them — the ledger vocabulary every script is
// compiled against: ScriptContext, TxInInfo, TxOut, Address, PolicyId,
// Minting/Spending, ScriptCredential, NoStakingCredential,
// SomeOutputDatum, Token. Field names and shapes follow the ledger's
// transaction-context layout, trimmed to the fields validator scripts
// actually read or construct.
//
// Two simplifications from a full ledger-API surface, both scoped out
// because nothing in the accepted subset exercises them: `Address` omits
// a second staking-credential variant beyond NoStakingCredential, and a
// transaction output's datum is carried as an opaque byte string rather
// than arbitrary structured data.
var (
	byteStringInstance = types.InstanceOf(types.ByteStringT)
	integerInstance    = types.InstanceOf(types.IntegerT)

	credentialPubKey = &types.Record{
		TypeName: "PubKeyCredential",
		Tag:      0,
		Fields:   []types.Field{{Name: "pub_key_hash", Type: byteStringInstance}},
	}
	credentialScript = &types.Record{
		TypeName: "ScriptCredential",
		Tag:      1,
		Fields:   []types.Field{{Name: "validator_hash", Type: byteStringInstance}},
	}
	credentialSum = &types.Sum{
		TypeName: "Credential",
		Variants: []*types.Record{credentialPubKey, credentialScript},
	}

	noStakingCredential = &types.Record{
		TypeName: "NoStakingCredential",
		Tag:      0,
		Fields:   nil,
	}
	stakingCredentialSum = &types.Sum{
		TypeName: "StakingCredential",
		Variants: []*types.Record{noStakingCredential},
	}

	addressRecord = &types.Record{
		TypeName: "Address",
		Tag:      0,
		Fields: []types.Field{
			{Name: "credential", Type: types.InstanceOf(credentialSum)},
			{Name: "staking_credential", Type: types.InstanceOf(stakingCredentialSum)},
		},
	}

	tokenRecord = &types.Record{
		TypeName: "Token",
		Tag:      0,
		Fields: []types.Field{
			{Name: "policy_id", Type: byteStringInstance},
			{Name: "token_name", Type: byteStringInstance},
		},
	}

	// value is the ledger's nested-map amount type: policy id -> token
	// name -> quantity.
	valueType = &types.Map{
		Key: byteStringInstance,
		Val: &types.Map{Key: byteStringInstance, Val: integerInstance},
	}

	noOutputDatum = &types.Record{
		TypeName: "NoOutputDatum",
		Tag:      0,
		Fields:   nil,
	}
	someOutputDatum = &types.Record{
		TypeName: "SomeOutputDatum",
		Tag:      1,
		Fields:   []types.Field{{Name: "datum", Type: byteStringInstance}},
	}
	outputDatumSum = &types.Sum{
		TypeName: "OutputDatum",
		Variants: []*types.Record{noOutputDatum, someOutputDatum},
	}

	txOutRecord = &types.Record{
		TypeName: "TxOut",
		Tag:      0,
		Fields: []types.Field{
			{Name: "address", Type: types.InstanceOf(addressRecord)},
			{Name: "value", Type: types.InstanceOf(valueType)},
			{Name: "datum", Type: types.InstanceOf(outputDatumSum)},
		},
	}

	txOutRefRecord = &types.Record{
		TypeName: "TxOutRef",
		Tag:      0,
		Fields: []types.Field{
			{Name: "tx_id", Type: byteStringInstance},
			{Name: "tx_index", Type: integerInstance},
		},
	}

	txInInfoRecord = &types.Record{
		TypeName: "TxInInfo",
		Tag:      0,
		Fields: []types.Field{
			{Name: "out_ref", Type: types.InstanceOf(txOutRefRecord)},
			{Name: "resolved", Type: types.InstanceOf(txOutRecord)},
		},
	}

	mintingRecord = &types.Record{
		TypeName: "Minting",
		Tag:      0,
		Fields:   []types.Field{{Name: "policy_id", Type: byteStringInstance}},
	}
	spendingRecord = &types.Record{
		TypeName: "Spending",
		Tag:      1,
		Fields:   []types.Field{{Name: "tx_out_ref", Type: types.InstanceOf(txOutRefRecord)}},
	}
	scriptPurposeSum = &types.Sum{
		TypeName: "ScriptPurpose",
		Variants: []*types.Record{mintingRecord, spendingRecord},
	}

	txInfoRecord = &types.Record{
		TypeName: "TxInfo",
		Tag:      0,
		Fields: []types.Field{
			{Name: "inputs", Type: types.InstanceOf(&types.List{Elem: types.InstanceOf(txInInfoRecord)})},
			{Name: "outputs", Type: types.InstanceOf(&types.List{Elem: types.InstanceOf(txOutRecord)})},
			{Name: "mint", Type: types.InstanceOf(valueType)},
		},
	}

	scriptContextRecord = &types.Record{
		TypeName: "ScriptContext",
		Tag:      0,
		Fields: []types.Field{
			{Name: "tx_info", Type: types.InstanceOf(txInfoRecord)},
			{Name: "purpose", Type: types.InstanceOf(scriptPurposeSum)},
		},
	}
)

// DomainClasses returns every prelude record/sum type, keyed by the source
// name a script refers to it by — both the type names themselves (used as
// class references, e.g. `isinstance(cred, ScriptCredential)`) and, for
// records with no fields, usable directly as zero-argument constructors
// (`NoStakingCredential()`).
func DomainClasses() map[string]types.Type {
	return map[string]types.Type{
		"Credential":          credentialSum,
		"PubKeyCredential":    credentialPubKey,
		"ScriptCredential":    credentialScript,
		"StakingCredential":   stakingCredentialSum,
		"NoStakingCredential": noStakingCredential,
		"Address":             addressRecord,
		"Token":               tokenRecord,
		"PolicyId":            types.ByteStringT,
		"OutputDatum":         outputDatumSum,
		"NoOutputDatum":       noOutputDatum,
		"SomeOutputDatum":     someOutputDatum,
		"TxOut":               txOutRecord,
		"TxOutRef":            txOutRefRecord,
		"TxInInfo":            txInInfoRecord,
		"ScriptPurpose":       scriptPurposeSum,
		"Minting":             mintingRecord,
		"Spending":            spendingRecord,
		"TxInfo":              txInfoRecord,
		"ScriptContext":       scriptContextRecord,
	}
}
