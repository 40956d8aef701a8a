package builtins

import "testing"

func TestDomainClassesCoverWrappedTokenScript(t *testing.T) {
	classes := DomainClasses()
	want := []string{
		"ScriptContext", "TxInInfo", "TxOut", "Address", "PolicyId",
		"Minting", "Spending", "ScriptCredential", "NoStakingCredential",
		"SomeOutputDatum", "Token",
	}
	for _, name := range want {
		if _, ok := classes[name]; !ok {
			t.Errorf("expected domain class %s", name)
		}
	}
}

func TestTokenFieldOrder(t *testing.T) {
	tok := tokenRecord
	idx, ok := tok.FieldIndex("token_name")
	if !ok || idx != 1 {
		t.Errorf("expected token_name at index 1, got %d, ok=%v", idx, ok)
	}
}

func TestScriptPurposeHasBothVariants(t *testing.T) {
	if !scriptPurposeSum.HasVariant(mintingRecord) {
		t.Error("ScriptPurpose should accept Minting")
	}
	if !scriptPurposeSum.HasVariant(spendingRecord) {
		t.Error("ScriptPurpose should accept Spending")
	}
}
