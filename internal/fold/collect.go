package fold

import "github.com/ImperatorLang/eopsin/internal/typedast"

// eligibleConstants reports, for one lexical block (a module's top-level
// statements or a single function's body), which scope handles are assigned
// by exactly one Assign/AnnAssign directly in that block.
//
// Only the block's own immediate statements are counted — an assignment
// nested inside an If's branches or a For's body is invisible here. A
// name assigned conditionally can't be folded: it might not run at all,
// so it never reaches this count and is never treated as a constant.
func eligibleConstants(stmts []typedast.Stmt) map[typedast.ScopeHandle]bool {
	counts := make(map[typedast.ScopeHandle]int)
	for _, s := range stmts {
		switch st := s.(type) {
		case *typedast.Assign:
			counts[st.Handle]++
		case *typedast.AnnAssign:
			counts[st.Handle]++
		}
	}
	eligible := make(map[typedast.ScopeHandle]bool, len(counts))
	for h, n := range counts {
		if n == 1 {
			eligible[h] = true
		}
	}
	return eligible
}
