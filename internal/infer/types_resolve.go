package infer

import (
	"github.com/ImperatorLang/eopsin/internal/ast"
	"github.com/ImperatorLang/eopsin/internal/errors"
	"github.com/ImperatorLang/eopsin/internal/types"
)

// resolveTypeExpr interprets an ast.Expr appearing in annotation position
// (a parameter type, a return type, an AnnAssign's declared type) as a
// internal/types.Type. Only the shapes the accepted subset's grammar
// allows show up here: a bare name (`int`, `bytes`, a declared class) or a
// `List[...]`/`Dict[...]` subscript.
func (inf *inferer) resolveTypeExpr(e ast.Expr) (types.Type, error) {
	switch n := e.(type) {
	case *ast.Name:
		return inf.resolveTypeName(n)
	case *ast.Subscript:
		recv, ok := n.Receiver.(*ast.Name)
		if !ok {
			return nil, errors.New("Node visiting", errors.SHP002, n, "unsupported type expression")
		}
		switch recv.Ident {
		case "List":
			elem, err := inf.resolveTypeExpr(n.Index)
			if err != nil {
				return nil, err
			}
			return &types.List{Elem: types.InstanceOf(elem)}, nil
		case "Dict":
			tup, ok := n.Index.(*ast.TupleExpr)
			if !ok || len(tup.Elems) != 2 {
				return nil, errors.New("Node visiting", errors.SHP002, n, "Dict[...] requires exactly two type arguments")
			}
			key, err := inf.resolveTypeExpr(tup.Elems[0])
			if err != nil {
				return nil, err
			}
			val, err := inf.resolveTypeExpr(tup.Elems[1])
			if err != nil {
				return nil, err
			}
			return &types.Map{Key: types.InstanceOf(key), Val: types.InstanceOf(val)}, nil
		default:
			return nil, errors.Newf("Node visiting", errors.SHP002, n, "unsupported generic type: %s", recv.Ident)
		}
	default:
		return nil, errors.New("Node visiting", errors.SHP002, e, "unsupported type expression")
	}
}

func (inf *inferer) resolveTypeName(n *ast.Name) (types.Type, error) {
	switch n.Ident {
	case "int":
		return types.IntegerT, nil
	case "bytes":
		return types.ByteStringT, nil
	case "str":
		return types.StringT, nil
	case "bool":
		return types.BoolT, nil
	case "None":
		return types.UnitT, nil
	}
	if typ, ok := inf.classes[n.Ident]; ok {
		return typ, nil
	}
	return nil, errors.Newf("Node visiting", errors.NAM001, n, "undefined type name: %s", n.Ident)
}
