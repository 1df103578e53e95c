package journal

import (
	"strings"

	"github.com/google/cel-go/cel"
)

// Filter is a post-decode predicate over a single event. Filters run
// after decode so that a non-matching event is still counted before
// being dropped from output (spec §9 design note).
type Filter interface {
	Match(offset StreamOffset, ev Event) bool
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(offset StreamOffset, ev Event) bool

// Match implements Filter.
func (f FilterFunc) Match(offset StreamOffset, ev Event) bool { return f(offset, ev) }

// ByType matches events whose TypeTag equals typeTag.
func ByType(typeTag string) Filter {
	return FilterFunc(func(_ StreamOffset, ev Event) bool { return ev.TypeTag == typeTag })
}

// ByInode matches events whose summary reports the given inode.
func ByInode(inode uint64) Filter {
	return FilterFunc(func(_ StreamOffset, ev Event) bool {
		return ev.Summary != nil && ev.Summary.Inode == inode
	})
}

// ByPathPrefix matches events whose summary path has the given prefix.
func ByPathPrefix(prefix string) Filter {
	return FilterFunc(func(_ StreamOffset, ev Event) bool {
		return ev.Summary != nil && strings.HasPrefix(ev.Summary.Path, prefix)
	})
}

// ByRange matches events whose stream offset falls within r.
func ByRange(r Range) Filter {
	return FilterFunc(func(offset StreamOffset, _ Event) bool {
		if offset < r.Lo {
			return false
		}
		if r.Hi == InfiniteOffset {
			return true
		}
		return offset < r.Hi
	})
}

// ByDirfragName matches events whose summary path's final path component
// equals name.
func ByDirfragName(name string) Filter {
	return FilterFunc(func(_ StreamOffset, ev Event) bool {
		return ev.Summary != nil && dirfragName(ev.Summary.Path) == name
	})
}

func dirfragName(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// ExprFilter is a CEL-expression filter, a generalization of the five
// named predicate kinds: it exposes offset/type/path/inode as CEL
// variables and matches when the expression evaluates to true.
type ExprFilter struct {
	program cel.Program
}

// NewExprFilter parses expr and builds its program once; Match then
// evaluates it per event. The expression is parsed but not type-checked:
// CEL's standard library already declares an identifier named "type", so
// a checked environment rejects a variable of that name, while an
// unchecked program resolves "type" from the per-event activation.
func NewExprFilter(expr string) (*ExprFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("offset", cel.UintType),
		cel.Variable("path", cel.StringType),
		cel.Variable("inode", cel.UintType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{program: prg}, nil
}

// Match implements Filter.
func (f *ExprFilter) Match(offset StreamOffset, ev Event) bool {
	path, inode := "", uint64(0)
	if ev.Summary != nil {
		path = ev.Summary.Path
		inode = ev.Summary.Inode
	}
	out, _, err := f.program.Eval(map[string]any{
		"offset": uint64(offset),
		"type":   ev.TypeTag,
		"path":   path,
		"inode":  inode,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
