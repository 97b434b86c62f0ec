// Package helperscript holds the Python prelude evaluated inside gdb on the
// first response unit (spec.md §6 "Child process", §9 "Python-in-host").
// It is kept as a single constant string, grounded verbatim on
// original_source/gf2.cpp's pythonCode block, and is never parsed or
// regenerated host-side: the contract with it is the function signatures
// below, nothing more.
package helperscript

import "fmt"

// Script is sent to gdb once, immediately after the bootstrap "set prompt"
// line, to define gf_typeof, gf_valueof, gf_addressof, gf_fields, and
// gf_locals. gf_locals is a supplement: the original defines the other
// four only, so it is appended in the same style rather than inlined into
// the rest of the block.
const Script = `py

def _gf_value(expression):
    try:
        value = gdb.parse_and_eval(expression[0])
        for index in expression[1:]:
            if isinstance(index, str) and index[0] == '[':
                basic_type = gdb.types.get_basic_type(value.type)
                if basic_type.code == gdb.TYPE_CODE_PTR:
                    basic_type = gdb.types.get_basic_type(basic_type.target())
                value = gf_hooks[str(basic_type)](value, index)
            else:
                value = value[index]
        return value
    except gdb.error:
        print('??')
        return None

def gf_typeof(expression):
    value = _gf_value(expression)
    if value == None: return
    print(value.type)

def gf_valueof(expression, format):
    value = _gf_value(expression)
    if value == None: return
    result = ''
    while True:
        basic_type = gdb.types.get_basic_type(value.type)
        if basic_type.code != gdb.TYPE_CODE_PTR: break
        try:
            result = result + '(' + str(value) + ') '
            value = value.dereference()
        except:
            break
    try:
        if format[0] != ' ': result = result + value.format_string(max_elements=10,max_depth=3,format=format)[0:200]
        else: result = result + value.format_string(max_elements=10,max_depth=3)[0:200]
    except:
        result = result + '??'
    print(result)

def gf_addressof(expression):
    value = _gf_value(expression)
    if value == None: return
    print(value.address)

def _gf_fields_recurse(type):
    if type.code == gdb.TYPE_CODE_STRUCT or type.code == gdb.TYPE_CODE_UNION:
        for field in gdb.types.deep_items(type):
            if field[1].is_base_class:
                _gf_fields_recurse(field[1].type)
            else:
                print(field[0])
    elif type.code == gdb.TYPE_CODE_ARRAY:
        print('(array)',type.range()[1])

def gf_fields(expression):
    value = _gf_value(expression)
    if value == None: return
    basic_type = gdb.types.get_basic_type(value.type)
    if basic_type.code == gdb.TYPE_CODE_PTR:
        basic_type = gdb.types.get_basic_type(basic_type.target())
    try: gf_hooks[str(basic_type)](basic_type, None)
    except: _gf_fields_recurse(basic_type)

def gf_locals():
    try:
        frame = gdb.selected_frame()
    except gdb.error:
        return
    block = frame.block()
    names = []
    while block:
        for symbol in block:
            if symbol.is_variable or symbol.is_argument:
                names.append(symbol.name)
        if block.function:
            break
        block = block.superblock
    for name in names:
        print(name)

end
`

// BootstrapCommand is the first command sent to gdb, before Script: it
// installs gf's custom prompt so channel.readLoop can frame response units
// (spec.md §6: trailing newline mandatory).
const BootstrapCommand = "set prompt (gdb) \n"

// TypeofCommand builds the gdb command that invokes gf_typeof against a
// Python-literal access path expression (the path is built by
// internal/watch and passed through verbatim).
func TypeofCommand(pathExpr string) string {
	return fmt.Sprintf("py gf_typeof(%s)", pathExpr)
}

// ValueofCommand builds the gdb command that invokes gf_valueof with the
// given format override (a single space means "natural").
func ValueofCommand(pathExpr, format string) string {
	return fmt.Sprintf("py gf_valueof(%s, %q)", pathExpr, format)
}

// AddressofCommand builds the gdb command that invokes gf_addressof.
func AddressofCommand(pathExpr string) string {
	return fmt.Sprintf("py gf_addressof(%s)", pathExpr)
}

// FieldsCommand builds the gdb command that invokes gf_fields.
func FieldsCommand(pathExpr string) string {
	return fmt.Sprintf("py gf_fields(%s)", pathExpr)
}

// LocalsCommand builds the gdb command that invokes gf_locals.
func LocalsCommand() string {
	return "py gf_locals()"
}
