package symtab

// builtinNames are resolvable everywhere without a declaration.
var builtinNames = []string{
	"abs", "all", "any", "bool", "callable", "chr", "dict", "dir",
	"divmod", "enumerate", "Exception", "float", "frozenset", "getattr",
	"hasattr", "hash", "id", "int", "isinstance", "issubclass", "iter",
	"len", "list", "locals", "long", "map", "max", "min", "next", "object",
	"open", "ord", "pow", "print", "property", "range", "repr", "reversed",
	"round", "set", "setattr", "slice", "sorted", "staticmethod", "str",
	"sum", "super", "tuple", "type", "unicode", "xrange", "zip",
	"AttributeError", "IndexError", "KeyError", "NameError",
	"RuntimeError", "StopIteration", "TypeError", "ValueError",
	"__name__", "__doc__", "__file__",
}

// basicTypes are C type names that may be used where a type is expected.
var basicTypes = map[string]bool{
	"char": true, "short": true, "int": true, "long": true,
	"longlong": true, "float": true, "double": true, "longdouble": true,
	"bint": true, "void": true, "object": true, "Py_ssize_t": true,
	"size_t": true, "Py_UNICODE": true, "uchar": true, "ushort": true,
	"uint": true, "ulong": true, "ulonglong": true, "schar": true,
	"sshort": true, "sint": true, "slong": true, "slonglong": true,
}

// IsBasicType reports whether name is a builtin C type name.
func IsBasicType(name string) bool {
	return basicTypes[name]
}
